package model

import "time"

// RoundID is the sequential identifier assigned by the history log
type RoundID int64

// RoundRecord is the durable record of one completed round
type RoundRecord struct {
	ID          RoundID        `json:"id"`
	GameID      GameID         `json:"gameId,omitempty"`
	RoundNumber int            `json:"roundNumber,omitempty"`
	Date        time.Time      `json:"date"`
	NumPlayers  int            `json:"numPlayers"`
	Players     []PlayerRecord `json:"players"`
}

// PlayerRecord is one player's end-of-round snapshot
type PlayerRecord struct {
	Name           string `json:"name"`
	NumberCards    []Card `json:"numberCards"`
	Modifiers      []Card `json:"modifiers"`
	ActionsInFront []Card `json:"actionsInFront"`
	Busted         bool   `json:"busted"`
	Frozen         bool   `json:"frozen"`
	Stopped        bool   `json:"stopped"`
	RoundScore     int    `json:"roundScore"`
	TotalScore     int    `json:"totalScore"`
}

// NewPlayerRecord snapshots a player state. The round score is recomputed
// with the pure scorer so the record never depends on finalisation.
func NewPlayerRecord(p *PlayerState) PlayerRecord {
	return PlayerRecord{
		Name:           p.Name,
		NumberCards:    cloneCards(p.NumberCards),
		Modifiers:      cloneCards(p.Modifiers),
		ActionsInFront: cloneCards(p.ActionsInFront),
		Busted:         p.IsBusted(),
		Frozen:         p.IsFrozen(),
		Stopped:        p.IsStopped(),
		RoundScore:     p.ComputeRoundScore(),
		TotalScore:     p.TotalScore,
	}
}

func cloneCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
