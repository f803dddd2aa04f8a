package model

import (
	"fmt"
	"strings"
)

// PlayerID identifies a seat at the table, starting at 1
type PlayerID int

// PlayerStatus is the per-round status of a player
type PlayerStatus string

const (
	StatusActive  PlayerStatus = "active"
	StatusBusted  PlayerStatus = "busted"  // Duplicate number without protection
	StatusFrozen  PlayerStatus = "frozen"  // Hit by a freeze card
	StatusStopped PlayerStatus = "stopped" // Chose to bank the round
)

const (
	// FlipSevenCount is the number of distinct values that makes a Flip 7
	FlipSevenCount = 7
	// FlipSevenBonus is the flat bonus added for a Flip 7
	FlipSevenBonus = 15
)

// PlayerState is one player's hand and status for a single round.
// Only TotalScore carries over between rounds.
type PlayerState struct {
	ID         PlayerID
	Name       string
	TotalScore int

	NumberCards    []Card // May briefly hold a duplicate during resolution
	Modifiers      []Card // In the order drawn
	ActionsInFront []Card // At most one second chance card

	Status PlayerStatus

	finalized bool
}

// NewPlayerState creates a fresh round state carrying the given total
func NewPlayerState(id PlayerID, name string, totalScore int) *PlayerState {
	if name == "" {
		name = DefaultPlayerName(id)
	}
	return &PlayerState{
		ID:         id,
		Name:       name,
		TotalScore: totalScore,
		Status:     StatusActive,
	}
}

// DefaultPlayerName returns the display name used when none was chosen
func DefaultPlayerName(id PlayerID) string {
	return fmt.Sprintf("Player %d", id)
}

// IsActive is true iff the player is not busted, frozen or stopped
func (p *PlayerState) IsActive() bool {
	return p.Status == StatusActive
}

// IsBusted reports whether the player busted this round
func (p *PlayerState) IsBusted() bool { return p.Status == StatusBusted }

// IsFrozen reports whether the player was frozen this round
func (p *PlayerState) IsFrozen() bool { return p.Status == StatusFrozen }

// IsStopped reports whether the player chose to stop this round
func (p *PlayerState) IsStopped() bool { return p.Status == StatusStopped }

// HasSecondChance is true iff a second chance card lies in front of the player
func (p *PlayerState) HasSecondChance() bool {
	count := 0
	for _, c := range p.ActionsInFront {
		if c.Is(ActionSecondChance) {
			count++
		}
	}
	return count == 1
}

// GrantSecondChance puts a second chance card in front of the player.
// Returns false, leaving the hand untouched, if one is already held.
func (p *PlayerState) GrantSecondChance(card Card) bool {
	if p.HasSecondChance() {
		return false
	}
	p.ActionsInFront = append(p.ActionsInFront, card)
	return true
}

// ConsumeSecondChance discards the held second chance card
func (p *PlayerState) ConsumeSecondChance() {
	p.ActionsInFront = removeAction(p.ActionsInFront, ActionSecondChance)
}

// ResetSecondChance discards any second chance card unconditionally
func (p *PlayerState) ResetSecondChance() {
	p.ActionsInFront = removeAction(p.ActionsInFront, ActionSecondChance)
}

// Bust eliminates the player for the round. Only an active player can bust.
func (p *PlayerState) Bust() bool {
	return p.leaveRound(StatusBusted, true)
}

// Freeze ends the player's round with no score
func (p *PlayerState) Freeze() bool {
	return p.leaveRound(StatusFrozen, true)
}

// Stop banks the player's hand for the round
func (p *PlayerState) Stop() bool {
	return p.leaveRound(StatusStopped, false)
}

func (p *PlayerState) leaveRound(status PlayerStatus, clearNumbers bool) bool {
	if !p.IsActive() {
		return false
	}
	p.Status = status
	if clearNumbers {
		p.NumberCards = []Card{}
	}
	return true
}

// HasDuplicateOnAdd reports whether value occurs more than once in the
// number cards, checked right after a card of that value was appended
func (p *PlayerState) HasDuplicateOnAdd(value int) bool {
	occurrences := 0
	for _, c := range p.NumberCards {
		if c.Value == value {
			occurrences++
		}
	}
	return occurrences > 1
}

// DistinctValues returns the number of distinct number values held.
// Zero counts as a value.
func (p *PlayerState) DistinctValues() int {
	seen := make(map[int]struct{}, len(p.NumberCards))
	for _, c := range p.NumberCards {
		seen[c.Value] = struct{}{}
	}
	return len(seen)
}

// HasFlipSeven reports whether the hand holds at least seven distinct values
func (p *PlayerState) HasFlipSeven() bool {
	return p.DistinctValues() >= FlipSevenCount
}

// ComputeRoundScore is the pure round score of the current hand.
// Modifiers apply in the order held; the Flip 7 bonus is added last.
func (p *PlayerState) ComputeRoundScore() int {
	if p.IsBusted() || p.IsFrozen() {
		return 0
	}

	sum := 0
	for _, c := range p.NumberCards {
		sum += c.Value
	}

	for _, m := range p.Modifiers {
		sum = m.Modifier.Apply(sum)
	}

	if p.HasFlipSeven() {
		sum += FlipSevenBonus
	}

	return sum
}

// FinalizeRoundScore adds the round score to the total. It may only run once
// per round; a second call returns ErrScoreAlreadyFinalized and changes nothing.
func (p *PlayerState) FinalizeRoundScore() (int, error) {
	if p.finalized {
		return 0, fmt.Errorf("%w: %s", ErrScoreAlreadyFinalized, p.Name)
	}
	score := p.ComputeRoundScore()
	p.TotalScore += score
	p.finalized = true
	return score, nil
}

// IsFinalized reports whether the round score was already added to the total
func (p *PlayerState) IsFinalized() bool {
	return p.finalized
}

// HandString renders the hand for display, e.g. "Numbers: 3 7 | Mods: [x2]"
func (p *PlayerState) HandString() string {
	parts := []string{}
	if len(p.NumberCards) == 0 {
		parts = append(parts, "Numbers: (none)")
	} else {
		parts = append(parts, "Numbers: "+joinCards(p.NumberCards))
	}
	if len(p.Modifiers) > 0 {
		parts = append(parts, "Mods: ["+joinCards(p.Modifiers)+"]")
	}
	if len(p.ActionsInFront) > 0 {
		parts = append(parts, "Actions: {"+joinCards(p.ActionsInFront)+"}")
	}
	return strings.Join(parts, " | ")
}

func joinCards(cards []Card) string {
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.String()
	}
	return strings.Join(labels, " ")
}

func removeAction(cards []Card, kind ActionKind) []Card {
	kept := cards[:0:0]
	for _, c := range cards {
		if !c.Is(kind) {
			kept = append(kept, c)
		}
	}
	return kept
}
