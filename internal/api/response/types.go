package response

import (
	"time"

	"github.com/mcoot/flipseven-go/internal/model"
)

// RoundPlayer is one player's line in a recorded round
type RoundPlayer struct {
	Name       string   `json:"name"`
	Numbers    []string `json:"numbers"`
	Modifiers  []string `json:"modifiers"`
	Actions    []string `json:"actions"`
	Busted     bool     `json:"busted"`
	Frozen     bool     `json:"frozen"`
	Stopped    bool     `json:"stopped"`
	RoundScore int      `json:"round_score"`
	TotalScore int      `json:"total_score"`
}

// Round represents a recorded round in API responses
type Round struct {
	ID          int64         `json:"id"`
	GameID      string        `json:"game_id,omitempty"`
	RoundNumber int           `json:"round_number,omitempty"`
	Date        time.Time     `json:"date"`
	NumPlayers  int           `json:"num_players"`
	Players     []RoundPlayer `json:"players"`
}

// RoundFromModel converts a model.RoundRecord
func RoundFromModel(r *model.RoundRecord) Round {
	players := make([]RoundPlayer, len(r.Players))
	for i, p := range r.Players {
		players[i] = RoundPlayer{
			Name:       p.Name,
			Numbers:    cardLabels(p.NumberCards),
			Modifiers:  cardLabels(p.Modifiers),
			Actions:    cardLabels(p.ActionsInFront),
			Busted:     p.Busted,
			Frozen:     p.Frozen,
			Stopped:    p.Stopped,
			RoundScore: p.RoundScore,
			TotalScore: p.TotalScore,
		}
	}
	return Round{
		ID:          int64(r.ID),
		GameID:      string(r.GameID),
		RoundNumber: r.RoundNumber,
		Date:        r.Date,
		NumPlayers:  r.NumPlayers,
		Players:     players,
	}
}

func cardLabels(cards []model.Card) []string {
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.String()
	}
	return labels
}

// RoundList is the response for round listings
type RoundList struct {
	Rounds []Round `json:"rounds"`
	Count  int     `json:"count"`
}

// RoundListFromModel converts a slice of records
func RoundListFromModel(records []*model.RoundRecord) RoundList {
	rounds := make([]Round, len(records))
	for i, r := range records {
		rounds[i] = RoundFromModel(r)
	}
	return RoundList{Rounds: rounds, Count: len(rounds)}
}

// Seat represents a player's place in a game
type Seat struct {
	PlayerID   int    `json:"player_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

// Game represents a game in API responses
type Game struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Seats       []Seat    `json:"seats"`
	TargetScore int       `json:"target_score"`
	RoundsDone  int       `json:"rounds_done"`
	Winner      *string   `json:"winner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	seats := make([]Seat, len(g.Seats))
	for i, s := range g.Seats {
		seats[i] = Seat{PlayerID: int(s.ID), Name: s.Name, TotalScore: s.TotalScore}
	}

	var winner *string
	if g.Winner != nil {
		if seat := g.GetSeat(*g.Winner); seat != nil {
			name := seat.Name
			winner = &name
		}
	}

	return Game{
		ID:          string(g.ID),
		State:       string(g.State),
		Seats:       seats,
		TargetScore: g.TargetScore,
		RoundsDone:  g.RoundsDone,
		Winner:      winner,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// GameList is the response for game listings
type GameList struct {
	Games []Game `json:"games"`
}

// Standing is one scoreboard line
type Standing struct {
	PlayerID   int    `json:"player_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

// StandingFromModel converts a model.Standing
func StandingFromModel(s model.Standing) Standing {
	return Standing{PlayerID: int(s.PlayerID), Name: s.Name, TotalScore: s.TotalScore}
}

// GameSummary represents a finished (or stopped) game summary
type GameSummary struct {
	ID          string     `json:"id"`
	Rounds      int        `json:"rounds"`
	Standings   []Standing `json:"standings"`
	Winner      *Standing  `json:"winner"`
	CompletedAt time.Time  `json:"completed_at"`
}

// GameSummaryFromModel converts a model.GameSummary
func GameSummaryFromModel(s *model.GameSummary) GameSummary {
	standings := make([]Standing, len(s.Standings))
	for i, st := range s.Standings {
		standings[i] = StandingFromModel(st)
	}

	var winner *Standing
	if s.Winner != nil {
		w := StandingFromModel(*s.Winner)
		winner = &w
	}

	return GameSummary{
		ID:          string(s.ID),
		Rounds:      s.Rounds,
		Standings:   standings,
		Winner:      winner,
		CompletedAt: s.CompletedAt,
	}
}

// LobbyMember represents a lobby member
type LobbyMember struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Name  string `json:"name,omitempty"`
	Ready bool   `json:"ready"`
	Role  string `json:"role"`
}

// Lobby represents the lobby in API responses
type Lobby struct {
	State       string        `json:"state"`
	Members     []LobbyMember `json:"members"`
	ReadyCount  int           `json:"ready_count"`
	CurrentGame *string       `json:"current_game,omitempty"`
	GameHistory []GameSummary `json:"game_history"`
}

// LobbyFromModel converts a model.Lobby
func LobbyFromModel(l model.Lobby) Lobby {
	members := make([]LobbyMember, len(l.Members))
	for i, m := range l.Members {
		members[i] = LobbyMember{
			ID:    int(m.ID),
			Label: m.Label(),
			Name:  m.Name,
			Ready: m.Ready,
			Role:  string(m.Role),
		}
	}

	var current *string
	if l.CurrentGame != nil {
		id := string(*l.CurrentGame)
		current = &id
	}

	history := make([]GameSummary, len(l.GameHistory))
	for i := range l.GameHistory {
		history[i] = GameSummaryFromModel(&l.GameHistory[i])
	}

	return Lobby{
		State:       string(l.State),
		Members:     members,
		ReadyCount:  l.ReadyCount(),
		CurrentGame: current,
		GameHistory: history,
	}
}
