package model

import "time"

const (
	// MinPlayers is the smallest table size
	MinPlayers = 2
	// MaxPlayers is the largest table size
	MaxPlayers = 8
	// DefaultTargetScore ends the game once reached
	DefaultTargetScore = 200
)

// GameID uniquely identifies a game (a sequence of rounds)
type GameID string

// GameState represents the current phase of a game
type GameState string

const (
	GameStatePlaying  GameState = "playing"
	GameStateComplete GameState = "complete"
)

// Decision is what a player chooses on their turn
type Decision string

const (
	DecisionDraw Decision = "draw"
	DecisionStop Decision = "stop"
)

// Valid reports whether d is a known decision
func (d Decision) Valid() bool {
	return d == DecisionDraw || d == DecisionStop
}

// Seat is a player's persistent place in a game
type Seat struct {
	ID         PlayerID `json:"id"`
	Name       string   `json:"name"`
	TotalScore int      `json:"totalScore"`
}

// Game tracks totals across rounds until someone reaches the target
type Game struct {
	ID          GameID    `json:"id"`
	State       GameState `json:"state"`
	Seats       []Seat    `json:"seats"`
	TargetScore int       `json:"targetScore"`
	RoundsDone  int       `json:"roundsDone"`
	Winner      *PlayerID `json:"winner,omitempty"` // nil until complete
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Totals returns the carried totals in seat order
func (g *Game) Totals() []int {
	totals := make([]int, len(g.Seats))
	for i, s := range g.Seats {
		totals[i] = s.TotalScore
	}
	return totals
}

// Names returns the player names in seat order
func (g *Game) Names() []string {
	names := make([]string, len(g.Seats))
	for i, s := range g.Seats {
		names[i] = s.Name
	}
	return names
}

// GetSeat returns the seat with the given player ID, or nil if not found
func (g *Game) GetSeat(id PlayerID) *Seat {
	for i := range g.Seats {
		if g.Seats[i].ID == id {
			return &g.Seats[i]
		}
	}
	return nil
}

// Standing is one line of a scoreboard
type Standing struct {
	PlayerID   PlayerID
	Name       string
	TotalScore int
}

// GameSummary is a lightweight record of a completed game
type GameSummary struct {
	ID          GameID
	Rounds      int
	Standings   []Standing // Highest total first
	Winner      *Standing  // nil if no winner was reached
	CompletedAt time.Time
}
