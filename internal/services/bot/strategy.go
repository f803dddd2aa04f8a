package bot

import (
	"context"

	"github.com/mcoot/flipseven-go/internal/model"
)

// Strategy decides whether a player draws another card or stops
type Strategy interface {
	// Decide is asked once per turn for a player who is still active
	Decide(ctx context.Context, view View) (model.Decision, error)
}

// View is the information a player sees when deciding. It is a snapshot and
// safe to hand to another goroutine.
type View struct {
	Round           int
	PlayerID        model.PlayerID
	Name            string
	Hand            string
	RoundScore      int // Score banked if the player stops now
	DistinctValues  int
	HasSecondChance bool
	TotalScore      int
	TargetScore     int
	DeckRemaining   int
}

// NewView snapshots p for a decision
func NewView(round int, p *model.PlayerState, deckRemaining, targetScore int) View {
	return View{
		Round:           round,
		PlayerID:        p.ID,
		Name:            p.Name,
		Hand:            p.HandString(),
		RoundScore:      p.ComputeRoundScore(),
		DistinctValues:  p.DistinctValues(),
		HasSecondChance: p.HasSecondChance(),
		TotalScore:      p.TotalScore,
		TargetScore:     targetScore,
		DeckRemaining:   deckRemaining,
	}
}
