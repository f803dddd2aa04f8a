package bot

import (
	"context"
	"fmt"

	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/model"
)

// Strategy names accepted by NewStrategy
const (
	StrategyRandom    = "random"
	StrategyThreshold = "threshold"
)

// StrategyNames lists the strategies bots can play
var StrategyNames = []string{StrategyThreshold, StrategyRandom}

// NewStrategy builds a bot strategy by name. threshold only applies to the
// threshold strategy.
func NewStrategy(name string, rnd random.Random, threshold int) (Strategy, error) {
	switch name {
	case StrategyRandom:
		return NewRandomStrategy(rnd), nil
	case StrategyThreshold:
		return NewThresholdStrategy(threshold), nil
	}
	return nil, fmt.Errorf("unknown bot strategy: %s", name)
}

// Seating routes each player's decision to the strategy for their seat,
// falling back to a default for unassigned seats
type Seating struct {
	bySeat   map[model.PlayerID]Strategy
	fallback Strategy
}

// NewSeating creates a Seating. fallback may be nil, in which case
// unassigned seats always stop.
func NewSeating(fallback Strategy) *Seating {
	return &Seating{
		bySeat:   make(map[model.PlayerID]Strategy),
		fallback: fallback,
	}
}

// Assign sets the strategy for one seat
func (s *Seating) Assign(id model.PlayerID, strategy Strategy) {
	s.bySeat[id] = strategy
}

// Decide asks the strategy assigned to view.PlayerID
func (s *Seating) Decide(ctx context.Context, view View) (model.Decision, error) {
	if st, ok := s.bySeat[view.PlayerID]; ok {
		return st.Decide(ctx, view)
	}
	if s.fallback != nil {
		return s.fallback.Decide(ctx, view)
	}
	return model.DecisionStop, nil
}

var (
	_ Strategy = (*RandomStrategy)(nil)
	_ Strategy = (*ThresholdStrategy)(nil)
	_ Strategy = (*PromptStrategy)(nil)
	_ Strategy = (*Seating)(nil)
)
