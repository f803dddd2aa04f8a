package bot

import (
	"context"

	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/model"
)

// RandomStrategy flips a coin every turn
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Decide draws on 0 and stops on 1
func (s *RandomStrategy) Decide(ctx context.Context, view View) (model.Decision, error) {
	if s.random.Intn(2) == 0 {
		return model.DecisionDraw, nil
	}
	return model.DecisionStop, nil
}
