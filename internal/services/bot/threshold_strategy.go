package bot

import (
	"context"

	"github.com/mcoot/flipseven-go/internal/model"
)

// DefaultThreshold is the round score a ThresholdStrategy banks at
const DefaultThreshold = 20

// ThresholdStrategy keeps drawing until the hand is worth at least the
// threshold. A held second chance makes it draw once more regardless.
type ThresholdStrategy struct {
	threshold int
}

// NewThresholdStrategy creates a new ThresholdStrategy. A non-positive
// threshold falls back to DefaultThreshold.
func NewThresholdStrategy(threshold int) *ThresholdStrategy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &ThresholdStrategy{threshold: threshold}
}

// Threshold returns the configured threshold
func (s *ThresholdStrategy) Threshold() int {
	return s.threshold
}

// Decide stops once the hand reaches the threshold or would win the game
func (s *ThresholdStrategy) Decide(ctx context.Context, view View) (model.Decision, error) {
	if view.TargetScore > 0 && view.TotalScore+view.RoundScore >= view.TargetScore {
		return model.DecisionStop, nil
	}
	if view.HasSecondChance {
		return model.DecisionDraw, nil
	}
	if view.RoundScore >= s.threshold {
		return model.DecisionStop, nil
	}
	return model.DecisionDraw, nil
}
