package scoring

import (
	"fmt"
	"sort"

	"github.com/mcoot/flipseven-go/internal/model"
)

// RoundScore is one player's result for a finished round
type RoundScore struct {
	PlayerID   model.PlayerID
	Name       string
	Status     model.PlayerStatus
	RoundScore int
	TotalScore int
}

// Service provides end-of-round and end-of-game scoring
type Service struct {
	targetScore int
}

// New creates a new scoring Service. A non-positive target falls back to
// model.DefaultTargetScore.
func New(targetScore int) *Service {
	if targetScore <= 0 {
		targetScore = model.DefaultTargetScore
	}
	return &Service{targetScore: targetScore}
}

// TargetScore returns the total that ends the game
func (s *Service) TargetScore() int {
	return s.targetScore
}

// FinalizeRound adds every player's round score to their total. A round is
// finalized once: if any player was already finalized it returns
// model.ErrScoreAlreadyFinalized and no total changes.
func (s *Service) FinalizeRound(players []*model.PlayerState) ([]RoundScore, error) {
	for _, p := range players {
		if p.IsFinalized() {
			return nil, fmt.Errorf("%w: %s", model.ErrScoreAlreadyFinalized, p.Name)
		}
	}

	scores := make([]RoundScore, 0, len(players))
	for _, p := range players {
		score, err := p.FinalizeRoundScore()
		if err != nil {
			return nil, err
		}
		scores = append(scores, RoundScore{
			PlayerID:   p.ID,
			Name:       p.Name,
			Status:     p.Status,
			RoundScore: score,
			TotalScore: p.TotalScore,
		})
	}
	return scores, nil
}

// Standings returns the seats ordered by total, highest first. Equal totals
// keep seat order.
func (s *Service) Standings(seats []model.Seat) []model.Standing {
	standings := make([]model.Standing, 0, len(seats))
	for _, seat := range seats {
		standings = append(standings, model.Standing{
			PlayerID:   seat.ID,
			Name:       seat.Name,
			TotalScore: seat.TotalScore,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalScore > standings[j].TotalScore
	})

	return standings
}

// DetermineWinner returns the highest total at or above the target score,
// or nil if nobody has reached it yet. Ties go to the earliest seat.
func (s *Service) DetermineWinner(seats []model.Seat) *model.Standing {
	standings := s.Standings(seats)
	if len(standings) == 0 || standings[0].TotalScore < s.targetScore {
		return nil
	}
	winner := standings[0]
	return &winner
}

// Interface for dependency injection
type ServiceInterface interface {
	TargetScore() int
	FinalizeRound(players []*model.PlayerState) ([]RoundScore, error)
	Standings(seats []model.Seat) []model.Standing
	DetermineWinner(seats []model.Seat) *model.Standing
}

var _ ServiceInterface = (*Service)(nil)
