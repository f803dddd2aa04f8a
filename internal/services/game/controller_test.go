package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/flipseven-go/internal/dependencies/mocks"
	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/bot"
	"github.com/mcoot/flipseven-go/internal/services/deck"
	"github.com/mcoot/flipseven-go/internal/services/scoring"
	"github.com/mcoot/flipseven-go/internal/storage/memory"
	"github.com/mcoot/flipseven-go/internal/testutil"
)

// scripted answers from a per-seat queue, stopping once a queue runs dry
type scripted struct {
	decisions map[model.PlayerID][]model.Decision
	asked     []model.PlayerID
	err       error
}

func (s *scripted) Decide(ctx context.Context, view bot.View) (model.Decision, error) {
	s.asked = append(s.asked, view.PlayerID)
	if s.err != nil {
		return "", s.err
	}
	queue := s.decisions[view.PlayerID]
	if len(queue) == 0 {
		return model.DecisionStop, nil
	}
	s.decisions[view.PlayerID] = queue[1:]
	return queue[0], nil
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	events     []model.Event
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, scoring.New(200), s.clock, s.random, testutil.Logger(s.T()))
	s.events = nil
	s.ctx = context.Background()
}

func (s *ControllerSuite) sink() model.EventSink {
	return model.EventSinkFunc(func(e model.Event) { s.events = append(s.events, e) })
}

// useDecks makes each new round draw from the next scripted deck
func (s *ControllerSuite) useDecks(decks ...[]model.Card) {
	next := 0
	s.controller.SetDeckSource(func() *deck.Deck {
		cards := decks[next%len(decks)]
		next++
		return deck.New(cards)
	})
}

func (s *ControllerSuite) newGame(names ...string) *model.Game {
	g, err := s.controller.NewGame(s.ctx, names)
	s.Require().NoError(err)
	return g
}

func num(v int) model.Card { return model.NumberCard(v) }

var (
	draw = model.DecisionDraw
	stop = model.DecisionStop
)

// NewGame tests

func (s *ControllerSuite) TestNewGameSeatsPlayers() {
	g := s.newGame("Ann", "")

	_, err := uuid.Parse(string(g.ID))
	s.NoError(err)
	s.Equal(model.GameStatePlaying, g.State)
	s.Equal(200, g.TargetScore)
	s.Equal([]model.Seat{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Player 2"}}, g.Seats)
	s.Equal(s.clock.CurrentTime, g.CreatedAt)

	stored, err := s.controller.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(g.Seats, stored.Seats)
}

func (s *ControllerSuite) TestNewGameRejectsTooFewPlayers() {
	_, err := s.controller.NewGame(s.ctx, []string{"Solo"})
	s.ErrorIs(err, model.ErrInsufficientPlayers)
}

func (s *ControllerSuite) TestNewGameRejectsTooManyPlayers() {
	_, err := s.controller.NewGame(s.ctx, make([]string, model.MaxPlayers+1))
	s.ErrorIs(err, model.ErrTooManyPlayers)
}

// PlayRound tests

func (s *ControllerSuite) TestPlayRoundTakesTurnsInSeatOrder() {
	s.useDecks([]model.Card{num(5), num(7), num(3), num(3)})
	g := s.newGame("Ann", "Bob")
	strategy := &scripted{decisions: map[model.PlayerID][]model.Decision{
		1: {draw, stop},
		2: {draw, stop},
	}}

	result, err := s.controller.PlayRound(s.ctx, g.ID, strategy, nil)
	s.Require().NoError(err)

	s.Equal([]model.PlayerID{1, 2, 1, 2}, strategy.asked)
	s.Equal(1, result.Number)
	s.Equal(model.RoundID(1), result.RecordID)
	s.Require().Len(result.Scores, 2)
	s.Equal(8, result.Scores[0].RoundScore)
	s.Equal(10, result.Scores[1].RoundScore)
	s.False(result.EndedByFlipSeven)
	s.Nil(result.Winner)

	stored, err := s.controller.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.RoundsDone)
	s.Equal([]int{8, 10}, stored.Totals())
	s.Equal(model.GameStatePlaying, stored.State)
}

func (s *ControllerSuite) TestPlayRoundSkipsInactivePlayers() {
	// Bob busts on his first draw and is never asked again
	s.useDecks([]model.Card{num(5), num(7), num(7), num(2), num(4)})
	g := s.newGame("Ann", "Bob")
	strategy := &scripted{decisions: map[model.PlayerID][]model.Decision{
		1: {stop},
		2: {draw},
	}}

	result, err := s.controller.PlayRound(s.ctx, g.ID, strategy, nil)
	s.Require().NoError(err)

	s.Equal([]model.PlayerID{1, 2}, strategy.asked)
	s.Equal(model.StatusBusted, result.Scores[1].Status)
	s.Equal(0, result.Scores[1].RoundScore)
}

func (s *ControllerSuite) TestPlayRoundEmptyDeckForcesStop() {
	s.useDecks([]model.Card{num(5), num(7)})
	g := s.newGame("Ann", "Bob")
	strategy := &scripted{decisions: map[model.PlayerID][]model.Decision{
		1: {draw, draw},
		2: {draw, draw},
	}}

	result, err := s.controller.PlayRound(s.ctx, g.ID, strategy, nil)
	s.Require().NoError(err)

	s.Equal([]model.PlayerID{1, 2}, strategy.asked)
	s.Equal(model.StatusStopped, result.Scores[0].Status)
	s.Equal(5, result.Scores[0].RoundScore)
	s.Equal(7, result.Scores[1].RoundScore)
}

func (s *ControllerSuite) TestPlayRoundRecordsHistory() {
	secondChance := model.ActionCard(model.ActionSecondChance)
	s.useDecks([]model.Card{secondChance, num(7), num(4)})
	g := s.newGame("Ann", "Bob")
	strategy := &scripted{decisions: map[model.PlayerID][]model.Decision{
		1: {draw, stop},
	}}

	_, err := s.controller.PlayRound(s.ctx, g.ID, strategy, nil)
	s.Require().NoError(err)

	rounds, err := s.controller.GetRounds(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	rec := rounds[0]
	s.Equal(g.ID, rec.GameID)
	s.Equal(1, rec.RoundNumber)
	s.Equal(2, rec.NumPlayers)

	ann := rec.Players[0]
	s.Equal("Ann", ann.Name)
	s.Equal([]model.Card{num(4)}, ann.NumberCards)
	s.Equal([]model.Card{secondChance}, ann.ActionsInFront)
	s.True(ann.Stopped)
	s.Equal(4, ann.RoundScore)
	s.Equal(4, ann.TotalScore)
}

func (s *ControllerSuite) TestPlayRoundCarriesTotalsAndEndsGame() {
	s.useDecks([]model.Card{num(5), num(7)})
	g := s.newGame("Ann", "Bob")
	g.Seats[0].TotalScore = 195
	g.Seats[1].TotalScore = 150
	s.Require().NoError(s.storage.SaveGame(s.ctx, g))

	result, err := s.controller.PlayRound(s.ctx, g.ID, &scripted{}, s.sink())
	s.Require().NoError(err)

	s.Require().NotNil(result.Winner)
	s.Equal(model.PlayerID(1), result.Winner.PlayerID)
	s.Equal(200, result.Winner.TotalScore)

	stored, err := s.controller.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(model.GameStateComplete, stored.State)
	s.Require().NotNil(stored.Winner)
	s.Equal(model.PlayerID(1), *stored.Winner)

	last := s.events[len(s.events)-1]
	s.Equal(model.EventGameComplete, last.Type)
	s.Equal("Ann", last.PlayerName)

	_, err = s.controller.PlayRound(s.ctx, g.ID, &scripted{}, nil)
	s.ErrorIs(err, model.ErrGameComplete)
}

func (s *ControllerSuite) TestPlayRoundStampsEvents() {
	s.useDecks([]model.Card{num(5), num(7)})
	g := s.newGame("Ann", "Bob")

	_, err := s.controller.PlayRound(s.ctx, g.ID, &scripted{}, s.sink())
	s.Require().NoError(err)

	s.Require().NotEmpty(s.events)
	s.Equal(model.EventRoundStarted, s.events[0].Type)
	s.Equal(model.EventRoundComplete, s.events[len(s.events)-1].Type)
	for _, e := range s.events {
		s.Equal(1, e.Round)
	}
}

func (s *ControllerSuite) TestPlayRoundRejectsInvalidDecision() {
	s.useDecks([]model.Card{num(5), num(7)})
	g := s.newGame("Ann", "Bob")
	strategy := &scripted{decisions: map[model.PlayerID][]model.Decision{1: {"pass"}}}

	_, err := s.controller.PlayRound(s.ctx, g.ID, strategy, nil)
	s.ErrorIs(err, model.ErrInvalidDecision)
}

func (s *ControllerSuite) TestPlayRoundPropagatesStrategyError() {
	s.useDecks([]model.Card{num(5), num(7)})
	g := s.newGame("Ann", "Bob")
	boom := errors.New("connection lost")

	_, err := s.controller.PlayRound(s.ctx, g.ID, &scripted{err: boom}, nil)
	s.ErrorIs(err, boom)

	rounds, err := s.storage.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Empty(rounds)
}

func (s *ControllerSuite) TestPlayRoundUnknownGame() {
	_, err := s.controller.PlayRound(s.ctx, "missing", &scripted{}, nil)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestPlayRoundHonoursCancellation() {
	s.useDecks([]model.Card{num(5), num(7)})
	g := s.newGame("Ann", "Bob")
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.controller.PlayRound(ctx, g.ID, &scripted{}, nil)
	s.ErrorIs(err, context.Canceled)
}

// PlayGame tests

func (s *ControllerSuite) TestPlayGameStopsAtRoundLimit() {
	s.useDecks([]model.Card{num(0), num(0)})
	s.controller.SetMaxRounds(2)
	g := s.newGame("Ann", "Bob")

	summary, err := s.controller.PlayGame(s.ctx, g.ID, &scripted{}, nil)
	s.ErrorIs(err, model.ErrRoundLimitReached)
	s.Require().NotNil(summary)
	s.Equal(2, summary.Rounds)
	s.Nil(summary.Winner)
}

func (s *ControllerSuite) TestPlayGameWithBotsReachesWinner() {
	controller := NewController(s.storage, scoring.New(200), s.clock, random.NewSeeded(7), testutil.NopLogger())
	g, err := controller.NewGame(s.ctx, []string{"A", "B", "C"})
	s.Require().NoError(err)

	summary, err := controller.PlayGame(s.ctx, g.ID, bot.NewThresholdStrategy(20), nil)
	s.Require().NoError(err)

	s.Require().NotNil(summary.Winner)
	s.GreaterOrEqual(summary.Winner.TotalScore, 200)
	s.Equal(summary.Winner.PlayerID, summary.Standings[0].PlayerID)

	rounds, err := controller.GetRounds(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Len(rounds, summary.Rounds)

	// Totals recorded in the last round match the final standings
	last := rounds[len(rounds)-1]
	for _, st := range summary.Standings {
		s.Equal(st.TotalScore, last.Players[int(st.PlayerID)-1].TotalScore)
	}
}

func (s *ControllerSuite) TestCreateGameSummaryOrdersStandings() {
	g := s.newGame("Ann", "Bob", "Cid")
	g.Seats[0].TotalScore = 40
	g.Seats[1].TotalScore = 90
	g.Seats[2].TotalScore = 60
	s.Require().NoError(s.storage.SaveGame(s.ctx, g))

	summary, err := s.controller.CreateGameSummary(s.ctx, g.ID)
	s.Require().NoError(err)

	s.Equal("Bob", summary.Standings[0].Name)
	s.Equal("Cid", summary.Standings[1].Name)
	s.Equal("Ann", summary.Standings[2].Name)
	s.Nil(summary.Winner)
}
