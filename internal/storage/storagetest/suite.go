// Package storagetest holds the behaviour every storage backend must share
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// Suite runs the common storage contract against a backend. Backends embed
// or run it with NewStorage set to a constructor for a fresh, empty store.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

// SampleRound returns a two player record for the given game
func SampleRound(gameID model.GameID, roundNumber int) *model.RoundRecord {
	return &model.RoundRecord{
		GameID:      gameID,
		RoundNumber: roundNumber,
		Date:        time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		NumPlayers:  2,
		Players: []model.PlayerRecord{
			{
				Name:           "Ann",
				NumberCards:    []model.Card{model.NumberCard(3), model.NumberCard(7)},
				Modifiers:      []model.Card{model.ModifierCard(model.ModifierTimes2), model.ModifierCard(model.ModifierPlus4)},
				ActionsInFront: []model.Card{model.ActionCard(model.ActionSecondChance)},
				Stopped:        true,
				RoundScore:     24,
				TotalScore:     24,
			},
			{
				Name:           "Bob",
				NumberCards:    []model.Card{},
				Modifiers:      []model.Card{},
				ActionsInFront: []model.Card{},
				Busted:         true,
				RoundScore:     0,
				TotalScore:     0,
			},
		},
	}
}

// SampleGame returns a game in progress with two seats
func SampleGame(id model.GameID, created time.Time) *model.Game {
	return &model.Game{
		ID:    id,
		State: model.GameStatePlaying,
		Seats: []model.Seat{
			{ID: 1, Name: "Ann", TotalScore: 24},
			{ID: 2, Name: "Bob", TotalScore: 0},
		},
		TargetScore: model.DefaultTargetScore,
		RoundsDone:  1,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// History tests

func (s *Suite) TestAppendAssignsSequentialIDs() {
	for want := model.RoundID(1); want <= 3; want++ {
		rec := SampleRound("game-1", int(want))
		id, err := s.Storage.AppendRound(s.Ctx, rec)
		s.Require().NoError(err)
		s.Equal(want, id)
		s.Equal(want, rec.ID)
	}
}

func (s *Suite) TestGetRoundRoundTrips() {
	rec := SampleRound("game-1", 1)
	id, err := s.Storage.AppendRound(s.Ctx, rec)
	s.Require().NoError(err)

	got, err := s.Storage.GetRound(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal(id, got.ID)
	s.Equal(model.GameID("game-1"), got.GameID)
	s.Equal(2, got.NumPlayers)
	s.True(rec.Date.Equal(got.Date))
	s.Require().Len(got.Players, 2)
	s.Equal(rec.Players[0].NumberCards, got.Players[0].NumberCards)
	s.Equal(rec.Players[0].Modifiers, got.Players[0].Modifiers)
	s.Equal(rec.Players[0].ActionsInFront, got.Players[0].ActionsInFront)
	s.Equal(24, got.Players[0].RoundScore)
	s.True(got.Players[0].Stopped)
	s.True(got.Players[1].Busted)
}

func (s *Suite) TestGetRoundNotFound() {
	_, err := s.Storage.GetRound(s.Ctx, 42)
	s.ErrorIs(err, model.ErrRoundNotFound)
}

func (s *Suite) TestListRoundsInAppendOrder() {
	for i := 1; i <= 3; i++ {
		_, err := s.Storage.AppendRound(s.Ctx, SampleRound("game-1", i))
		s.Require().NoError(err)
	}

	rounds, err := s.Storage.ListRounds(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(rounds, 3)
	for i, r := range rounds {
		s.Equal(model.RoundID(i+1), r.ID)
		s.Equal(i+1, r.RoundNumber)
	}
}

func (s *Suite) TestListRoundsEmpty() {
	rounds, err := s.Storage.ListRounds(s.Ctx)
	s.Require().NoError(err)
	s.Empty(rounds)
}

func (s *Suite) TestListRoundsForGame() {
	_, err := s.Storage.AppendRound(s.Ctx, SampleRound("game-1", 1))
	s.Require().NoError(err)
	_, err = s.Storage.AppendRound(s.Ctx, SampleRound("game-2", 1))
	s.Require().NoError(err)
	_, err = s.Storage.AppendRound(s.Ctx, SampleRound("game-1", 2))
	s.Require().NoError(err)

	rounds, err := s.Storage.ListRoundsForGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(rounds, 2)
	s.Equal(model.RoundID(1), rounds[0].ID)
	s.Equal(model.RoundID(3), rounds[1].ID)

	rounds, err = s.Storage.ListRoundsForGame(s.Ctx, "game-3")
	s.Require().NoError(err)
	s.Empty(rounds)
}

func (s *Suite) TestResetEmptiesLogAndRestartsIDs() {
	_, err := s.Storage.AppendRound(s.Ctx, SampleRound("game-1", 1))
	s.Require().NoError(err)
	_, err = s.Storage.AppendRound(s.Ctx, SampleRound("game-1", 2))
	s.Require().NoError(err)

	s.Require().NoError(s.Storage.Reset(s.Ctx))

	rounds, err := s.Storage.ListRounds(s.Ctx)
	s.Require().NoError(err)
	s.Empty(rounds)

	rounds, err = s.Storage.ListRoundsForGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Empty(rounds)

	id, err := s.Storage.AppendRound(s.Ctx, SampleRound("game-2", 1))
	s.Require().NoError(err)
	s.Equal(model.RoundID(1), id)
}

func (s *Suite) TestStoredRoundIsNotAliased() {
	rec := SampleRound("game-1", 1)
	id, err := s.Storage.AppendRound(s.Ctx, rec)
	s.Require().NoError(err)

	rec.NumPlayers = 7

	got, err := s.Storage.GetRound(s.Ctx, id)
	s.Require().NoError(err)
	s.Equal(2, got.NumPlayers)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	created := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	game := SampleGame("game-1", created)

	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.ID, got.ID)
	s.Equal(game.State, got.State)
	s.Equal(game.Seats, got.Seats)
	s.Equal(game.TargetScore, got.TargetScore)
	s.Equal(1, got.RoundsDone)
	s.Nil(got.Winner)
	s.True(created.Equal(got.CreatedAt))
}

func (s *Suite) TestSaveGameOverwrites() {
	game := SampleGame("game-1", time.Now().UTC())
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	winner := model.PlayerID(1)
	game.State = model.GameStateComplete
	game.Winner = &winner
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameStateComplete, got.State)
	s.Require().NotNil(got.Winner)
	s.Equal(winner, *got.Winner)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestListGamesOldestFirst() {
	base := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, SampleGame("late", base.Add(time.Hour))))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, SampleGame("early", base)))

	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("early"), games[0].ID)
	s.Equal(model.GameID("late"), games[1].ID)
}

func (s *Suite) TestDeleteGame() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, SampleGame("game-1", time.Now().UTC())))

	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, "game-1"))

	_, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestResetKeepsGames() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, SampleGame("game-1", time.Now().UTC())))
	_, err := s.Storage.AppendRound(s.Ctx, SampleRound("game-1", 1))
	s.Require().NoError(err)

	s.Require().NoError(s.Storage.Reset(s.Ctx))

	_, err = s.Storage.GetGame(s.Ctx, "game-1")
	s.NoError(err)
}
