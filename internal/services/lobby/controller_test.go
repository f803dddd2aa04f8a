package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/flipseven-go/internal/dependencies/mocks"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/game"
	"github.com/mcoot/flipseven-go/internal/services/scoring"
	"github.com/mcoot/flipseven-go/internal/storage/memory"
	"github.com/mcoot/flipseven-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage        *memory.Storage
	gameController *game.Controller
	clock          *mocks.MockClock
	controller     *Controller
	ctx            context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.gameController = game.NewController(s.storage, scoring.New(200), s.clock, mocks.NewMockRandom(), logger)
	s.controller = NewController(s.gameController, s.clock, logger)
	s.ctx = context.Background()
}

// joinNamed joins a member and names it
func (s *ControllerSuite) joinNamed(name string) model.LobbyMember {
	m := s.controller.Join()
	named, err := s.controller.SetName(m.ID, name)
	s.Require().NoError(err)
	return named
}

func (s *ControllerSuite) startGame(names ...string) *model.Game {
	for _, name := range names {
		m := s.joinNamed(name)
		_, err := s.controller.SetReady(m.ID)
		s.Require().NoError(err)
	}
	g, _, err := s.controller.StartGame(s.ctx)
	s.Require().NoError(err)
	return g
}

// Join / leave tests

func (s *ControllerSuite) TestJoinAssignsSequentialIDs() {
	a := s.controller.Join()
	b := s.controller.Join()

	s.Equal(model.MemberID(1), a.ID)
	s.Equal(model.MemberID(2), b.ID)
	s.Equal("J1", a.Label())
	s.Equal(model.RolePlayer, a.Role)
}

func (s *ControllerSuite) TestJoinReusesSmallestFreeID() {
	s.controller.Join()
	second := s.controller.Join()
	s.controller.Join()

	_, err := s.controller.Leave(second.ID)
	s.Require().NoError(err)

	s.Equal(model.MemberID(2), s.controller.Join().ID)
	s.Equal(model.MemberID(4), s.controller.Join().ID)
}

func (s *ControllerSuite) TestLeaveUnknownMember() {
	_, err := s.controller.Leave(9)
	s.ErrorIs(err, model.ErrMemberNotFound)
}

func (s *ControllerSuite) TestLeaveReturnsMember() {
	m := s.joinNamed("Ann")

	left, err := s.controller.Leave(m.ID)
	s.Require().NoError(err)
	s.Equal("Ann", left.Name)
	s.Empty(s.controller.GetLobby().Members)
}

// Name tests

func (s *ControllerSuite) TestSetNameTrims() {
	m := s.controller.Join()

	named, err := s.controller.SetName(m.ID, "  Ann  ")
	s.Require().NoError(err)
	s.Equal("Ann", named.Name)
	s.Equal("Ann", named.Label())
}

func (s *ControllerSuite) TestSetNameRejectsBlank() {
	m := s.controller.Join()

	_, err := s.controller.SetName(m.ID, "   ")
	s.ErrorIs(err, model.ErrInvalidName)
}

// Ready tests

func (s *ControllerSuite) TestReadyRequiresName() {
	m := s.controller.Join()

	_, err := s.controller.SetReady(m.ID)
	s.ErrorIs(err, model.ErrNameRequired)
}

func (s *ControllerSuite) TestSingleReadyMemberCannotStart() {
	m := s.joinNamed("Ann")

	startable, err := s.controller.SetReady(m.ID)
	s.Require().NoError(err)
	s.False(startable)
}

func (s *ControllerSuite) TestAllReadyCanStart() {
	a := s.joinNamed("Ann")
	b := s.joinNamed("Bob")

	startable, err := s.controller.SetReady(a.ID)
	s.Require().NoError(err)
	s.False(startable)

	startable, err = s.controller.SetReady(b.ID)
	s.Require().NoError(err)
	s.True(startable)
	lobby := s.controller.GetLobby()
	s.Equal(2, lobby.ReadyCount())
}

func (s *ControllerSuite) TestUnnamedMemberBlocksStart() {
	a := s.joinNamed("Ann")
	b := s.joinNamed("Bob")
	s.controller.Join()

	_, _ = s.controller.SetReady(a.ID)
	startable, err := s.controller.SetReady(b.ID)
	s.Require().NoError(err)
	s.False(startable)
}

// Game lifecycle tests

func (s *ControllerSuite) TestStartGameSeatsMembersInJoinOrder() {
	g := s.startGame("Ann", "Bob")

	s.Equal([]string{"Ann", "Bob"}, g.Names())
	lobby := s.controller.GetLobby()
	s.Equal(model.LobbyStateInGame, lobby.State)
	s.Require().NotNil(lobby.CurrentGame)
	s.Equal(g.ID, *lobby.CurrentGame)
}

func (s *ControllerSuite) TestStartGameNotReady() {
	s.joinNamed("Ann")
	s.joinNamed("Bob")

	_, _, err := s.controller.StartGame(s.ctx)
	s.ErrorIs(err, model.ErrNotReadyToStart)
}

func (s *ControllerSuite) TestStartGameTwice() {
	s.startGame("Ann", "Bob")

	_, _, err := s.controller.StartGame(s.ctx)
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestJoinDuringGameIsSpectator() {
	s.startGame("Ann", "Bob")

	m := s.controller.Join()
	s.Equal(model.RoleSpectator, m.Role)
	lobby := s.controller.GetLobby()
	s.Len(lobby.GetPlayers(), 2)

	_, err := s.controller.SetName(m.ID, "Cid")
	s.Require().NoError(err)
	_, err = s.controller.SetReady(m.ID)
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestCompleteGameReopensLobby() {
	g := s.startGame("Ann", "Bob")
	s.controller.Join()

	summary, err := s.controller.CompleteGame(s.ctx)
	s.Require().NoError(err)
	s.Equal(g.ID, summary.ID)

	lobby := s.controller.GetLobby()
	s.Equal(model.LobbyStateWaiting, lobby.State)
	s.Nil(lobby.CurrentGame)
	s.Len(lobby.GameHistory, 1)
	s.Equal(0, lobby.ReadyCount())
	for _, m := range lobby.Members {
		s.Equal(model.RolePlayer, m.Role)
	}
}

func (s *ControllerSuite) TestCompleteGameWithoutGame() {
	_, err := s.controller.CompleteGame(s.ctx)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestAbandonGameSkipsHistory() {
	s.startGame("Ann", "Bob")

	s.controller.AbandonGame()

	lobby := s.controller.GetLobby()
	s.Equal(model.LobbyStateWaiting, lobby.State)
	s.Empty(lobby.GameHistory)
}

func (s *ControllerSuite) TestGetLobbyReturnsCopy() {
	s.joinNamed("Ann")

	lobby := s.controller.GetLobby()
	lobby.Members[0].Name = "Mallory"

	s.Equal("Ann", s.controller.GetLobby().Members[0].Name)
}
