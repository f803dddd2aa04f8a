package lobby

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/flipseven-go/internal/dependencies/clock"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/game"
)

// Controller manages the waiting room in front of the table: who is
// connected, their names and ready flags, and the game they are playing.
// It is safe for concurrent use by connection goroutines.
type Controller struct {
	mu             sync.Mutex
	lobby          model.Lobby
	gameController game.ControllerInterface
	clock          clock.Clock
	logger         *slog.Logger
}

// NewController creates a new lobby Controller with an empty lobby
func NewController(
	gameController game.ControllerInterface,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	now := clock.Now()
	return &Controller{
		lobby: model.Lobby{
			State:       model.LobbyStateWaiting,
			Members:     []model.LobbyMember{},
			GameHistory: []model.GameSummary{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		gameController: gameController,
		clock:          clock,
		logger:         logger.With(slog.String("component", "lobby-controller")),
	}
}

// GetLobby returns a copy of the current lobby
func (c *Controller) GetLobby() model.Lobby {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() model.Lobby {
	out := c.lobby
	out.Members = append([]model.LobbyMember(nil), c.lobby.Members...)
	out.GameHistory = append([]model.GameSummary(nil), c.lobby.GameHistory...)
	if c.lobby.CurrentGame != nil {
		id := *c.lobby.CurrentGame
		out.CurrentGame = &id
	}
	return out
}

// Join adds a new member under the smallest free ID. Members joining while
// a game is running watch as spectators.
func (c *Controller) Join() model.LobbyMember {
	c.mu.Lock()
	defer c.mu.Unlock()

	role := model.RolePlayer
	if c.lobby.State == model.LobbyStateInGame {
		role = model.RoleSpectator
	}

	now := c.clock.Now()
	member := model.LobbyMember{
		ID:       c.freeID(),
		Role:     role,
		JoinedAt: now,
	}
	c.lobby.Members = append(c.lobby.Members, member)
	c.lobby.UpdatedAt = now

	c.logger.Info("member joined",
		slog.String("member", member.Tag()),
		slog.String("role", string(role)),
	)
	return member
}

// freeID returns the smallest ID not held by a connected member
func (c *Controller) freeID() model.MemberID {
	used := make(map[model.MemberID]bool, len(c.lobby.Members))
	for _, m := range c.lobby.Members {
		used[m.ID] = true
	}
	id := model.MemberID(1)
	for used[id] {
		id++
	}
	return id
}

// Leave removes a member and returns it as it was
func (c *Controller) Leave(id model.MemberID) (model.LobbyMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, m := range c.lobby.Members {
		if m.ID == id {
			c.lobby.Members = append(c.lobby.Members[:i], c.lobby.Members[i+1:]...)
			c.lobby.UpdatedAt = c.clock.Now()
			c.logger.Info("member left", slog.String("member", m.Label()))
			return m, nil
		}
	}
	return model.LobbyMember{}, model.ErrMemberNotFound
}

// SetName names a member. Surrounding whitespace is trimmed; an empty name
// is rejected.
func (c *Controller) SetName(id model.MemberID, name string) (model.LobbyMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.LobbyMember{}, model.ErrInvalidName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	member := c.lobby.GetMember(id)
	if member == nil {
		return model.LobbyMember{}, model.ErrMemberNotFound
	}
	member.Name = name
	c.lobby.UpdatedAt = c.clock.Now()

	c.logger.Info("member named",
		slog.String("member", member.Tag()),
		slog.String("name", name),
	)
	return *member, nil
}

// SetReady marks a named member ready. It reports whether the lobby can now
// start a game.
func (c *Controller) SetReady(id model.MemberID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member := c.lobby.GetMember(id)
	if member == nil {
		return false, model.ErrMemberNotFound
	}
	if member.Name == "" {
		return false, model.ErrNameRequired
	}
	if c.lobby.State == model.LobbyStateInGame {
		return false, model.ErrGameInProgress
	}

	member.Ready = true
	c.lobby.UpdatedAt = c.clock.Now()
	c.logger.Info("member ready", slog.String("name", member.Name))

	return c.canStart(), nil
}

// canStart is true with at least two members, all ready, and no game running
func (c *Controller) canStart() bool {
	return c.lobby.State == model.LobbyStateWaiting &&
		len(c.lobby.Members) >= model.MinPlayers &&
		c.lobby.AllReady()
}

// StartGame creates a game seating every member in join order
func (c *Controller) StartGame(ctx context.Context) (*model.Game, []model.LobbyMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lobby.State == model.LobbyStateInGame {
		return nil, nil, model.ErrGameInProgress
	}
	if !c.canStart() {
		return nil, nil, model.ErrNotReadyToStart
	}

	players := append([]model.LobbyMember(nil), c.lobby.Members...)
	names := make([]string, len(players))
	for i, m := range players {
		names[i] = m.Name
	}

	g, err := c.gameController.NewGame(ctx, names)
	if err != nil {
		return nil, nil, err
	}

	for i := range c.lobby.Members {
		c.lobby.Members[i].Role = model.RolePlayer
	}
	c.lobby.State = model.LobbyStateInGame
	c.lobby.CurrentGame = &g.ID
	c.lobby.UpdatedAt = c.clock.Now()

	c.logger.Info("game started",
		slog.String("game_id", string(g.ID)),
		slog.Int("player_count", len(players)),
	)
	return g, players, nil
}

// CompleteGame files the current game's summary and reopens the lobby.
// Everybody must ready up again for the next game.
func (c *Controller) CompleteGame(ctx context.Context) (*model.GameSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lobby.CurrentGame == nil {
		return nil, model.ErrGameNotFound
	}

	summary, err := c.gameController.CreateGameSummary(ctx, *c.lobby.CurrentGame)
	if err != nil {
		return nil, err
	}

	c.lobby.GameHistory = append(c.lobby.GameHistory, *summary)
	c.reopen()
	return summary, nil
}

// AbandonGame reopens the lobby without recording the current game
func (c *Controller) AbandonGame() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lobby.CurrentGame != nil {
		c.logger.Warn("game abandoned", slog.String("game_id", string(*c.lobby.CurrentGame)))
	}
	c.reopen()
}

func (c *Controller) reopen() {
	for i := range c.lobby.Members {
		c.lobby.Members[i].Ready = false
		c.lobby.Members[i].Role = model.RolePlayer
	}
	c.lobby.State = model.LobbyStateWaiting
	c.lobby.CurrentGame = nil
	c.lobby.UpdatedAt = c.clock.Now()
}

// Interface for dependency injection
type ControllerInterface interface {
	GetLobby() model.Lobby
	Join() model.LobbyMember
	Leave(id model.MemberID) (model.LobbyMember, error)
	SetName(id model.MemberID, name string) (model.LobbyMember, error)
	SetReady(id model.MemberID) (bool, error)
	StartGame(ctx context.Context) (*model.Game, []model.LobbyMember, error)
	CompleteGame(ctx context.Context) (*model.GameSummary, error)
	AbandonGame()
}

var _ ControllerInterface = (*Controller)(nil)
