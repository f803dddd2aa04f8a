package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/game"
	"github.com/mcoot/flipseven-go/internal/services/lobby"
)

// ServerConfig holds configuration for the lobby server
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults for server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            "0.0.0.0:5000",
		ShutdownTimeout: 10 * time.Second,
	}
}

// session is the game currently being played at the table
type session struct {
	gameID model.GameID
	remote *RemoteStrategy
	cancel context.CancelFunc
}

// Server accepts lobby connections and runs one game at a time
type Server struct {
	config         ServerConfig
	lobby          lobby.ControllerInterface
	gameController game.ControllerInterface
	hub            *Hub
	logger         *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	session  *session
}

// NewServer creates a new lobby server
func NewServer(
	config ServerConfig,
	lobbyController lobby.ControllerInterface,
	gameController game.ControllerInterface,
	logger *slog.Logger,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:         config,
		lobby:          lobbyController,
		gameController: gameController,
		hub:            NewHub(logger),
		logger:         logger.With(slog.String("component", "tcp-server")),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Listen binds the listening socket without accepting connections yet
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until Shutdown is called
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	s.logger.Info("starting lobby server", slog.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Start listens and serves until Shutdown is called
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown stops accepting connections, abandons any running game and
// disconnects every client
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down lobby server")

	s.cancel()
	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("lobby server stopped")
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown error: %w", shutdownCtx.Err())
	}
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	member := s.lobby.Join()
	client := NewClient(member.ID, conn)
	if !s.hub.Register(client) {
		_, _ = s.lobby.Leave(member.ID)
		_ = conn.Close()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		client.writeLoop()
	}()

	s.logger.Info("member connected",
		slog.String("member", member.Tag()),
		slog.String("remote_addr", conn.RemoteAddr().String()),
	)

	s.hub.Send(member.ID, WelcomeLine(member))
	s.hub.Send(member.ID, LineCommands)
	s.hub.Send(member.ID, LineThen)
	if member.Role == model.RoleSpectator {
		s.hub.Send(member.ID, InfoLine("Partie en cours, tu regardes."))
	}
	s.broadcastLobby()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !s.handleLine(member.ID, line) {
			break
		}
	}

	s.disconnect(client)
}

// handleLine applies one client request. It returns false when the client
// asked to quit.
func (s *Server) handleLine(id model.MemberID, line string) bool {
	cmd, arg := ParseLine(line)
	switch cmd {
	case CommandName:
		m, err := s.lobby.SetName(id, arg)
		if err != nil {
			s.hub.Send(id, ErrorLine(err))
			return true
		}
		s.hub.Broadcast(InfoLine("%s s'appelle %s", m.Tag(), m.Name))
		s.broadcastLobby()

	case CommandReady:
		startable, err := s.lobby.SetReady(id)
		if err != nil {
			s.hub.Send(id, ErrorLine(err))
			return true
		}
		l := s.lobby.GetLobby()
		if m := l.GetMember(id); m != nil {
			s.hub.Broadcast(InfoLine("%s est READY", m.Name))
		}
		s.broadcastLobby()
		if startable {
			s.startGame()
		}

	case CommandQuit:
		s.hub.Send(id, LineBye)
		return false

	case CommandDraw:
		s.submit(id, model.DecisionDraw)

	case CommandStop:
		s.submit(id, model.DecisionStop)

	default:
		s.hub.Send(id, LineUnknown)
	}
	return true
}

// submit forwards a decision to the running game. Requests out of turn are
// ignored.
func (s *Server) submit(id model.MemberID, d model.Decision) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess == nil || !sess.remote.Submit(id, d) {
		s.logger.Debug("stale decision ignored",
			slog.Int("member_id", int(id)),
			slog.String("decision", string(d)),
		)
	}
}

func (s *Server) disconnect(client *Client) {
	s.hub.Unregister(client)

	m, err := s.lobby.Leave(client.id)
	if err != nil {
		s.logger.Warn("leave failed",
			slog.String("member", client.Tag()),
			slog.String("error", err.Error()),
		)
		return
	}

	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess != nil && sess.remote.IsSeated(m.ID) && sess.remote.Disconnect(m.ID) == 0 {
		s.logger.Info("all players left, abandoning game", slog.String("game_id", string(sess.gameID)))
	}

	s.logger.Info("member disconnected", slog.String("member", m.Label()))
	s.hub.Broadcast(InfoLine("%s a quitté", m.Label()))
	s.broadcastLobby()
}

func (s *Server) broadcastLobby() {
	for _, line := range LobbyLines(s.lobby.GetLobby()) {
		s.hub.Broadcast(line)
	}
}

// startGame seats every ready member and plays the game on its own goroutine
func (s *Server) startGame() {
	g, players, err := s.lobby.StartGame(s.ctx)
	if err != nil {
		if !errors.Is(err, model.ErrGameInProgress) {
			s.logger.Error("failed to start game", slog.String("error", err.Error()))
			s.hub.Broadcast("ERR " + err.Error())
		}
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	sess := &session{
		gameID: g.ID,
		remote: NewRemoteStrategy(players, s.hub, cancel, s.logger),
		cancel: cancel,
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.hub.Broadcast(LineGameStart)
	s.hub.Broadcast(PlayerCountLine(len(players)))

	s.wg.Add(1)
	go s.runGame(ctx, sess)
}

// runGame plays rounds until a winner is found, then reopens the lobby
func (s *Server) runGame(ctx context.Context, sess *session) {
	defer s.wg.Done()
	defer sess.cancel()

	logger := s.logger.With(slog.String("game_id", string(sess.gameID)))
	narrate := model.EventSinkFunc(func(e model.Event) {
		if line, ok := EventLine(e); ok {
			s.hub.Broadcast(line)
		}
	})

	for {
		result, err := s.gameController.PlayRound(ctx, sess.gameID, sess.remote, narrate)
		if err != nil {
			if errors.Is(err, model.ErrRoundLimitReached) {
				s.hub.Broadcast(InfoLine("Limite de manches atteinte, pas de vainqueur."))
				s.finishGame(ctx, logger)
				return
			}
			logger.Warn("game abandoned", slog.String("error", err.Error()))
			s.endSession()
			s.lobby.AbandonGame()
			s.hub.Broadcast(InfoLine("Partie abandonnée."))
			s.broadcastLobby()
			return
		}

		s.hub.Broadcast(ScoresLine(result.Scores))
		if result.Winner != nil {
			s.hub.Broadcast(WinnerLine(*result.Winner))
			s.finishGame(ctx, logger)
			return
		}
	}
}

func (s *Server) finishGame(ctx context.Context, logger *slog.Logger) {
	s.endSession()
	if _, err := s.lobby.CompleteGame(ctx); err != nil {
		logger.Error("failed to complete game", slog.String("error", err.Error()))
		s.lobby.AbandonGame()
	}
	s.broadcastLobby()
}

func (s *Server) endSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}
