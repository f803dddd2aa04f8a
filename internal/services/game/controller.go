package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/flipseven-go/internal/dependencies/clock"
	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/bot"
	"github.com/mcoot/flipseven-go/internal/services/deck"
	"github.com/mcoot/flipseven-go/internal/services/round"
	"github.com/mcoot/flipseven-go/internal/services/scoring"
	"github.com/mcoot/flipseven-go/internal/storage"
)

// DefaultMaxRounds bounds a game whose players never reach the target
const DefaultMaxRounds = 100

// DeckSource supplies the deck for each new round
type DeckSource func() *deck.Deck

// RoundResult describes a finished round
type RoundResult struct {
	GameID           model.GameID
	Number           int
	RecordID         model.RoundID
	Record           *model.RoundRecord
	Scores           []scoring.RoundScore
	EndedByFlipSeven bool
	Winner           *model.Standing // Set when this round ended the game
}

// Controller drives games: a sequence of rounds until someone reaches the
// target score
type Controller struct {
	storage        storage.Storage
	scoringService *scoring.Service
	clock          clock.Clock
	random         random.Random
	deckSource     DeckSource
	maxRounds      int
	logger         *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	scoringService *scoring.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		storage:        storage,
		scoringService: scoringService,
		clock:          clock,
		random:         random,
		maxRounds:      DefaultMaxRounds,
		logger:         logger.With(slog.String("component", "game-controller")),
	}
	c.deckSource = func() *deck.Deck { return deck.NewShuffled(c.random) }
	return c
}

// SetDeckSource replaces the shuffled standard deck used for new rounds
func (c *Controller) SetDeckSource(src DeckSource) {
	c.deckSource = src
}

// SetMaxRounds changes the round limit; non-positive values are ignored
func (c *Controller) SetMaxRounds(n int) {
	if n > 0 {
		c.maxRounds = n
	}
}

// NewGame seats the named players with zero totals. Empty names get a default.
func (c *Controller) NewGame(ctx context.Context, names []string) (*model.Game, error) {
	if len(names) < model.MinPlayers {
		return nil, model.ErrInsufficientPlayers
	}
	if len(names) > model.MaxPlayers {
		return nil, model.ErrTooManyPlayers
	}

	seats := make([]model.Seat, len(names))
	for i, name := range names {
		id := model.PlayerID(i + 1)
		if name == "" {
			name = model.DefaultPlayerName(id)
		}
		seats[i] = model.Seat{ID: id, Name: name}
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:          model.GameID(uuid.NewString()),
		State:       model.GameStatePlaying,
		Seats:       seats,
		TargetScore: c.scoringService.TargetScore(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.Int("player_count", len(seats)),
		slog.Int("target_score", game.TargetScore),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// PlayRound plays the next round of a game. Players act in seat order,
// skipping anyone no longer active, until the round is over. A draw from an
// empty deck makes the player stop.
func (c *Controller) PlayRound(ctx context.Context, gameID model.GameID, strategy bot.Strategy, sink model.EventSink) (*RoundResult, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.State == model.GameStateComplete {
		return nil, model.ErrGameComplete
	}
	if game.RoundsDone >= c.maxRounds {
		return nil, model.ErrRoundLimitReached
	}

	number := game.RoundsDone + 1
	roundSink := stampRound(sink, number)
	emit(roundSink, model.Event{Type: model.EventRoundStarted})

	r := round.New(len(game.Seats), c.deckSource(), round.Config{
		Names:  game.Names(),
		Totals: game.Totals(),
		Sink:   roundSink,
		Logger: c.logger.With(slog.String("game_id", string(game.ID)), slog.Int("round", number)),
	})
	r.DealInitial()

	players := r.Players()
	for idx := 0; !r.IsRoundOver(); idx = (idx + 1) % len(players) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := players[idx]
		if !p.IsActive() {
			continue
		}

		view := bot.NewView(number, p, r.DeckRemaining(), game.TargetScore)
		decision, err := strategy.Decide(ctx, view)
		if err != nil {
			return nil, fmt.Errorf("deciding for %s: %w", p.Name, err)
		}

		switch decision {
		case model.DecisionStop:
			r.Stop(p)
		case model.DecisionDraw:
			if _, ok := r.DrawForPlayer(p); !ok {
				r.Stop(p)
			}
		default:
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidDecision, decision)
		}
	}

	return c.completeRound(ctx, game, number, r, roundSink)
}

// completeRound scores the round once, records it and updates the game
func (c *Controller) completeRound(ctx context.Context, game *model.Game, number int, r *round.Round, sink model.EventSink) (*RoundResult, error) {
	players := r.Players()
	scores, err := c.scoringService.FinalizeRound(players)
	if err != nil {
		return nil, fmt.Errorf("finalize round %d: %w", number, err)
	}

	// Snapshot before second chances are cleared so the record shows them
	record := &model.RoundRecord{
		GameID:      game.ID,
		RoundNumber: number,
		Date:        c.clock.Now(),
		NumPlayers:  len(players),
		Players:     make([]model.PlayerRecord, len(players)),
	}
	for i, p := range players {
		record.Players[i] = model.NewPlayerRecord(p)
	}
	r.ResetSecondChances()

	recordID, err := c.storage.AppendRound(ctx, record)
	if err != nil {
		c.logger.Error("failed to append round",
			slog.String("game_id", string(game.ID)),
			slog.Int("round", number),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording round %d: %w", number, err)
	}

	for i, p := range players {
		game.Seats[i].TotalScore = p.TotalScore
	}
	game.RoundsDone = number
	game.UpdatedAt = c.clock.Now()

	winner := c.scoringService.DetermineWinner(game.Seats)
	if winner != nil {
		id := winner.PlayerID
		game.State = model.GameStateComplete
		game.Winner = &id
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("round complete",
		slog.String("game_id", string(game.ID)),
		slog.Int("round", number),
		slog.Int64("round_id", int64(recordID)),
		slog.Bool("flip_seven", r.EndedByFlipSeven()),
	)
	emit(sink, model.Event{Type: model.EventRoundComplete})

	if winner != nil {
		c.logger.Info("game complete",
			slog.String("game_id", string(game.ID)),
			slog.String("winner", winner.Name),
			slog.Int("total_score", winner.TotalScore),
			slog.Int("rounds", number),
		)
		emit(sink, model.Event{Type: model.EventGameComplete, PlayerID: winner.PlayerID, PlayerName: winner.Name})
	}

	return &RoundResult{
		GameID:           game.ID,
		Number:           number,
		RecordID:         recordID,
		Record:           record,
		Scores:           scores,
		EndedByFlipSeven: r.EndedByFlipSeven(),
		Winner:           winner,
	}, nil
}

// PlayGame plays rounds until the game has a winner. If the round limit is
// hit first, the summary so far is returned with ErrRoundLimitReached.
func (c *Controller) PlayGame(ctx context.Context, gameID model.GameID, strategy bot.Strategy, sink model.EventSink) (*model.GameSummary, error) {
	for {
		result, err := c.PlayRound(ctx, gameID, strategy, sink)
		if err != nil {
			if errors.Is(err, model.ErrRoundLimitReached) {
				summary, sumErr := c.CreateGameSummary(ctx, gameID)
				if sumErr != nil {
					return nil, sumErr
				}
				c.logger.Warn("round limit reached",
					slog.String("game_id", string(gameID)),
					slog.Int("rounds", summary.Rounds),
				)
				return summary, err
			}
			return nil, err
		}
		if result.Winner != nil {
			return c.CreateGameSummary(ctx, gameID)
		}
	}
}

// GetRounds returns the recorded rounds of a game in play order
func (c *Controller) GetRounds(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error) {
	if _, err := c.storage.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return c.storage.ListRoundsForGame(ctx, gameID)
}

// CreateGameSummary creates a summary of a game's standings
func (c *Controller) CreateGameSummary(ctx context.Context, gameID model.GameID) (*model.GameSummary, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	summary := &model.GameSummary{
		ID:          game.ID,
		Rounds:      game.RoundsDone,
		Standings:   c.scoringService.Standings(game.Seats),
		CompletedAt: game.UpdatedAt,
	}
	if game.Winner != nil {
		if seat := game.GetSeat(*game.Winner); seat != nil {
			summary.Winner = &model.Standing{
				PlayerID:   seat.ID,
				Name:       seat.Name,
				TotalScore: seat.TotalScore,
			}
		}
	}
	return summary, nil
}

// stampRound tags every event with the round number
func stampRound(sink model.EventSink, number int) model.EventSink {
	if sink == nil {
		return nil
	}
	return model.EventSinkFunc(func(e model.Event) {
		e.Round = number
		sink.HandleEvent(e)
	})
}

func emit(sink model.EventSink, e model.Event) {
	if sink != nil {
		sink.HandleEvent(e)
	}
}

// ControllerInterface for dependency injection
type ControllerInterface interface {
	NewGame(ctx context.Context, names []string) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	PlayRound(ctx context.Context, gameID model.GameID, strategy bot.Strategy, sink model.EventSink) (*RoundResult, error)
	PlayGame(ctx context.Context, gameID model.GameID, strategy bot.Strategy, sink model.EventSink) (*model.GameSummary, error)
	GetRounds(ctx context.Context, gameID model.GameID) ([]*model.RoundRecord, error)
	CreateGameSummary(ctx context.Context, gameID model.GameID) (*model.GameSummary, error)
}

var _ ControllerInterface = (*Controller)(nil)
