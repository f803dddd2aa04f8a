package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mcoot/flipseven-go/internal/api/request"
	"github.com/mcoot/flipseven-go/internal/api/response"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/bot"
	"github.com/mcoot/flipseven-go/internal/services/game"
)

func newPlayCmd() *cobra.Command {
	var players int
	var resetHistory bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a hot-seat game at this terminal",
		Long: `Play a local game, passing the keyboard around the table.

Each active player is asked "Continue? (y/n)" in turn: y draws a card,
n banks the hand for the round. The game ends once someone reaches the
target score.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := openApp(cmd, 0)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if resetHistory {
				if err := app.Storage.Reset(ctx); err != nil {
					return fmt.Errorf("failed to reset history: %w", err)
				}
			}

			g, err := app.GameController.NewGame(ctx, playerNames(clampPlayers(players), model.DefaultPlayerName))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			strategy := &handStrategy{next: bot.NewPromptStrategy(cmd.InOrStdin(), w), w: w}
			return playRounds(ctx, app.GameController, g.ID, strategy, narrator(w))
		},
	}

	cmd.Flags().IntVarP(&players, "players", "n", model.MinPlayers, "Number of players (2-8)")
	cmd.Flags().BoolVar(&resetHistory, "reset-history", true, "Empty the history log before playing")

	return cmd
}

// playRounds runs a game round by round, printing the scoreboard after each
func playRounds(ctx context.Context, gc game.ControllerInterface, gameID model.GameID, strategy bot.Strategy, sink model.EventSink) error {
	for {
		result, err := gc.PlayRound(ctx, gameID, strategy, sink)
		if errors.Is(err, model.ErrRoundLimitReached) {
			out.PrintMessage("Round limit reached without a winner")
			break
		}
		if err != nil {
			return err
		}

		out.Print(roundScores(result))
		if result.Winner != nil {
			break
		}
	}

	summary, err := gc.CreateGameSummary(ctx, gameID)
	if err != nil {
		return err
	}
	out.Print(response.GameSummaryFromModel(summary))
	return nil
}

func roundScores(result *game.RoundResult) RoundScores {
	scores := RoundScores{
		Round:     result.Number,
		FlipSeven: result.EndedByFlipSeven,
		Players:   make([]PlayerScore, len(result.Scores)),
	}
	for i, s := range result.Scores {
		scores.Players[i] = PlayerScore{
			Name:       s.Name,
			Status:     string(s.Status),
			RoundScore: s.RoundScore,
			TotalScore: s.TotalScore,
		}
	}
	if result.Winner != nil {
		w := response.StandingFromModel(*result.Winner)
		scores.Winner = &w
	}
	return scores
}

// handStrategy shows the player's hand before passing the decision on
type handStrategy struct {
	next bot.Strategy
	w    io.Writer
}

func (s *handStrategy) Decide(ctx context.Context, view bot.View) (model.Decision, error) {
	hand := view.Hand
	if hand == "" {
		hand = "-"
	}
	fmt.Fprint(s.w, pterm.Info.Sprintfln("%s | %s | round %d pts | total %d pts",
		pterm.LightCyan(view.Name), hand, view.RoundScore, view.TotalScore))
	return s.next.Decide(ctx, view)
}

// narrator prints engine events as they happen
func narrator(w io.Writer) model.EventSink {
	return model.EventSinkFunc(func(e model.Event) {
		switch e.Type {
		case model.EventRoundStarted:
			fmt.Fprint(w, pterm.DefaultSection.Sprint(e.Describe()))
		case model.EventBusted, model.EventFrozen:
			fmt.Fprint(w, pterm.Error.Sprintln(e.Describe()))
		case model.EventFlipSeven:
			fmt.Fprint(w, pterm.Success.Sprintln(e.Describe()))
		case model.EventRoundComplete, model.EventGameComplete:
		default:
			fmt.Fprintln(w, e.Describe())
		}
	})
}

func newSimulateCmd() *cobra.Command {
	var players int
	var strategy string
	var threshold int
	var seed uint64
	var remote bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Let bots play a whole game",
		Long: `Seat bots around the table and play until one reaches the target score.

Strategies:
  threshold  draw until the round score reaches --threshold
  random     flip a coin before every draw

A non-zero --seed makes the shuffles, and so the game, reproducible.
With --remote the game is played by the API server instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			names := playerNames(clampPlayers(players), botName)

			if remote {
				req := request.SimulateGameRequest{Players: names, Strategy: strategy, Threshold: threshold}
				result, err := client.SimulateGame(ctx, req)
				if err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			app, err := openApp(cmd, seed)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			bots, err := bot.NewStrategy(strategy, app.Random, threshold)
			if err != nil {
				return err
			}

			g, err := app.GameController.NewGame(ctx, names)
			if err != nil {
				return err
			}

			var sink model.EventSink
			if cfg.Verbose && !out.IsJSON() {
				sink = narrator(cmd.OutOrStdout())
			}

			summary, err := app.GameController.PlayGame(ctx, g.ID, bots, sink)
			if err != nil && !errors.Is(err, model.ErrRoundLimitReached) {
				return err
			}
			out.Print(response.GameSummaryFromModel(summary))
			return nil
		},
	}

	cmd.Flags().IntVarP(&players, "players", "n", model.MinPlayers, "Number of bots (2-8)")
	cmd.Flags().StringVar(&strategy, "strategy", bot.StrategyThreshold, "Bot strategy: threshold, random")
	cmd.Flags().IntVar(&threshold, "threshold", bot.DefaultThreshold, "Round score at which threshold bots stop")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Shuffle seed (0 for a random game)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Simulate on the API server (--server)")

	return cmd
}

func clampPlayers(n int) int {
	return max(model.MinPlayers, min(model.MaxPlayers, n))
}

func botName(id model.PlayerID) string {
	return fmt.Sprintf("Bot %d", id)
}

func playerNames(n int, name func(model.PlayerID) string) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = name(model.PlayerID(i + 1))
	}
	return names
}
