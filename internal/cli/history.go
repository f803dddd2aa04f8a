package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/flipseven-go/internal/api/response"
	"github.com/mcoot/flipseven-go/internal/model"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the round history",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var gameID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, 0)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			var records []*model.RoundRecord
			if gameID != "" {
				records, err = app.Storage.ListRoundsForGame(cmd.Context(), model.GameID(gameID))
			} else {
				records, err = app.Storage.ListRounds(cmd.Context())
			}
			if err != nil {
				return err
			}

			out.Print(response.RoundListFromModel(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Only rounds of this game")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid round id %q", args[0])
			}

			app, err := openApp(cmd, 0)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			record, err := app.Storage.GetRound(cmd.Context(), model.RoundID(id))
			if err != nil {
				return fmt.Errorf("round %d: %w", id, err)
			}

			out.Print(response.RoundFromModel(record))
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded round",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, 0)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if err := app.Storage.Reset(cmd.Context()); err != nil {
				return err
			}

			out.PrintMessage("History cleared")
			return nil
		},
	}
}
