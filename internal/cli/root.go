package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/flipseven-go/internal/factory"
)

var (
	cfg    *Config
	client *Client
	out    *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "flipseven",
		Short: "Flip 7 card game",
		Long: `flipseven plays the Flip 7 card game in the terminal.

Play a hot-seat game, let bots simulate one, browse the round history,
or join a lobby server over TCP.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			out = NewOutput(cfg.Output, cmd.OutOrStdout())
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.StorageType, "store", cfg.StorageType, "History store: memory, file, redis, postgres (env: FLIP7_STORE)")
	rootCmd.PersistentFlags().StringVar(&cfg.HistoryFile, "history-file", cfg.HistoryFile, "History file for the file store (env: FLIP7_HISTORY_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis store (env: FLIP7_REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres URL for the postgres store (env: FLIP7_DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "HTTP API URL for remote commands (env: FLIP7_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: FLIP7_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newLobbyCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp wires the local application against the configured store
func openApp(cmd *cobra.Command, seed uint64) (*factory.App, error) {
	logger := cfg.Logger(cmd.ErrOrStderr())
	return factory.New(cfg.FactoryConfig(logger, seed))
}
