package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}
}

func newLobbyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lobby",
		Short: "Show who is waiting in a running server's lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Lobby(cmd.Context())
			if err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}
}
