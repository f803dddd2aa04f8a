package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// DefaultLobbyPort is used when join is given a bare host
const DefaultLobbyPort = "5000"

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <host>[:port]",
		Short: "Join a lobby server",
		Long: `Connect to a lobby server and play over its line protocol.

Type commands as the server asks for them:
  NAME <pseudo>   pick a name
  READY           ready up; the game starts once everyone is ready
  DRAW / STOP     answer a TURN (y / n work too)
  QUIT            leave

Closing the input (Ctrl+D) leaves the lobby.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(cmd.Context(), lobbyAddr(args[0]), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func lobbyAddr(arg string) string {
	if _, _, err := net.SplitHostPort(arg); err == nil {
		return arg
	}
	return net.JoinHostPort(arg, DefaultLobbyPort)
}

// runJoin relays input lines to the server and prints what it sends back
// until the server closes the connection
func runJoin(ctx context.Context, addr string, in io.Reader, w io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			fmt.Fprint(w, prettyLine(scanner.Text()))
		}
		done <- scanner.Err()
	}()

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if _, err := io.WriteString(conn, scanner.Text()+"\n"); err != nil {
				return
			}
		}
		_, _ = io.WriteString(conn, "QUIT\n")
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("connection lost: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

// prettyLine renders one protocol line for the terminal
func prettyLine(line string) string {
	keyword, rest, _ := strings.Cut(line, " ")

	switch keyword {
	case "WELCOME":
		return pterm.Success.Sprintfln("Connected as %s", rest)
	case "CMD:", "Puis:":
		return pterm.Gray(line) + "\n"
	case "LOBBY", "JOUEURS":
		return pterm.LightBlue(line) + "\n"
	case "INFO":
		return pterm.Info.Sprintln(rest)
	case "ERR":
		return pterm.Error.Sprintln(rest)
	case "GAME_START":
		return pterm.DefaultSection.Sprint("Game started")
	case "NB_JOUEURS":
		return fmt.Sprintf("Players: %s\n", rest)
	case "ROUND":
		return pterm.DefaultSection.Sprintf("Round %s", rest)
	case "TURN":
		return pterm.Warning.Sprintln("Your turn: DRAW or STOP (y/n)")
	case "SCORES":
		return scoresTable(rest)
	case "WINNER":
		i := strings.LastIndex(rest, " ")
		if i < 0 {
			return line + "\n"
		}
		return pterm.Success.Sprintfln("%s wins with %s points", pterm.LightCyan(rest[:i]), rest[i+1:])
	case "BYE":
		return pterm.Info.Sprintln("Bye")
	}
	return line + "\n"
}

// scoresTable renders "name:round:total | ..." as a table
func scoresTable(entries string) string {
	data := pterm.TableData{{"Player", "Round", "Total"}}
	for _, entry := range strings.Split(entries, " | ") {
		total := strings.LastIndex(entry, ":")
		if total < 0 {
			continue
		}
		round := strings.LastIndex(entry[:total], ":")
		if round < 0 {
			continue
		}
		data = append(data, []string{entry[:round], entry[round+1 : total], entry[total+1:]})
	}

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "SCORES " + entries + "\n"
	}
	return rendered + "\n"
}
