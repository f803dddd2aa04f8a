package tcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/bot"
	"github.com/mcoot/flipseven-go/internal/services/scoring"
)

// Command is a client request
type Command int

const (
	CommandUnknown Command = iota
	CommandName
	CommandReady
	CommandQuit
	CommandDraw
	CommandStop
)

// Server to client lines
const (
	LineCommands    = "CMD: NAME <pseudo>"
	LineThen        = "Puis: READY | QUIT"
	LineGameStart   = "GAME_START"
	LineTurn        = "TURN"
	LineBye         = "BYE"
	LineInvalidName = "ERR Nom invalide. Utilise: NAME <pseudo>"
	LineNameFirst   = "ERR Choisis d'abord un nom avec: NAME <pseudo>"
	LineUnknown     = "ERR Commande inconnue. Utilise: NAME <pseudo> | READY | QUIT"
	LineInProgress  = "ERR Partie en cours, attends la fin."
)

// ParseLine reads one client line. Keywords are case-insensitive; during a
// game the y/n answers of the local prompt are accepted for DRAW and STOP.
func ParseLine(line string) (Command, string) {
	line = strings.TrimSpace(line)

	if len(line) >= 5 && strings.EqualFold(line[:5], "NAME ") {
		return CommandName, strings.TrimSpace(line[5:])
	}

	switch strings.ToUpper(line) {
	case "NAME":
		return CommandName, ""
	case "READY":
		return CommandReady, ""
	case "QUIT":
		return CommandQuit, ""
	case "DRAW":
		return CommandDraw, ""
	case "STOP":
		return CommandStop, ""
	}

	if decision, ok := bot.ParseAnswer(line); ok {
		if decision == model.DecisionDraw {
			return CommandDraw, ""
		}
		return CommandStop, ""
	}

	return CommandUnknown, line
}

// ErrorLine maps a lobby error to the line sent back to the client
func ErrorLine(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidName):
		return LineInvalidName
	case errors.Is(err, model.ErrNameRequired):
		return LineNameFirst
	case errors.Is(err, model.ErrGameInProgress):
		return LineInProgress
	}
	return "ERR " + err.Error()
}

// WelcomeLine greets a new connection
func WelcomeLine(m model.LobbyMember) string {
	return "WELCOME " + m.Tag()
}

// LobbyLines renders the lobby status
func LobbyLines(l model.Lobby) []string {
	n := len(l.Members)
	members := make([]string, n)
	for i, m := range l.Members {
		state := "WAIT"
		if m.Ready {
			state = "READY"
		}
		members[i] = m.Label() + ":" + state
	}
	return []string{
		fmt.Sprintf("LOBBY %d joueurs | READY %d/%d", n, l.ReadyCount(), n),
		"JOUEURS " + strings.Join(members, " | "),
	}
}

// PlayerCountLine announces the size of the table
func PlayerCountLine(n int) string {
	return fmt.Sprintf("NB_JOUEURS %d", n)
}

// RoundLine announces a new round
func RoundLine(n int) string {
	return fmt.Sprintf("ROUND %d", n)
}

// InfoLine wraps free text
func InfoLine(format string, args ...any) string {
	return "INFO " + fmt.Sprintf(format, args...)
}

// HandLine shows a player their hand before a decision
func HandLine(view bot.View) string {
	return InfoLine("Main: %s | manche %d pts | total %d pts", view.Hand, view.RoundScore, view.TotalScore)
}

// ScoresLine lists name:round:total for every seat
func ScoresLine(scores []scoring.RoundScore) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%s:%d:%d", s.Name, s.RoundScore, s.TotalScore)
	}
	return "SCORES " + strings.Join(parts, " | ")
}

// WinnerLine announces the end of the game
func WinnerLine(w model.Standing) string {
	return fmt.Sprintf("WINNER %s %d", w.Name, w.TotalScore)
}

// EventLine narrates an engine event. Round and game completion are left
// out; SCORES and WINNER report them.
func EventLine(e model.Event) (string, bool) {
	switch e.Type {
	case model.EventRoundStarted:
		return RoundLine(e.Round), true
	case model.EventRoundComplete, model.EventGameComplete:
		return "", false
	}
	return "INFO " + e.Describe(), true
}
