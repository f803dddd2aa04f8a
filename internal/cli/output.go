package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/mcoot/flipseven-go/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// IsJSON reports whether machine-readable output was requested
func (o *Output) IsJSON() bool {
	return o.format == FormatJSON
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.IsJSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.IsJSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprint(o.w, pterm.Info.Sprintln(msg))
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.GameSummary:
		o.printSummary(v)
	case response.Round:
		o.printRound(v)
	case response.RoundList:
		o.printRoundList(v)
	case response.Lobby:
		o.printLobby(v)
	case RoundScores:
		o.printRoundScores(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// RoundScores is the scoreboard shown after each round of a local game
type RoundScores struct {
	Round     int                `json:"round"`
	FlipSeven bool               `json:"flip_seven"`
	Players   []PlayerScore      `json:"players"`
	Winner    *response.Standing `json:"winner,omitempty"`
}

// PlayerScore is one line of RoundScores
type PlayerScore struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	RoundScore int    `json:"round_score"`
	TotalScore int    `json:"total_score"`
}

func (o *Output) table(data pterm.TableData) {
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		o.printJSON(data)
		return
	}
	fmt.Fprintln(o.w, rendered)
}

func (o *Output) printSummary(s response.GameSummary) {
	fmt.Fprint(o.w, pterm.DefaultSection.Sprintf("Game %s", s.ID))
	fmt.Fprintf(o.w, "Rounds: %d\n", s.Rounds)

	data := pterm.TableData{{"#", "Player", "Total"}}
	for i, st := range s.Standings {
		data = append(data, []string{strconv.Itoa(i + 1), st.Name, strconv.Itoa(st.TotalScore)})
	}
	o.table(data)

	if s.Winner != nil {
		fmt.Fprint(o.w, pterm.Success.Sprintfln("%s wins with %d points", pterm.LightCyan(s.Winner.Name), s.Winner.TotalScore))
	} else {
		fmt.Fprint(o.w, pterm.Warning.Sprintln("No winner"))
	}
}

func (o *Output) printRoundScores(r RoundScores) {
	title := fmt.Sprintf("End of round %d", r.Round)
	if r.FlipSeven {
		title += " (Flip 7)"
	}
	fmt.Fprint(o.w, pterm.DefaultSection.Sprint(title))

	data := pterm.TableData{{"Player", "Status", "Round", "Total"}}
	for _, p := range r.Players {
		data = append(data, []string{p.Name, p.Status, strconv.Itoa(p.RoundScore), strconv.Itoa(p.TotalScore)})
	}
	o.table(data)
}

func (o *Output) printRound(r response.Round) {
	fmt.Fprint(o.w, pterm.DefaultSection.Sprintf("Round #%d", r.ID))
	if r.GameID != "" {
		fmt.Fprintf(o.w, "Game: %s (round %d)\n", r.GameID, r.RoundNumber)
	}
	fmt.Fprintf(o.w, "Date: %s\n", r.Date.Format("2006-01-02 15:04:05"))

	data := pterm.TableData{{"Player", "Numbers", "Modifiers", "Actions", "Status", "Round", "Total"}}
	for _, p := range r.Players {
		data = append(data, []string{
			p.Name,
			strings.Join(p.Numbers, " "),
			strings.Join(p.Modifiers, " "),
			strings.Join(p.Actions, " "),
			roundStatus(p),
			strconv.Itoa(p.RoundScore),
			strconv.Itoa(p.TotalScore),
		})
	}
	o.table(data)
}

func roundStatus(p response.RoundPlayer) string {
	switch {
	case p.Busted:
		return "busted"
	case p.Frozen:
		return "frozen"
	case p.Stopped:
		return "stopped"
	}
	return "-"
}

func (o *Output) printRoundList(l response.RoundList) {
	if l.Count == 0 {
		fmt.Fprint(o.w, pterm.Info.Sprintln("No rounds recorded"))
		return
	}

	data := pterm.TableData{{"ID", "Game", "Round", "Date", "Scores"}}
	for _, r := range l.Rounds {
		scores := make([]string, len(r.Players))
		for i, p := range r.Players {
			scores[i] = fmt.Sprintf("%s %d/%d", p.Name, p.RoundScore, p.TotalScore)
		}
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			shortID(r.GameID),
			strconv.Itoa(r.RoundNumber),
			r.Date.Format("2006-01-02 15:04"),
			strings.Join(scores, ", "),
		})
	}
	o.table(data)
	fmt.Fprintf(o.w, "%d rounds\n", l.Count)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (o *Output) printLobby(l response.Lobby) {
	fmt.Fprint(o.w, pterm.DefaultSection.Sprint("Lobby"))
	fmt.Fprintf(o.w, "State: %s\n", l.State)
	if l.CurrentGame != nil {
		fmt.Fprintf(o.w, "Current Game: %s\n", *l.CurrentGame)
	}
	fmt.Fprintf(o.w, "Ready: %d/%d\n", l.ReadyCount, len(l.Members))

	if len(l.Members) > 0 {
		data := pterm.TableData{{"ID", "Name", "Role", "Ready"}}
		for _, m := range l.Members {
			ready := "WAIT"
			if m.Ready {
				ready = "READY"
			}
			data = append(data, []string{fmt.Sprintf("J%d", m.ID), m.Label, m.Role, ready})
		}
		o.table(data)
	}

	if len(l.GameHistory) > 0 {
		fmt.Fprintf(o.w, "Games played: %d\n", len(l.GameHistory))
		for _, g := range l.GameHistory {
			if g.Winner != nil {
				fmt.Fprintf(o.w, "  - %s: %s (%d)\n", shortID(g.ID), g.Winner.Name, g.Winner.TotalScore)
			}
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
