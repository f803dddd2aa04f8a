package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/flipseven-go/internal/model"
)

// DefaultPrompt is the question asked before every decision
const DefaultPrompt = "Continue? (y/n): "

// PromptStrategy asks a human at the terminal. Unrecognised answers are
// asked again.
type PromptStrategy struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

// NewPromptStrategy creates a PromptStrategy reading answers from in and
// writing questions to out
func NewPromptStrategy(in io.Reader, out io.Writer) *PromptStrategy {
	return &PromptStrategy{
		in:     bufio.NewReader(in),
		out:    out,
		prompt: DefaultPrompt,
	}
}

// Decide blocks until the player answers yes or no
func (s *PromptStrategy) Decide(ctx context.Context, view View) (model.Decision, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprint(s.out, s.prompt)
		line, err := s.in.ReadString('\n')
		if d, ok := ParseAnswer(line); ok {
			return d, nil
		}
		if err != nil {
			return "", fmt.Errorf("reading decision for %s: %w", view.Name, err)
		}
	}
}

// ParseAnswer maps a yes/no answer to a decision. English and French
// answers are accepted, case-insensitively.
func ParseAnswer(answer string) (model.Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return model.DecisionDraw, true
	case "n", "no", "non":
		return model.DecisionStop, true
	}
	return "", false
}
