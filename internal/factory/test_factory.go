package factory

import (
	"time"

	"github.com/mcoot/flipseven-go/internal/dependencies/mocks"
	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/deck"
	"github.com/mcoot/flipseven-go/internal/storage/memory"
	"github.com/mcoot/flipseven-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, model.DefaultTargetScore, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// UseDecks makes the game controller deal the given decks in order, one per
// round. The last deck repeats once the list runs out.
func (t *TestApp) UseDecks(decks ...[]model.Card) {
	next := 0
	t.GameController.SetDeckSource(func() *deck.Deck {
		cards := decks[next]
		if next < len(decks)-1 {
			next++
		}
		return deck.New(cards)
	})
}
