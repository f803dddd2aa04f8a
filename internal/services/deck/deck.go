package deck

import (
	"github.com/mcoot/flipseven-go/internal/dependencies/random"
	"github.com/mcoot/flipseven-go/internal/model"
)

// StandardSize is the number of cards in a full deck
const StandardSize = 96

// modifierCounts is the modifier composition, in deck order
var modifierCounts = []struct {
	kind  model.ModifierKind
	count int
}{
	{model.ModifierPlus2, 2},
	{model.ModifierPlus4, 2},
	{model.ModifierPlus6, 2},
	{model.ModifierPlus8, 1},
	{model.ModifierPlus10, 1},
	{model.ModifierTimes2, 2},
}

// actionCounts is the action composition, in deck order
var actionCounts = []struct {
	kind  model.ActionKind
	count int
}{
	{model.ActionFreeze, 3},
	{model.ActionFlipThree, 2},
	{model.ActionSecondChance, 2},
}

// NewStandard returns the 96 cards of a full deck in a fixed order:
// one 0, then v copies of each value v from 1 to 12, then modifiers, then actions
func NewStandard() []model.Card {
	cards := make([]model.Card, 0, StandardSize)

	cards = append(cards, model.NumberCard(0))
	for value := 1; value <= model.MaxNumberValue; value++ {
		for i := 0; i < value; i++ {
			cards = append(cards, model.NumberCard(value))
		}
	}

	for _, m := range modifierCounts {
		for i := 0; i < m.count; i++ {
			cards = append(cards, model.ModifierCard(m.kind))
		}
	}

	for _, a := range actionCounts {
		for i := 0; i < a.count; i++ {
			cards = append(cards, model.ActionCard(a.kind))
		}
	}

	return cards
}

// Shuffle permutes cards in place and returns the same slice
func Shuffle(cards []model.Card, rnd random.Random) []model.Card {
	random.Shuffle(rnd, len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

// Deck is an ordered pile consumed from the front. A cursor marks the next
// card so drawing never reallocates.
type Deck struct {
	cards []model.Card
	next  int
}

// New creates a deck drawing cards in the given order. The deck keeps its own copy.
func New(cards []model.Card) *Deck {
	owned := make([]model.Card, len(cards))
	copy(owned, cards)
	return &Deck{cards: owned}
}

// NewShuffled creates a full deck shuffled with rnd
func NewShuffled(rnd random.Random) *Deck {
	return &Deck{cards: Shuffle(NewStandard(), rnd)}
}

// Draw removes and returns the front card. The second result is false when
// the deck is exhausted; that is not an error.
func (d *Deck) Draw() (model.Card, bool) {
	if d.next >= len(d.cards) {
		return model.Card{}, false
	}
	card := d.cards[d.next]
	d.next++
	return card, true
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Peek returns the remaining cards in draw order without consuming them
func (d *Deck) Peek() []model.Card {
	out := make([]model.Card, d.Remaining())
	copy(out, d.cards[d.next:])
	return out
}
