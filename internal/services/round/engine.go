package round

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/deck"
)

// FlipThreeDraws is the number of extra draws forced by a flip three card
const FlipThreeDraws = 3

// Config holds what a round needs besides its deck
type Config struct {
	// Names in seat order; missing or empty names get a default
	Names []string
	// Totals carried over from previous rounds, in seat order
	Totals []int
	// Sink receives play-by-play events (optional)
	Sink model.EventSink
	// Logger receives debug traces of every resolution step (optional)
	Logger *slog.Logger
}

// Round is one hand of play. It owns its deck and its players' round state.
// A Round is not safe for concurrent use: callers must serialise requests.
type Round struct {
	players   []*model.PlayerState
	deck      *deck.Deck
	roundOver bool
	sink      model.EventSink
	logger    *slog.Logger
}

// cascadeFrame tracks one flip three still owed draws
type cascadeFrame struct {
	drawn int
}

// New creates a round for numPlayers seats drawing from d
func New(numPlayers int, d *deck.Deck, cfg Config) *Round {
	players := make([]*model.PlayerState, numPlayers)
	for i := range players {
		id := model.PlayerID(i + 1)
		name := ""
		if i < len(cfg.Names) {
			name = cfg.Names[i]
		}
		total := 0
		if i < len(cfg.Totals) {
			total = cfg.Totals[i]
		}
		players[i] = model.NewPlayerState(id, name, total)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Round{
		players: players,
		deck:    d,
		sink:    cfg.Sink,
		logger:  logger,
	}
}

// Players returns the round's players in seat order
func (r *Round) Players() []*model.PlayerState {
	return r.players
}

// Player returns the player with the given ID, or nil if not found
func (r *Round) Player(id model.PlayerID) *model.PlayerState {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// DeckRemaining returns the number of undrawn cards
func (r *Round) DeckRemaining() int {
	return r.deck.Remaining()
}

// DealInitial draws one card for each player in seat order, stopping early
// if the round ends or the deck runs out
func (r *Round) DealInitial() {
	for _, p := range r.players {
		if r.roundOver {
			break
		}
		if _, ok := r.DrawForPlayer(p); !ok {
			break
		}
	}
}

// DrawForPlayer draws one card and resolves it for p. The second result is
// false when the deck is exhausted. Drawing for a player who is no longer
// active, or after the round ended, still consumes the card but has no effect.
func (r *Round) DrawForPlayer(p *model.PlayerState) (model.Card, bool) {
	card, ok := r.drawFor(p, false, 0)
	if !ok {
		return model.Card{}, false
	}
	r.resolveDraw(p, card)
	return card, true
}

// Stop banks p's hand for the rest of the round. No-op unless p is active.
func (r *Round) Stop(p *model.PlayerState) {
	if p.Stop() {
		r.logger.Debug("player stopped", playerAttrs(p)...)
		r.emit(model.Event{Type: model.EventPlayerStopped}, p)
	}
}

// IsRoundOver is true once a Flip 7 ended the round, or when no player is
// still active
func (r *Round) IsRoundOver() bool {
	if r.roundOver {
		return true
	}
	for _, p := range r.players {
		if p.IsActive() {
			return false
		}
	}
	return true
}

// EndedByFlipSeven reports whether the round ended on a Flip 7
func (r *Round) EndedByFlipSeven() bool {
	return r.roundOver
}

// ResetSecondChances discards every player's second chance card
func (r *Round) ResetSecondChances() {
	for _, p := range r.players {
		p.ResetSecondChance()
	}
}

// drawFor takes the next card from the deck on p's behalf and reports it
func (r *Round) drawFor(p *model.PlayerState, cascade bool, step int) (model.Card, bool) {
	card, ok := r.deck.Draw()
	if !ok {
		r.logger.Debug("deck exhausted", playerAttrs(p)...)
		r.emit(model.Event{Type: model.EventDeckExhausted, Cascade: cascade, Step: step}, p)
		return model.Card{}, false
	}

	r.logger.Debug("card drawn", append(playerAttrs(p),
		slog.String("card", card.String()),
		slog.Bool("cascade", cascade),
		slog.Int("step", step),
	)...)
	r.emit(model.Event{Type: model.EventCardDrawn, Card: &card, Cascade: cascade, Step: step}, p)
	return card, true
}

// resolveDraw applies card to p, then works off any flip three draws it
// triggered. Nested flip threes push further frames on an explicit stack, so
// depth is bounded only by the deck and never by the goroutine stack.
func (r *Round) resolveDraw(p *model.PlayerState, card model.Card) {
	var pending []cascadeFrame
	if r.apply(p, card, false) {
		pending = append(pending, cascadeFrame{})
	}

	for len(pending) > 0 {
		top := &pending[len(pending)-1]
		if top.drawn == FlipThreeDraws {
			pending = pending[:len(pending)-1]
			continue
		}

		// Any interruption ends every open cascade: all frames belong to p
		if r.roundOver || p.IsBusted() || p.IsFrozen() {
			r.logger.Debug("flip three interrupted", append(playerAttrs(p),
				slog.Int("open_cascades", len(pending)),
			)...)
			return
		}

		top.drawn++
		extra, ok := r.drawFor(p, true, top.drawn)
		if !ok {
			return
		}
		if r.apply(p, extra, true) {
			pending = append(pending, cascadeFrame{})
		}
	}
}

// apply resolves a single card for p and reports whether it was a flip three
// whose draws are now owed
func (r *Round) apply(p *model.PlayerState, card model.Card, fromCascade bool) bool {
	// Stopped counts as terminal like busted and frozen: a banked hand never changes
	if r.roundOver || !p.IsActive() {
		return false
	}

	switch card.Type {
	case model.CardTypeNumber:
		r.applyNumber(p, card, fromCascade)
		return false

	case model.CardTypeModifier:
		p.Modifiers = append(p.Modifiers, card)
		r.emit(model.Event{Type: model.EventModifierAdded, Card: &card, Cascade: fromCascade}, p)
		return false

	case model.CardTypeAction:
		return r.applyAction(p, card, fromCascade)
	}

	panic(fmt.Sprintf("round: unhandled card type %q", card.Type))
}

func (r *Round) applyNumber(p *model.PlayerState, card model.Card, fromCascade bool) {
	p.NumberCards = append(p.NumberCards, card)

	if p.HasDuplicateOnAdd(card.Value) {
		if p.HasSecondChance() {
			p.ConsumeSecondChance()
			p.NumberCards = p.NumberCards[:len(p.NumberCards)-1]
			r.logger.Debug("second chance used", append(playerAttrs(p), slog.Int("value", card.Value))...)
			r.emit(model.Event{Type: model.EventSecondChanceUsed, Card: &card, Cascade: fromCascade}, p)
			return
		}

		p.Bust()
		r.logger.Debug("player busted", append(playerAttrs(p), slog.Int("value", card.Value))...)
		r.emit(model.Event{Type: model.EventBusted, Card: &card, Cascade: fromCascade}, p)
		return
	}

	// A Flip 7 reached inside a flip three does not end the round
	if p.HasFlipSeven() && !fromCascade {
		r.roundOver = true
		r.logger.Debug("flip seven, round over", playerAttrs(p)...)
		r.emit(model.Event{Type: model.EventFlipSeven, Card: &card}, p)
	}
}

func (r *Round) applyAction(p *model.PlayerState, card model.Card, fromCascade bool) bool {
	switch card.Action {
	case model.ActionFreeze:
		p.Freeze()
		r.logger.Debug("player frozen", playerAttrs(p)...)
		r.emit(model.Event{Type: model.EventFrozen, Card: &card, Cascade: fromCascade}, p)
		return false

	case model.ActionFlipThree:
		r.logger.Debug("flip three", playerAttrs(p)...)
		r.emit(model.Event{Type: model.EventFlipThree, Card: &card, Cascade: fromCascade}, p)
		return true

	case model.ActionSecondChance:
		if p.GrantSecondChance(card) {
			r.emit(model.Event{Type: model.EventSecondChanceGranted, Card: &card, Cascade: fromCascade}, p)
		} else {
			r.emit(model.Event{Type: model.EventSecondChanceDiscarded, Card: &card, Cascade: fromCascade}, p)
		}
		return false
	}

	panic(fmt.Sprintf("round: unhandled action %q", card.Action))
}

func (r *Round) emit(e model.Event, p *model.PlayerState) {
	if r.sink == nil {
		return
	}
	e.PlayerID = p.ID
	e.PlayerName = p.Name
	r.sink.HandleEvent(e)
}

func playerAttrs(p *model.PlayerState) []any {
	return []any{
		slog.Int("player_id", int(p.ID)),
		slog.String("player", p.Name),
	}
}
