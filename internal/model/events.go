package model

import "fmt"

// EventType identifies the type of event
type EventType string

const (
	// Round engine events
	EventCardDrawn             EventType = "card_drawn"
	EventModifierAdded         EventType = "modifier_added"
	EventBusted                EventType = "busted"
	EventFrozen                EventType = "frozen"
	EventSecondChanceUsed      EventType = "second_chance_used"
	EventSecondChanceGranted   EventType = "second_chance_granted"
	EventSecondChanceDiscarded EventType = "second_chance_discarded"
	EventFlipThree             EventType = "flip_three"
	EventFlipSeven             EventType = "flip_seven"
	EventDeckExhausted         EventType = "deck_exhausted"
	EventPlayerStopped         EventType = "player_stopped"

	// Game events
	EventRoundStarted  EventType = "round_started"
	EventRoundComplete EventType = "round_complete"
	EventGameComplete  EventType = "game_complete"
)

// Event describes one step of play
type Event struct {
	Type       EventType
	PlayerID   PlayerID // Zero for table-wide events
	PlayerName string
	Card       *Card // The card involved, if any
	Cascade    bool  // Drawn as part of a flip three
	Step       int   // Position within a flip three, 1..3
	Round      int   // Round number for game events
}

// EventSink receives events as play unfolds. Sinks are called synchronously
// from the goroutine driving the round.
type EventSink interface {
	HandleEvent(Event)
}

// EventSinkFunc adapts a function to an EventSink
type EventSinkFunc func(Event)

// HandleEvent calls f(e)
func (f EventSinkFunc) HandleEvent(e Event) {
	f(e)
}

// Describe renders the event as a line of table talk
func (e Event) Describe() string {
	card, value := "", 0
	if e.Card != nil {
		card, value = e.Card.String(), e.Card.Value
	}

	switch e.Type {
	case EventCardDrawn:
		if e.Cascade {
			return fmt.Sprintf("%s %d/3 -> %s", e.PlayerName, e.Step, card)
		}
		return fmt.Sprintf("%s pioche %s", e.PlayerName, card)
	case EventModifierAdded:
		return fmt.Sprintf("%s reçoit un modificateur: %s", e.PlayerName, card)
	case EventBusted:
		return fmt.Sprintf("%s fait un doublon (%d): 0 point, éliminé.", e.PlayerName, value)
	case EventFrozen:
		return fmt.Sprintf("%s subit GEL: 0 point, éliminé.", e.PlayerName)
	case EventSecondChanceUsed:
		return fmt.Sprintf("%s utilise 2e chance: doublon évité (%d).", e.PlayerName, value)
	case EventSecondChanceGranted:
		return fmt.Sprintf("%s reçoit 2e chance: protège contre 1 doublon.", e.PlayerName)
	case EventSecondChanceDiscarded:
		return fmt.Sprintf("%s a déjà 2e chance: carte défaussée.", e.PlayerName)
	case EventFlipThree:
		return fmt.Sprintf("%s joue TROIS: pioche 3 cartes.", e.PlayerName)
	case EventFlipSeven:
		return fmt.Sprintf("%s fait FLIP 7. Fin immédiate de la manche.", e.PlayerName)
	case EventDeckExhausted:
		return "Plus de cartes."
	case EventPlayerStopped:
		return fmt.Sprintf("%s s'arrête.", e.PlayerName)
	case EventRoundStarted:
		return fmt.Sprintf("MANCHE %d", e.Round)
	case EventRoundComplete:
		return "FIN DE MANCHE"
	case EventGameComplete:
		return fmt.Sprintf("%s gagne la partie.", e.PlayerName)
	}
	return string(e.Type)
}
