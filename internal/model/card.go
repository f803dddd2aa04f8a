package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CardType is the variant tag of a Card
type CardType string

const (
	CardTypeNumber   CardType = "number"
	CardTypeModifier CardType = "modifier"
	CardTypeAction   CardType = "action"
)

// ModifierKind identifies a score modifier card
type ModifierKind string

const (
	ModifierPlus2  ModifierKind = "plus2"
	ModifierPlus4  ModifierKind = "plus4"
	ModifierPlus6  ModifierKind = "plus6"
	ModifierPlus8  ModifierKind = "plus8"
	ModifierPlus10 ModifierKind = "plus10"
	ModifierTimes2 ModifierKind = "x2"
)

// ActionKind identifies an action card
type ActionKind string

const (
	ActionFreeze       ActionKind = "freeze"
	ActionFlipThree    ActionKind = "flipThree"
	ActionSecondChance ActionKind = "secondChance"
)

// Number card values run from MinNumberValue to MaxNumberValue inclusive
const (
	MinNumberValue = 0
	MaxNumberValue = 12
)

// Card is an immutable tagged value. Exactly one of the payload fields is
// meaningful, selected by Type. Build cards with NumberCard, ModifierCard and
// ActionCard rather than by hand.
type Card struct {
	Type     CardType
	Value    int
	Modifier ModifierKind
	Action   ActionKind
}

// NumberCard returns a Number card with the given value
func NumberCard(value int) Card {
	return Card{Type: CardTypeNumber, Value: value}
}

// ModifierCard returns a Modifier card of the given kind
func ModifierCard(kind ModifierKind) Card {
	return Card{Type: CardTypeModifier, Modifier: kind}
}

// ActionCard returns an Action card of the given kind
func ActionCard(kind ActionKind) Card {
	return Card{Type: CardTypeAction, Action: kind}
}

// IsNumber reports whether the card is a Number card
func (c Card) IsNumber() bool { return c.Type == CardTypeNumber }

// IsModifier reports whether the card is a Modifier card
func (c Card) IsModifier() bool { return c.Type == CardTypeModifier }

// IsAction reports whether the card is an Action card
func (c Card) IsAction() bool { return c.Type == CardTypeAction }

// Is reports whether the card is the given action
func (c Card) Is(kind ActionKind) bool {
	return c.Type == CardTypeAction && c.Action == kind
}

// String renders the card the way it is shown to players
func (c Card) String() string {
	switch c.Type {
	case CardTypeNumber:
		return strconv.Itoa(c.Value)
	case CardTypeModifier:
		return c.Modifier.String()
	case CardTypeAction:
		return c.Action.String()
	}
	return "?"
}

// String renders the modifier as it appears on the card face
func (k ModifierKind) String() string {
	switch k {
	case ModifierPlus2:
		return "+2"
	case ModifierPlus4:
		return "+4"
	case ModifierPlus6:
		return "+6"
	case ModifierPlus8:
		return "+8"
	case ModifierPlus10:
		return "+10"
	case ModifierTimes2:
		return "x2"
	}
	return "?"
}

// Bonus returns the additive bonus of the modifier, 0 for multipliers
func (k ModifierKind) Bonus() int {
	switch k {
	case ModifierPlus2:
		return 2
	case ModifierPlus4:
		return 4
	case ModifierPlus6:
		return 6
	case ModifierPlus8:
		return 8
	case ModifierPlus10:
		return 10
	case ModifierTimes2:
		return 0
	}
	return 0
}

// Apply applies the modifier to a running score
func (k ModifierKind) Apply(sum int) int {
	if k == ModifierTimes2 {
		return sum * 2
	}
	return sum + k.Bonus()
}

// Valid reports whether k is a known modifier kind
func (k ModifierKind) Valid() bool {
	switch k {
	case ModifierPlus2, ModifierPlus4, ModifierPlus6, ModifierPlus8, ModifierPlus10, ModifierTimes2:
		return true
	}
	return false
}

// String renders the action as it appears on the card face
func (k ActionKind) String() string {
	switch k {
	case ActionFreeze:
		return "FREEZE"
	case ActionFlipThree:
		return "FLIP3"
	case ActionSecondChance:
		return "2ND-CHANCE"
	}
	return "?"
}

// Valid reports whether k is a known action kind
func (k ActionKind) Valid() bool {
	switch k {
	case ActionFreeze, ActionFlipThree, ActionSecondChance:
		return true
	}
	return false
}

// cardJSON is the persisted shape of a card: {"type":"number","value":3} or
// {"type":"modifier","kind":"x2"}
type cardJSON struct {
	Type  CardType `json:"type"`
	Value *int     `json:"value,omitempty"`
	Kind  string   `json:"kind,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{Type: c.Type}
	switch c.Type {
	case CardTypeNumber:
		v := c.Value
		out.Value = &v
	case CardTypeModifier:
		out.Kind = string(c.Modifier)
	case CardTypeAction:
		out.Kind = string(c.Action)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCard, c.Type)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Card) UnmarshalJSON(data []byte) error {
	var in cardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Type {
	case CardTypeNumber:
		if in.Value == nil || *in.Value < MinNumberValue || *in.Value > MaxNumberValue {
			return fmt.Errorf("%w: number card without a valid value", ErrInvalidCard)
		}
		*c = NumberCard(*in.Value)
	case CardTypeModifier:
		kind := ModifierKind(in.Kind)
		if !kind.Valid() {
			return fmt.Errorf("%w: modifier %q", ErrInvalidCard, in.Kind)
		}
		*c = ModifierCard(kind)
	case CardTypeAction:
		kind := ActionKind(in.Kind)
		if !kind.Valid() {
			return fmt.Errorf("%w: action %q", ErrInvalidCard, in.Kind)
		}
		*c = ActionCard(kind)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCard, in.Type)
	}
	return nil
}
