package round

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/deck"
	"github.com/mcoot/flipseven-go/internal/testutil"
)

type RoundSuite struct {
	suite.Suite
	events []model.Event
}

func TestRoundSuite(t *testing.T) {
	suite.Run(t, new(RoundSuite))
}

func (s *RoundSuite) SetupTest() {
	s.events = nil
}

// newRound builds a round whose deck yields cards in the given order
func (s *RoundSuite) newRound(numPlayers int, cards ...model.Card) *Round {
	return New(numPlayers, deck.New(cards), Config{
		Sink:   model.EventSinkFunc(func(e model.Event) { s.events = append(s.events, e) }),
		Logger: testutil.NopLogger(),
	})
}

func (s *RoundSuite) drawN(r *Round, p *model.PlayerState, n int) {
	for range n {
		_, ok := r.DrawForPlayer(p)
		s.Require().True(ok)
	}
}

func (s *RoundSuite) eventTypes() []model.EventType {
	types := make([]model.EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}

func num(v int) model.Card { return model.NumberCard(v) }
func mod(k model.ModifierKind) model.Card { return model.ModifierCard(k) }
func action(k model.ActionKind) model.Card { return model.ActionCard(k) }
func flipThree() model.Card { return action(model.ActionFlipThree) }
func freeze() model.Card { return action(model.ActionFreeze) }
func secondChance() model.Card { return action(model.ActionSecondChance) }

func values(cards []model.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Value
	}
	return out
}

// Construction tests

func (s *RoundSuite) TestNewAppliesNamesAndTotals() {
	r := New(3, deck.New(nil), Config{Names: []string{"Ann", ""}, Totals: []int{10, 20}})

	players := r.Players()
	s.Require().Len(players, 3)
	s.Equal("Ann", players[0].Name)
	s.Equal("Player 2", players[1].Name)
	s.Equal("Player 3", players[2].Name)
	s.Equal(10, players[0].TotalScore)
	s.Equal(20, players[1].TotalScore)
	s.Equal(0, players[2].TotalScore)
	for _, p := range players {
		s.True(p.IsActive())
		s.Empty(p.NumberCards)
	}
}

func (s *RoundSuite) TestPlayerLookup() {
	r := s.newRound(2)
	s.Equal(model.PlayerID(2), r.Player(2).ID)
	s.Nil(r.Player(3))
}

// Number card tests

func (s *RoundSuite) TestDuplicateNumberBusts() {
	r := s.newRound(2, num(5), num(5))
	p := r.Player(1)

	s.drawN(r, p, 2)

	s.True(p.IsBusted())
	s.Empty(p.NumberCards)
	s.Equal(0, p.ComputeRoundScore())
	s.Contains(s.eventTypes(), model.EventBusted)
}

func (s *RoundSuite) TestSecondChanceAbsorbsDuplicate() {
	r := s.newRound(2, secondChance(), num(5), num(5))
	p := r.Player(1)

	s.drawN(r, p, 3)

	s.True(p.IsActive())
	s.Equal([]int{5}, values(p.NumberCards))
	s.False(p.HasSecondChance())
	s.Empty(p.ActionsInFront)
	s.Contains(s.eventTypes(), model.EventSecondChanceUsed)
}

func (s *RoundSuite) TestSecondSecondChanceIsDiscarded() {
	r := s.newRound(2, secondChance(), secondChance())
	p := r.Player(1)

	s.drawN(r, p, 2)

	s.Len(p.ActionsInFront, 1)
	s.True(p.HasSecondChance())
	s.Contains(s.eventTypes(), model.EventSecondChanceDiscarded)
}

func (s *RoundSuite) TestModifiersApplyInDrawOrder() {
	r := s.newRound(2, num(3), num(7), mod(model.ModifierTimes2), mod(model.ModifierPlus4))
	p := r.Player(1)

	s.drawN(r, p, 4)

	s.Equal(24, p.ComputeRoundScore())
}

// Freeze tests

func (s *RoundSuite) TestFreezeClearsNumbers() {
	r := s.newRound(2, num(3), freeze())
	p := r.Player(1)

	s.drawN(r, p, 2)

	s.True(p.IsFrozen())
	s.Empty(p.NumberCards)
	s.Equal(0, p.ComputeRoundScore())
}

func (s *RoundSuite) TestDrawForInactivePlayerConsumesCardOnly() {
	r := s.newRound(2, freeze(), num(7), num(8))
	frozen := r.Player(1)
	r.DrawForPlayer(frozen)

	stopped := r.Player(2)
	r.Stop(stopped)

	card, ok := r.DrawForPlayer(frozen)
	s.True(ok)
	s.Equal(num(7), card)
	_, ok = r.DrawForPlayer(stopped)
	s.True(ok)

	s.True(frozen.IsFrozen())
	s.Empty(frozen.NumberCards)
	s.True(stopped.IsStopped())
	s.Empty(stopped.NumberCards)
	s.Equal(0, r.DeckRemaining())
}

func (s *RoundSuite) TestStoppedHandIgnoresFreeze() {
	r := s.newRound(1, num(3), freeze())
	p := r.Player(1)
	r.DrawForPlayer(p)
	r.Stop(p)

	_, ok := r.DrawForPlayer(p)

	s.True(ok)
	s.True(p.IsStopped())
	s.False(p.IsFrozen())
	s.Equal([]model.Card{num(3)}, p.NumberCards)
	s.Equal(3, p.ComputeRoundScore())
}

// Flip three tests

func (s *RoundSuite) TestFlipThreeDrawsThreeCards() {
	r := s.newRound(2, flipThree(), num(1), num(2), num(3), num(4))
	p := r.Player(1)

	s.drawN(r, p, 1)

	s.Equal([]int{1, 2, 3}, values(p.NumberCards))
	s.Equal(1, r.DeckRemaining())
}

func (s *RoundSuite) TestFlipThreeEventsCarryStep() {
	r := s.newRound(2, flipThree(), num(1), num(2), num(3))
	s.drawN(r, r.Player(1), 1)

	s.Equal([]model.EventType{
		model.EventCardDrawn,
		model.EventFlipThree,
		model.EventCardDrawn,
		model.EventCardDrawn,
		model.EventCardDrawn,
	}, s.eventTypes())

	s.False(s.events[0].Cascade)
	for i, e := range s.events[2:] {
		s.True(e.Cascade)
		s.Equal(i+1, e.Step)
		s.Equal(model.PlayerID(1), e.PlayerID)
	}
}

func (s *RoundSuite) TestNestedFlipThree() {
	// Outer: 1, FLIP3, 5. Inner: 2, 3, 4.
	r := s.newRound(2,
		flipThree(), num(1), flipThree(), num(2), num(3), num(4), num(5), num(6))
	p := r.Player(1)

	s.drawN(r, p, 1)

	s.Equal([]int{1, 2, 3, 4, 5}, values(p.NumberCards))
	s.Equal(1, r.DeckRemaining())
}

func (s *RoundSuite) TestFlipThreeStopsOnBust() {
	r := s.newRound(2, flipThree(), num(4), num(4), num(9))
	p := r.Player(1)

	s.drawN(r, p, 1)

	s.True(p.IsBusted())
	s.Equal(1, r.DeckRemaining())
}

func (s *RoundSuite) TestNestedFlipThreeStopsOnBust() {
	// Inner bust must also cancel the outer sequence's remaining draw
	r := s.newRound(2,
		flipThree(), flipThree(), num(4), num(4), num(9), num(10))
	p := r.Player(1)

	s.drawN(r, p, 1)

	s.True(p.IsBusted())
	s.Equal(2, r.DeckRemaining())
}

func (s *RoundSuite) TestFlipThreeStopsOnFreeze() {
	r := s.newRound(2, flipThree(), freeze(), num(1), num(2))
	p := r.Player(1)

	s.drawN(r, p, 1)

	s.True(p.IsFrozen())
	s.Equal(2, r.DeckRemaining())
}

func (s *RoundSuite) TestFlipThreeStopsOnDeckExhaustion() {
	r := s.newRound(2, flipThree(), num(1))
	p := r.Player(1)

	s.drawN(r, p, 1)

	s.True(p.IsActive())
	s.Equal([]int{1}, values(p.NumberCards))
	s.Equal(0, r.DeckRemaining())
	s.Contains(s.eventTypes(), model.EventDeckExhausted)
}

func (s *RoundSuite) TestSecondChanceUsedInsideFlipThree() {
	r := s.newRound(2, secondChance(), num(5), flipThree(), num(5), num(6), num(7))
	p := r.Player(1)

	s.drawN(r, p, 3)

	s.True(p.IsActive())
	s.Equal([]int{5, 6, 7}, values(p.NumberCards))
	s.False(p.HasSecondChance())
}

func (s *RoundSuite) TestLongFlipThreeChainTerminates() {
	cards := make([]model.Card, 5000)
	for i := range cards {
		cards[i] = flipThree()
	}
	r := s.newRound(2, cards...)

	s.drawN(r, r.Player(1), 1)

	s.Equal(0, r.DeckRemaining())
	s.True(r.Player(1).IsActive())
}

// Flip 7 tests

func (s *RoundSuite) TestFlipSevenOnNormalDrawEndsRound() {
	r := s.newRound(2, num(0), num(1), num(2), num(3), num(4), num(5), num(6), num(8))
	p := r.Player(1)

	s.drawN(r, p, 7)

	s.True(r.EndedByFlipSeven())
	s.True(r.IsRoundOver())
	s.True(r.Player(2).IsActive())
	s.Equal(21+model.FlipSevenBonus, p.ComputeRoundScore())
	s.Contains(s.eventTypes(), model.EventFlipSeven)

	// Requests after the round ended change nothing
	s.drawN(r, r.Player(2), 1)
	s.Empty(r.Player(2).NumberCards)
	s.Equal(0, r.DeckRemaining())
}

func (s *RoundSuite) TestFlipSevenInsideFlipThreeDoesNotEndRound() {
	r := s.newRound(2,
		num(0), num(1), num(2), num(3), flipThree(), num(4), num(5), num(6), num(7))
	p := r.Player(1)

	s.drawN(r, p, 5)

	s.True(p.HasFlipSeven())
	s.False(r.EndedByFlipSeven())
	s.False(r.IsRoundOver())
	s.NotContains(s.eventTypes(), model.EventFlipSeven)
	s.Equal(21+model.FlipSevenBonus, p.ComputeRoundScore())

	// The next ordinary draw with seven distinct values does end it
	s.drawN(r, p, 1)
	s.True(r.EndedByFlipSeven())
	s.True(r.IsRoundOver())
}

// Round end tests

func (s *RoundSuite) TestRoundOverWhenNoPlayerActive() {
	r := s.newRound(2, num(5), num(5))
	r.Stop(r.Player(1))
	s.False(r.IsRoundOver())

	r.Stop(r.Player(2))
	s.True(r.IsRoundOver())
	s.False(r.EndedByFlipSeven())
}

func (s *RoundSuite) TestStopIsNoOpForTerminalPlayer() {
	r := s.newRound(2, num(5), num(5))
	p := r.Player(1)
	s.drawN(r, p, 2)
	s.events = nil

	r.Stop(p)

	s.True(p.IsBusted())
	s.Empty(s.events)
}

func (s *RoundSuite) TestStopKeepsHand() {
	r := s.newRound(2, num(5), mod(model.ModifierPlus2))
	p := r.Player(1)
	s.drawN(r, p, 2)

	r.Stop(p)

	s.True(p.IsStopped())
	s.Equal(7, p.ComputeRoundScore())
	s.Equal(model.EventPlayerStopped, s.events[len(s.events)-1].Type)
}

func (s *RoundSuite) TestDrawOnEmptyDeck() {
	r := s.newRound(2)

	card, ok := r.DrawForPlayer(r.Player(1))

	s.False(ok)
	s.Equal(model.Card{}, card)
	s.Equal([]model.EventType{model.EventDeckExhausted}, s.eventTypes())
}

// Initial deal tests

func (s *RoundSuite) TestDealInitialGivesEachPlayerOneCard() {
	r := s.newRound(3, num(1), num(2), num(3), num(4))

	r.DealInitial()

	s.Equal([]int{1}, values(r.Player(1).NumberCards))
	s.Equal([]int{2}, values(r.Player(2).NumberCards))
	s.Equal([]int{3}, values(r.Player(3).NumberCards))
	s.Equal(1, r.DeckRemaining())
}

func (s *RoundSuite) TestDealInitialResolvesFlipThree() {
	r := s.newRound(3, flipThree(), num(1), num(2), num(3), num(9), num(10))

	r.DealInitial()

	s.Equal([]int{1, 2, 3}, values(r.Player(1).NumberCards))
	s.Equal([]int{9}, values(r.Player(2).NumberCards))
	s.Equal([]int{10}, values(r.Player(3).NumberCards))
}

func (s *RoundSuite) TestDealInitialStopsWhenDeckRunsOut() {
	r := s.newRound(3, num(1))

	r.DealInitial()

	s.Equal([]int{1}, values(r.Player(1).NumberCards))
	s.Empty(r.Player(2).NumberCards)
	s.Empty(r.Player(3).NumberCards)
}

// Cleanup tests

func (s *RoundSuite) TestResetSecondChances() {
	r := s.newRound(2, secondChance(), secondChance())
	r.DrawForPlayer(r.Player(1))
	r.DrawForPlayer(r.Player(2))

	r.ResetSecondChances()

	for _, p := range r.Players() {
		s.False(p.HasSecondChance())
		s.Empty(p.ActionsInFront)
	}
}
