package tcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/services/bot"
)

// remoteSeat is one seated member's decision mailbox
type remoteSeat struct {
	member    model.MemberID
	decisions chan model.Decision
	gone      chan struct{}
	goneOnce  sync.Once
	waiting   bool // guarded by RemoteStrategy.mu
}

// RemoteStrategy asks seated members for their decisions over the wire.
// Decide runs on the session goroutine; Submit and Disconnect run on the
// connection goroutines.
type RemoteStrategy struct {
	mu      sync.Mutex
	seats   map[model.PlayerID]*remoteSeat
	byID    map[model.MemberID]*remoteSeat
	onEmpty func()
	hub     *Hub
	logger  *slog.Logger
}

// NewRemoteStrategy seats players in order: the first member plays seat 1.
// onEmpty, if set, is called when the last seated member leaves.
func NewRemoteStrategy(players []model.LobbyMember, hub *Hub, onEmpty func(), logger *slog.Logger) *RemoteStrategy {
	s := &RemoteStrategy{
		seats:   make(map[model.PlayerID]*remoteSeat, len(players)),
		byID:    make(map[model.MemberID]*remoteSeat, len(players)),
		onEmpty: onEmpty,
		hub:     hub,
		logger:  logger,
	}
	for i, m := range players {
		seat := &remoteSeat{
			member:    m.ID,
			decisions: make(chan model.Decision, 1),
			gone:      make(chan struct{}),
		}
		s.seats[model.PlayerID(i+1)] = seat
		s.byID[m.ID] = seat
	}
	return s
}

// Decide sends TURN to the seat's member and waits for DRAW or STOP. A
// member who has left always stops.
func (s *RemoteStrategy) Decide(ctx context.Context, view bot.View) (model.Decision, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	seat := s.seats[view.PlayerID]
	if seat == nil {
		return model.DecisionStop, nil
	}

	select {
	case <-seat.gone:
		return model.DecisionStop, nil
	default:
	}

	s.mu.Lock()
	seat.waiting = true
	s.mu.Unlock()

	s.hub.Broadcast(InfoLine("Au tour de %s", view.Name))
	s.hub.Send(seat.member, HandLine(view))
	s.hub.Send(seat.member, LineTurn)

	select {
	case d := <-seat.decisions:
		return d, nil
	case <-seat.gone:
		s.cancelWait(seat)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.logger.Info("seat left during turn", slog.String("player", view.Name))
		return model.DecisionStop, nil
	case <-ctx.Done():
		s.cancelWait(seat)
		return "", ctx.Err()
	}
}

func (s *RemoteStrategy) cancelWait(seat *remoteSeat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat.waiting = false
	select {
	case <-seat.decisions:
	default:
	}
}

// Submit hands a member's decision to the waiting turn. It reports false
// when the member is not seated or not being asked.
func (s *RemoteStrategy) Submit(member model.MemberID, d model.Decision) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat := s.byID[member]
	if seat == nil || !seat.waiting {
		return false
	}
	seat.waiting = false
	seat.decisions <- d
	return true
}

// Disconnect marks a member as gone and returns how many seated members
// are still connected. onEmpty runs before the last seat is released.
func (s *RemoteStrategy) Disconnect(member model.MemberID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat := s.byID[member]
	if seat == nil {
		return s.connected(nil)
	}

	remaining := s.connected(seat)
	if remaining == 0 && s.onEmpty != nil {
		s.onEmpty()
	}
	seat.goneOnce.Do(func() { close(seat.gone) })
	return remaining
}

// connected counts seats still connected, not counting except
func (s *RemoteStrategy) connected(except *remoteSeat) int {
	count := 0
	for _, seat := range s.byID {
		if seat == except {
			continue
		}
		select {
		case <-seat.gone:
		default:
			count++
		}
	}
	return count
}

// IsSeated reports whether the member plays in this game
func (s *RemoteStrategy) IsSeated(member model.MemberID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[member]
	return ok
}

var _ bot.Strategy = (*RemoteStrategy)(nil)
