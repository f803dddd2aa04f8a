package model

import (
	"fmt"
	"time"
)

// MemberID is the compact connection number shown as J<id>
type MemberID int

// LobbyState represents the current state of a lobby
type LobbyState string

const (
	LobbyStateWaiting LobbyState = "waiting" // No game in progress
	LobbyStateInGame  LobbyState = "in_game" // Game currently active
)

// LobbyMemberRole distinguishes players from spectators
type LobbyMemberRole string

const (
	RolePlayer    LobbyMemberRole = "player"
	RoleSpectator LobbyMemberRole = "spectator"
)

// LobbyMember is one connected participant
type LobbyMember struct {
	ID       MemberID
	Name     string // Empty until NAME is sent
	Ready    bool
	Role     LobbyMemberRole
	JoinedAt time.Time
}

// Label returns the member's name, or J<id> before one is chosen
func (m LobbyMember) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Tag()
}

// Tag returns the J<id> form of the member ID
func (m LobbyMember) Tag() string {
	return fmt.Sprintf("J%d", m.ID)
}

// Lobby is the single waiting room in front of the table
type Lobby struct {
	State       LobbyState
	Members     []LobbyMember // Join order
	CurrentGame *GameID       // nil when State is waiting
	GameHistory []GameSummary
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetMember returns the member with the given ID, or nil if not found
func (l *Lobby) GetMember(id MemberID) *LobbyMember {
	for i := range l.Members {
		if l.Members[i].ID == id {
			return &l.Members[i]
		}
	}
	return nil
}

// GetPlayers returns all members with the player role
func (l *Lobby) GetPlayers() []LobbyMember {
	var players []LobbyMember
	for _, m := range l.Members {
		if m.Role == RolePlayer {
			players = append(players, m)
		}
	}
	return players
}

// ReadyCount returns how many members are ready
func (l *Lobby) ReadyCount() int {
	count := 0
	for _, m := range l.Members {
		if m.Ready {
			count++
		}
	}
	return count
}

// AllReady is true when every member is ready
func (l *Lobby) AllReady() bool {
	return l.ReadyCount() == len(l.Members)
}
