// Package roomstate holds the room model: membership, groups, host and
// admin roles, the force-start threshold table, game-start transitions,
// and name hygiene. It owns no concurrency primitives of its own; the
// router is the sole serialization point, so every exported method here
// is meant to be called only from the router's single goroutine.
package roomstate

import (
	"time"

	"github.com/generals-server/core/internal/gamemap"
)

// GlobalRoomID is the distinguished, permanent, never-deleted room for
// cross-room chat.
const GlobalRoomID = "global"

// SpectatorGroup is group id 8, the unbounded non-team group.
const SpectatorGroup = 8

// NumGroups is the fixed number of groups per room: teams 0-7 plus
// spectators at 8.
const NumGroups = 9

type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusEnded
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	case StatusActive:
		return "active"
	default:
		return "waiting"
	}
}

// Member identifies a host or admin by id and display name.
type Member struct {
	UserID string
	Name   string
}

// GroupDef is the fixed name/color for teams 0-7; group 8 (spectators) has
// no team identity.
var GroupDef = [8]struct{ Name, Color string }{
	{"Red", "#e74c3c"},
	{"Blue", "#3498db"},
	{"Green", "#2ecc71"},
	{"Yellow", "#f1c40f"},
	{"Purple", "#9b59b6"},
	{"Orange", "#e67e22"},
	{"Cyan", "#1abc9c"},
	{"Pink", "#fd79a8"},
}

// TeamID returns the team identifier shared by every player in group g
// ("team_<group_id>" per the glossary). g is not checked: call sites only
// invoke this for g in [0,7], and a spectator group would yield "team_8".
func TeamID(g int) string {
	return "team_" + string(rune('0'+g))
}

// Room is a single game room's full state.
type Room struct {
	ID           string
	Name         string
	PasswordHash string // empty if no password
	Public       bool
	Color        string
	MaxPlayers   int
	Host         Member
	Admin        *Member

	Status Status

	Members     []string // ordered user ids
	ForceStart  map[string]bool
	PlayerGroup map[string]int    // user id -> group id [0,8]
	PlayerTeam  map[string]string // user id -> team id, only while playing & non-spectator
	PlayerName  map[string]string // user id -> display name, for roster rendering

	Map  *gamemap.Map
	Turn int
	Half gamemap.Half

	Kicks map[string]time.Time // user id -> kick timestamp, 5-min lockout

	LastActivity time.Time

	// LastAction holds each member's most recent game_action string; the
	// roster renders "waiting" for members with none, and the router clears
	// the map at each turn boundary.
	LastAction map[string]string
}

// NewRoom constructs a room with defaults. The router makes the first
// joiner of a fresh room its host and, since no admin yet exists, the
// admin too.
func NewRoom(id, name, color string, maxPlayers int, public bool, host Member) *Room {
	r := &Room{
		ID:          id,
		Name:        name,
		Public:      public,
		Color:       color,
		MaxPlayers:  maxPlayers,
		Host:        host,
		Status:      StatusWaiting,
		ForceStart:  make(map[string]bool),
		PlayerGroup: make(map[string]int),
		PlayerTeam:  make(map[string]string),
		PlayerName:  make(map[string]string),
		Kicks:       make(map[string]time.Time),
		LastAction:  make(map[string]string),
		LastActivity: time.Now(),
	}
	return r
}

// NewGlobalRoom constructs the unlimited-capacity, passwordless, game-less
// `global` room.
func NewGlobalRoom() *Room {
	r := NewRoom(GlobalRoomID, "Global Chat", "#888888", 1<<30, true, Member{})
	return r
}

func (r *Room) IsGlobal() bool { return r.ID == GlobalRoomID }

func (r *Room) IsMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Room) PlayerCount() int { return len(r.Members) }

// NonSpectatorCount counts members whose group is a team group (0-7).
func (r *Room) NonSpectatorCount() int {
	n := 0
	for _, id := range r.Members {
		if g, ok := r.PlayerGroup[id]; ok && g != SpectatorGroup {
			n++
		}
	}
	return n
}

// GroupMembers returns, in join order, the user ids currently assigned to
// group g.
func (r *Room) GroupMembers(g int) []string {
	var out []string
	for _, id := range r.Members {
		if r.PlayerGroup[id] == g {
			out = append(out, id)
		}
	}
	return out
}
