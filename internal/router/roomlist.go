package router

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/generals-server/core/internal/roomstate"
)

const (
	defaultRoomColor  = "#3498db"
	defaultMaxPlayers = 16
)

// ErrRoomExists is returned from CreateRoom on a room-id conflict; the
// HTTP layer maps it to 409.
var ErrRoomExists = errors.New("room already exists")

// CreateRoomParams is the create-room seam between the HTTP surface and
// the core. Field validation and password hashing happen in the HTTP
// layer; the router only owns id assignment and registration.
type CreateRoomParams struct {
	RoomID       string // empty: generate
	Name         string
	MaxPlayers   int
	Color        string
	HostID       string
	HostName     string
	PasswordHash string // empty: no password
	Public       bool
}

// RoomSummary is one row of the room list and the create-room response.
type RoomSummary struct {
	RoomID          string `json:"room_id"`
	Name            string `json:"name"`
	HostName        string `json:"host_name"`
	Status          string `json:"status"`
	PlayerCount     int    `json:"player_count"`
	MaxPlayers      int    `json:"max_players"`
	RoomColor       string `json:"room_color"`
	RequiredToStart int    `json:"required_to_start"`
	IsActive        bool   `json:"is_active"`
	HasPassword     bool   `json:"has_password"`
}

type createRoomResult struct {
	Summary RoomSummary
	Err     error
}

type listRoomsResult struct {
	Rooms []RoomSummary
	Total int
}

// CreateRoom registers a new room, generating a numeric id when none was
// supplied. Synchronous seam for the HTTP surface.
func (r *Router) CreateRoom(params CreateRoomParams) (RoomSummary, error) {
	reply := make(chan createRoomResult, 1)
	r.submit(createRoomReq{Params: params, Reply: reply})
	select {
	case res := <-reply:
		return res.Summary, res.Err
	case <-r.done:
		return RoomSummary{}, errors.New("server shutting down")
	}
}

// ListRooms returns the [start, end) window of public, non-global rooms
// plus the total count. Range validation happens in the HTTP layer.
func (r *Router) ListRooms(start, end int) ([]RoomSummary, int) {
	reply := make(chan listRoomsResult, 1)
	r.submit(listRoomsReq{Start: start, End: end, Reply: reply})
	select {
	case res := <-reply:
		return res.Rooms, res.Total
	case <-r.done:
		return nil, 0
	}
}

func (r *Router) handleCreateRoom(params CreateRoomParams) createRoomResult {
	id := params.RoomID
	if id == "" {
		id = r.generateRoomID()
	} else if _, exists := r.rooms[id]; exists {
		return createRoomResult{Err: ErrRoomExists}
	}

	room := roomstate.NewRoom(id, params.Name, params.Color, params.MaxPlayers, params.Public,
		roomstate.Member{UserID: params.HostID, Name: params.HostName})
	room.PasswordHash = params.PasswordHash
	r.rooms[id] = room

	r.bus.PublishRoomCreated(context.Background(), id)
	r.logger.Info(context.Background(), "router: room %s created by %s", id, params.HostName)
	return createRoomResult{Summary: r.summarize(room)}
}

// generateRoomID draws a uniform integer in [100000, 9999999] rendered as
// decimal, retrying on the unlikely collision.
func (r *Router) generateRoomID() string {
	for {
		id := strconv.Itoa(100000 + r.rng.Intn(9999999-100000+1))
		if _, exists := r.rooms[id]; !exists {
			return id
		}
	}
}

func (r *Router) handleListRooms(start, end int) listRoomsResult {
	var all []RoomSummary
	for _, room := range r.rooms {
		if room.IsGlobal() || !room.Public {
			continue
		}
		all = append(all, r.summarize(room))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RoomID < all[j].RoomID })

	total := len(all)
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return listRoomsResult{Rooms: all[start:end], Total: total}
}

func (r *Router) summarize(room *roomstate.Room) RoomSummary {
	required, ok := roomstate.ForceStartThreshold(room.NonSpectatorCount())
	if !ok {
		required = 0
	}
	return RoomSummary{
		RoomID:          room.ID,
		Name:            room.Name,
		HostName:        room.Host.Name,
		Status:          room.Status.String(),
		PlayerCount:     room.PlayerCount(),
		MaxPlayers:      room.MaxPlayers,
		RoomColor:       room.Color,
		RequiredToStart: required,
		IsActive:        room.Status == roomstate.StatusPlaying,
		HasPassword:     room.PasswordHash != "",
	}
}
