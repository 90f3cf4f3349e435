package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/generals-server/core/internal/apierr"
	"github.com/generals-server/core/internal/auth"
	"github.com/generals-server/core/internal/roomstate"
	"github.com/generals-server/core/internal/router"
)

// CreateRoomRequest is the create-room body.
type CreateRoomRequest struct {
	RoomID     string `json:"room_id,omitempty"`
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
	RoomColor  string `json:"room_color"`
	HostName   string `json:"host_name"`
	HostID     string `json:"host_id"`
	Password   string `json:"password,omitempty"`
	IsPublic   bool   `json:"is_public"`
}

// CreateRoomResponse is the 200 body for a created room.
type CreateRoomResponse struct {
	RoomID     string `json:"room_id"`
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
	RoomColor  string `json:"room_color"`
	HostName   string `json:"host_name"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// GetRoomsResponse is the paginated room-list body.
type GetRoomsResponse struct {
	Rooms      []router.RoomSummary `json:"rooms"`
	TotalCount int                  `json:"total_count"`
	Start      int                  `json:"start"`
	End        int                  `json:"end"`
	HasMore    bool                 `json:"has_more"`
}

// CreateRoomHandler validates and registers a new room. The router owns
// id assignment; passwords are hashed here so the core never sees
// plaintext.
func (r *Router) CreateRoomHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if req.Method != http.MethodPost {
		apierr.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var cr CreateRoomRequest
	if err := json.NewDecoder(req.Body).Decode(&cr); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if cr.RoomID != "" {
		if err := roomstate.ValidateRoomID(cr.RoomID); err != nil {
			apierr.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := roomstate.ValidateRoomName(cr.Name); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := roomstate.ValidateMaxPlayers(cr.MaxPlayers); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := roomstate.ValidateRoomColor(cr.RoomColor); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := roomstate.ValidateRoomPassword(cr.Password); err != nil {
		apierr.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cr.HostID == "" || cr.HostName == "" {
		apierr.RespondError(w, http.StatusBadRequest, "host_id and host_name are required")
		return
	}

	passwordHash := ""
	if cr.Password != "" {
		var err error
		passwordHash, err = auth.HashRoomPassword(cr.Password)
		if err != nil {
			r.logger.Error(ctx, "Failed to hash room password: %v", err)
			apierr.RespondError(w, http.StatusInternalServerError, "Failed to create room")
			return
		}
	}

	summary, err := r.core.CreateRoom(router.CreateRoomParams{
		RoomID:       cr.RoomID,
		Name:         cr.Name,
		MaxPlayers:   cr.MaxPlayers,
		Color:        cr.RoomColor,
		HostID:       cr.HostID,
		HostName:     cr.HostName,
		PasswordHash: passwordHash,
		Public:       cr.IsPublic,
	})
	if errors.Is(err, router.ErrRoomExists) {
		apierr.RespondError(w, http.StatusConflict, "Room ID already exists")
		return
	}
	if err != nil {
		r.logger.Error(ctx, "Failed to create room: %v", err)
		apierr.RespondError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	apierr.RespondJSON(w, http.StatusOK, CreateRoomResponse{
		RoomID:     summary.RoomID,
		Name:       summary.Name,
		MaxPlayers: summary.MaxPlayers,
		RoomColor:  summary.RoomColor,
		HostName:   summary.HostName,
		Status:     summary.Status,
		Message:    "Room created successfully",
	})
}

// GetRoomsHandler lists public rooms in the [start, end) window. start
// defaults to 0, end to start+10; windows wider than 100 are rejected.
func (r *Router) GetRoomsHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		apierr.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	start, err := queryInt(req, "start", 0)
	if err != nil {
		apierr.RespondError(w, http.StatusBadRequest, "start must be a non-negative integer")
		return
	}
	end, err := queryInt(req, "end", start+10)
	if err != nil {
		apierr.RespondError(w, http.StatusBadRequest, "end must be a non-negative integer")
		return
	}

	if start < 0 || end < 0 || start > end {
		apierr.RespondError(w, http.StatusBadRequest, "start must not exceed end")
		return
	}
	if end-start > 100 {
		apierr.RespondError(w, http.StatusBadRequest, "window must not exceed 100 rooms")
		return
	}

	rooms, total := r.core.ListRooms(start, end)
	if rooms == nil {
		rooms = []router.RoomSummary{}
	}
	apierr.RespondJSON(w, http.StatusOK, GetRoomsResponse{
		Rooms:      rooms,
		TotalCount: total,
		Start:      start,
		End:        end,
		HasMore:    end < total,
	})
}

func queryInt(req *http.Request, key string, fallback int) (int, error) {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
