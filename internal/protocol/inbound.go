// Package protocol is the wire codec: it parses inbound JSON text frames
// (self-describing by a "type" field) into typed requests, and renders
// outbound server events as JSON text frames.
package protocol

import (
	"encoding/json"
	"fmt"
)

// JoinRoomRequest corresponds to inbound type "join_room".
type JoinRoomRequest struct {
	RoomID     string  `json:"room_id"`
	PlayerName string  `json:"player_name"`
	Password   *string `json:"password,omitempty"`
}

// LeaveRoomRequest corresponds to inbound type "leave_room".
type LeaveRoomRequest struct {
	RoomID string `json:"room_id"`
}

// ChatRequest corresponds to inbound types "chat"/"chat_message". Either
// "message" or "content" may carry the text.
type ChatRequest struct {
	RoomID  string `json:"room_id"`
	Message string `json:"-"`
}

// GetRoomInfoRequest corresponds to inbound type "get_room_info".
type GetRoomInfoRequest struct {
	RoomID string `json:"room_id"`
}

// ForceStartRequest corresponds to inbound type "force_start".
type ForceStartRequest struct {
	RoomID string `json:"room_id"`
}

// DeForceStartRequest corresponds to inbound type "de_force_start".
type DeForceStartRequest struct {
	RoomID string `json:"room_id"`
}

// ShouldStartRequest corresponds to inbound type "should_start".
type ShouldStartRequest struct {
	RoomID string `json:"room_id"`
}

// SetAdminRequest corresponds to inbound type "set_admin".
type SetAdminRequest struct {
	RoomID           string `json:"room_id"`
	TargetPlayerName string `json:"target_player_name"`
}

// RemoveAdminRequest corresponds to inbound type "remove_admin".
type RemoveAdminRequest struct {
	RoomID string `json:"room_id"`
}

// KickPlayerRequest corresponds to inbound type "kick_player".
type KickPlayerRequest struct {
	RoomID           string `json:"room_id"`
	TargetPlayerName string `json:"target_player_name"`
}

// ChangeGroupRequest corresponds to inbound type "change_group".
type ChangeGroupRequest struct {
	RoomID        string `json:"room_id"`
	TargetGroupID int    `json:"target_group_id"`
}

// GameMoveRequest corresponds to inbound type "game_move".
type GameMoveRequest struct {
	RoomID     string `json:"room_id"`
	FromX      int    `json:"from_x"`
	FromY      int    `json:"from_y"`
	ToX        int    `json:"to_x"`
	ToY        int    `json:"to_y"`
	MoveID     string `json:"move_id"`
	IsHalfMove bool   `json:"is_half_move,omitempty"`
}

// GameActionRequest corresponds to inbound type "game_action".
type GameActionRequest struct {
	RoomID string `json:"room_id"`
	Action string `json:"action"`
}

// DecodeInbound parses a raw inbound frame. It returns (nil, nil) for a
// recognized-but-ignorable case (unknown, empty or missing type — caller
// should log and drop), and a non-nil error only for a malformed frame (bad
// JSON, or a known type whose fields do not decode).
func DecodeInbound(data []byte) (interface{}, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch envelope.Type {
	case "join_room":
		var r JoinRoomRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "leave_room":
		var r LeaveRoomRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "chat", "chat_message":
		var raw struct {
			RoomID  string `json:"room_id"`
			Message string `json:"message"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		text := raw.Message
		if text == "" {
			text = raw.Content
		}
		return ChatRequest{RoomID: raw.RoomID, Message: text}, nil

	case "get_room_info":
		var r GetRoomInfoRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "force_start":
		var r ForceStartRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "de_force_start":
		var r DeForceStartRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "should_start":
		var r ShouldStartRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "set_admin":
		var r SetAdminRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "remove_admin":
		var r RemoveAdminRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "kick_player":
		var r KickPlayerRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "change_group":
		var r ChangeGroupRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "game_move":
		var r GameMoveRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	case "game_action":
		var r GameActionRequest
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return r, nil

	default:
		return nil, nil
	}
}
