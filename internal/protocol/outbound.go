package protocol

import "encoding/json"

// ConnectedEvent is the first frame sent on a successful session attach.
type ConnectedEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func NewConnected(userID, username string) ConnectedEvent {
	return ConnectedEvent{Type: "connected", UserID: userID, Username: username}
}

// ChatMessageEvent broadcasts a chat line to a room's current members.
type ChatMessageEvent struct {
	Type       string `json:"type"`
	RoomID     string `json:"room_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

func NewChatMessage(roomID, senderID, senderName, message string) ChatMessageEvent {
	return ChatMessageEvent{Type: "chat_message", RoomID: roomID, SenderID: senderID, SenderName: senderName, Message: message}
}

// JoinRoomEvent / LeaveRoomEvent announce membership changes to room peers.
type JoinRoomEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func NewJoinRoom(roomID, userID, username string) JoinRoomEvent {
	return JoinRoomEvent{Type: "join_room", RoomID: roomID, UserID: userID, Username: username}
}

type LeaveRoomEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func NewLeaveRoom(roomID, userID, username string) LeaveRoomEvent {
	return LeaveRoomEvent{Type: "leave_room", RoomID: roomID, UserID: userID, Username: username}
}

// RoomInfoMember is one roster row within a RoomInfoEvent.
type RoomInfoMember struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	GroupID  int    `json:"group_id"`
	IsHost   bool   `json:"is_host"`
	IsAdmin  bool   `json:"is_admin"`
	ForceVote bool  `json:"force_start"`
}

// RoomInfoEvent is the full snapshot of a room's lobby state.
type RoomInfoEvent struct {
	Type       string           `json:"type"`
	RoomID     string           `json:"room_id"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	MaxPlayers int              `json:"max_players"`
	RoomColor  string           `json:"room_color"`
	HasPassword bool            `json:"has_password"`
	Members    []RoomInfoMember `json:"members"`
}

// OkEvent / MoveOkEvent acknowledge a simple request or a successful move.
type OkEvent struct {
	Type string `json:"type"`
}

func NewOk() OkEvent { return OkEvent{Type: "ok"} }

type MoveOkEvent struct {
	Type   string `json:"type"`
	MoveID string `json:"move_id"`
}

func NewMoveOk(moveID string) MoveOkEvent {
	return MoveOkEvent{Type: "move_ok", MoveID: moveID}
}

// ErrorEvent surfaces a rejected request to the offending session only.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}

type RedirectToHomeEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewRedirectToHome(reason string) RedirectToHomeEvent {
	return RedirectToHomeEvent{Type: "redirect_to_home", Reason: reason}
}

type RedirectToGameEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

func NewRedirectToGame(roomID string) RedirectToGameEvent {
	return RedirectToGameEvent{Type: "redirect_to_game", RoomID: roomID}
}

type StartGameEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

func NewStartGame(roomID string) StartGameEvent {
	return StartGameEvent{Type: "start_game", RoomID: roomID}
}

type EndGameEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

func NewEndGame(roomID string) EndGameEvent {
	return EndGameEvent{Type: "end_game", RoomID: roomID}
}

// ActionEntry is one (name, last_action) pair of a GameTurnUpdateEvent roster.
type ActionEntry struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

type GameTurnUpdateEvent struct {
	Type    string        `json:"type"`
	Turn    int           `json:"turn"`
	Half    string        `json:"turn_half"`
	Actions []ActionEntry `json:"actions"`
}

func NewGameTurnUpdate(turn int, half string, actions []ActionEntry) GameTurnUpdateEvent {
	return GameTurnUpdateEvent{Type: "game_turn_update", Turn: turn, Half: half, Actions: actions}
}

// WirePlayerPower is one [name, group_id, power, status] roster tuple of a
// MapUpdateEvent.
type WirePlayerPower struct {
	Name    string
	GroupID int
	Power   int
	Status  string
}

func (p WirePlayerPower) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.Name, p.GroupID, p.Power, p.Status})
}

func (p *WirePlayerPower) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return &json.UnsupportedValueError{}
	}
	var name, status string
	var groupID, power int
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &groupID); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &power); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[3], &status); err != nil {
		return err
	}
	*p = WirePlayerPower{Name: name, GroupID: groupID, Power: power, Status: status}
	return nil
}

// MapUpdateEvent is the per-viewer snapshot sent every half-tick and
// after every successful move.
type MapUpdateEvent struct {
	Type                string            `json:"type"`
	RoomID              string            `json:"room_id"`
	VisibleTiles        []WireTile        `json:"visible_tiles"`
	SuccessfulMoveSends []string          `json:"successful_move_sends"`
	PlayerPowers        []WirePlayerPower `json:"player_powers"`
}

func NewMapUpdate(roomID string, tiles []WireTile, moveIDs []string, powers []WirePlayerPower) MapUpdateEvent {
	if moveIDs == nil {
		moveIDs = []string{}
	}
	return MapUpdateEvent{Type: "map_update", RoomID: roomID, VisibleTiles: tiles, SuccessfulMoveSends: moveIDs, PlayerPowers: powers}
}

type GameWinEvent struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

func NewGameWin(winner string) GameWinEvent {
	return GameWinEvent{Type: "game_win", Winner: winner}
}

type PlayerEliminatedEvent struct {
	Type              string `json:"type"`
	EliminatedPlayer  string `json:"eliminated_player"`
	EliminatedBy      string `json:"eliminated_by"`
}

func NewPlayerEliminated(eliminated, by string) PlayerEliminatedEvent {
	return PlayerEliminatedEvent{Type: "player_eliminated", EliminatedPlayer: eliminated, EliminatedBy: by}
}
