package router

import (
	"context"

	"github.com/generals-server/core/internal/auth"
	"github.com/generals-server/core/internal/protocol"
	"github.com/generals-server/core/internal/roomstate"
	"github.com/generals-server/core/internal/session"
)

// handleFrame routes one decoded inbound frame to its operation. A
// returned *Error becomes a single outbound error frame to the offender;
// a nil session entry means the frame raced a detach and is dropped.
func (r *Router) handleFrame(userID string, msg interface{}) {
	e, ok := r.sessions[userID]
	if !ok || e.Sink == nil {
		return
	}

	var err *Error
	switch q := msg.(type) {
	case protocol.JoinRoomRequest:
		err = r.handleJoinRoom(userID, e, q)
	case protocol.LeaveRoomRequest:
		err = r.handleLeaveRoom(userID, q.RoomID)
	case protocol.ChatRequest:
		err = r.handleChat(userID, e, q)
	case protocol.GetRoomInfoRequest:
		err = r.handleGetRoomInfo(userID, q.RoomID)
	case protocol.ForceStartRequest:
		err = r.handleForceStart(userID, q.RoomID)
	case protocol.DeForceStartRequest:
		err = r.handleDeForceStart(userID, q.RoomID)
	case protocol.ShouldStartRequest:
		err = r.handleShouldStart(q.RoomID)
	case protocol.SetAdminRequest:
		err = r.handleSetAdmin(userID, q)
	case protocol.RemoveAdminRequest:
		err = r.handleRemoveAdmin(userID, q.RoomID)
	case protocol.KickPlayerRequest:
		err = r.handleKickPlayer(userID, q)
	case protocol.ChangeGroupRequest:
		err = r.handleChangeGroup(userID, q)
	case protocol.GameMoveRequest:
		err = r.handleGameMove(userID, q)
	case protocol.GameActionRequest:
		err = r.handleGameAction(userID, q)
	default:
		r.logger.Warn(context.Background(), "router: dropping unknown frame %T from %s", msg, userID)
		return
	}

	if err != nil {
		r.sendTo(userID, protocol.NewError(err.Message))
	}
}

// handleAttach registers a user's sink. A user id inside the grace window
// resumes its identity and memberships; an id with a live sink is
// rejected. Every attached user is a member of the global room.
func (r *Router) handleAttach(userID, name string, sink session.Outbound) error {
	e, exists := r.sessions[userID]
	if exists && e.Sink != nil {
		return conflictErr("user already online")
	}

	if exists {
		// Reconnect within grace: identity and memberships resume.
		delete(r.disconnects, userID)
		e.Sink = sink
		e.Name = name
		e.AttachedAt = r.now()
	} else {
		e = &sessionEntry{
			Name:       name,
			Sink:       sink,
			AttachedAt: r.now(),
			Rooms:      make(map[string]bool),
		}
		r.sessions[userID] = e
	}

	// The first frame on any new connection is the attach acknowledgment.
	r.sendTo(userID, protocol.NewConnected(userID, name))

	global := r.rooms[roomstate.GlobalRoomID]
	if !global.IsMember(userID) {
		global.AddMember(userID, name, roomstate.SpectatorGroup)
	}
	e.Rooms[roomstate.GlobalRoomID] = true
	r.broadcastRoomInfo(global)

	if exists {
		// Resurface lobby/game state of every retained room to the
		// reconnecting client and show them active again to peers.
		for roomID := range e.Rooms {
			if room, ok := r.rooms[roomID]; ok && roomID != roomstate.GlobalRoomID {
				r.broadcastRoomInfo(room)
				if room.Status == roomstate.StatusPlaying {
					r.sendTo(userID, protocol.NewRedirectToGame(roomID))
				}
			}
		}
	}

	r.bus.PublishUserStatus(context.Background(), userID, "online")
	return nil
}

// handleDetach records the disconnect and starts the grace window. Room
// memberships stay; every room the user is in hears a system chat.
func (r *Router) handleDetach(userID string) {
	e, ok := r.sessions[userID]
	if !ok || e.Sink == nil {
		return
	}

	e.Sink.Close()
	e.Sink = nil
	r.disconnects[userID] = r.now()

	for roomID := range e.Rooms {
		if room, exists := r.rooms[roomID]; exists {
			r.broadcastSystemChat(room, e.Name+" disconnected")
		}
	}

	r.bus.PublishUserStatus(context.Background(), userID, "offline")
}

// handleExpireDisconnected strips users whose grace window lapsed from
// every room, frees their name, and re-checks victory in rooms they left
// mid-game.
func (r *Router) handleExpireDisconnected() {
	now := r.now()
	for userID, at := range r.disconnects {
		if now.Sub(at) <= r.graceWindow {
			continue
		}
		delete(r.disconnects, userID)

		e, ok := r.sessions[userID]
		if !ok {
			continue
		}
		delete(r.sessions, userID)

		for roomID := range e.Rooms {
			room, exists := r.rooms[roomID]
			if !exists {
				continue
			}
			name := room.PlayerName[userID]
			team := room.PlayerTeam[userID]
			r.removeFromRoom(room, userID)
			r.broadcast(room, protocol.NewLeaveRoom(roomID, userID, name))
			r.broadcastSystemChat(room, name+" left (connection expired)")
			r.broadcastRoomInfo(room)
			r.reconcileAfterDeparture(room)

			if room.Status == roomstate.StatusPlaying && team != "" {
				r.checkExpiryVictory(room)
			}
		}
	}
}

// handleSweep removes members with neither a session nor a grace record,
// then deletes non-global rooms that have sat empty past their TTL.
func (r *Router) handleSweep() {
	now := r.now()
	for roomID, room := range r.rooms {
		if room.IsGlobal() {
			continue
		}

		for _, uid := range append([]string(nil), room.Members...) {
			if _, ok := r.sessions[uid]; ok {
				continue
			}
			name := room.PlayerName[uid]
			r.removeFromRoom(room, uid)
			r.broadcast(room, protocol.NewLeaveRoom(roomID, uid, name))
			r.broadcastRoomInfo(room)
			r.reconcileAfterDeparture(room)
		}

		if len(room.Members) == 0 && now.Sub(room.LastActivity) > r.emptyRoomTTL {
			delete(r.rooms, roomID)
			if r.sched != nil {
				r.sched.Stop(roomID)
			}
			r.bus.PublishRoomDeleted(context.Background(), roomID)
			r.logger.Info(context.Background(), "router: deleted empty room %s", roomID)
		}
	}
}

func (r *Router) handleJoinRoom(userID string, e *sessionEntry, req protocol.JoinRoomRequest) *Error {
	// Frames are authenticated by the owning session's identity; a
	// mismatched player_name is silently ignored.
	if req.PlayerName != e.Name {
		return nil
	}

	room, exists := r.rooms[req.RoomID]

	if exists && room.IsKicked(userID, r.kickLockout, r.now()) {
		r.sendTo(userID, protocol.NewError("you were kicked from this room"))
		r.sendTo(userID, protocol.NewRedirectToHome("kicked"))
		return nil
	}

	if exists && room.IsMember(userID) {
		// Rejoin after reconnect: prior group is kept.
		r.sendTo(userID, r.roomInfo(room))
		if room.Status == roomstate.StatusPlaying {
			r.sendTo(userID, protocol.NewRedirectToGame(room.ID))
		}
		return nil
	}

	if exists && room.PasswordHash != "" {
		if req.Password == nil {
			return conflictErr("需要密码")
		}
		if !auth.VerifyRoomPassword(room.PasswordHash, *req.Password) {
			return conflictErr("密码错误")
		}
	}

	if exists && !room.IsGlobal() && room.PlayerCount() >= room.MaxPlayers {
		return conflictErr("room is full")
	}

	if !exists {
		if err := roomstate.ValidateRoomID(req.RoomID); err != nil {
			return validationErr(err.Error())
		}
		room = roomstate.NewRoom(req.RoomID, req.RoomID, defaultRoomColor, defaultMaxPlayers, true,
			roomstate.Member{UserID: userID, Name: e.Name})
		r.rooms[req.RoomID] = room
		r.bus.PublishRoomCreated(context.Background(), req.RoomID)
	}

	r.leaveOtherRooms(userID, req.RoomID)

	group := room.AssignGroupForJoin()
	room.AddMember(userID, e.Name, group)
	e.Rooms[room.ID] = true

	if len(room.Members) == 1 && room.Admin == nil {
		room.Admin = &roomstate.Member{UserID: userID, Name: e.Name}
	}

	r.broadcast(room, protocol.NewJoinRoom(room.ID, userID, e.Name))
	r.broadcastRoomInfo(room)

	if room.Status == roomstate.StatusPlaying {
		r.sendTo(userID, protocol.NewRedirectToGame(room.ID))
	}
	return nil
}

func (r *Router) handleLeaveRoom(userID, roomID string) *Error {
	if roomID == roomstate.GlobalRoomID {
		return stateErr("cannot leave the global room")
	}
	room, exists := r.rooms[roomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}

	name := room.PlayerName[userID]
	r.removeFromRoom(room, userID)
	r.sendTo(userID, protocol.NewLeaveRoom(roomID, userID, name))
	r.broadcast(room, protocol.NewLeaveRoom(roomID, userID, name))
	r.broadcastRoomInfo(room)
	r.reconcileAfterDeparture(room)
	return nil
}

func (r *Router) handleChat(userID string, e *sessionEntry, req protocol.ChatRequest) *Error {
	room, exists := r.rooms[req.RoomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}
	r.broadcast(room, protocol.NewChatMessage(req.RoomID, userID, e.Name, req.Message))
	return nil
}

func (r *Router) handleGetRoomInfo(userID, roomID string) *Error {
	room, exists := r.rooms[roomID]
	if !exists {
		return stateErr("room not found")
	}
	r.sendTo(userID, r.roomInfo(room))
	return nil
}

func (r *Router) handleSetAdmin(userID string, req protocol.SetAdminRequest) *Error {
	room, exists := r.rooms[req.RoomID]
	if !exists {
		return stateErr("room not found")
	}
	if room.Host.UserID != userID {
		return permissionErr("only the host may set an admin")
	}
	targetID := r.memberByName(room, req.TargetPlayerName)
	if targetID == "" {
		return validationErr("target player is not in this room")
	}
	if targetID == room.Host.UserID {
		return permissionErr("the host cannot be made admin")
	}
	room.Admin = &roomstate.Member{UserID: targetID, Name: req.TargetPlayerName}
	r.broadcastSystemChat(room, req.TargetPlayerName+" is now the room admin")
	r.broadcastRoomInfo(room)
	return nil
}

func (r *Router) handleRemoveAdmin(userID, roomID string) *Error {
	room, exists := r.rooms[roomID]
	if !exists {
		return stateErr("room not found")
	}
	if room.Host.UserID != userID {
		return permissionErr("only the host may remove the admin")
	}
	if room.Admin == nil {
		return stateErr("this room has no admin")
	}
	if room.Admin.UserID == userID {
		return permissionErr("the host cannot demote themselves")
	}
	name := room.Admin.Name
	room.Admin = nil
	r.broadcastSystemChat(room, name+" is no longer the room admin")
	r.broadcastRoomInfo(room)
	return nil
}

func (r *Router) handleKickPlayer(userID string, req protocol.KickPlayerRequest) *Error {
	room, exists := r.rooms[req.RoomID]
	if !exists {
		return stateErr("room not found")
	}
	isHost := room.Host.UserID == userID
	isAdmin := room.Admin != nil && room.Admin.UserID == userID
	if !isHost && !isAdmin {
		return permissionErr("only the host or admin may kick players")
	}
	targetID := r.memberByName(room, req.TargetPlayerName)
	if targetID == "" {
		return validationErr("target player is not in this room")
	}
	if targetID == room.Host.UserID {
		return permissionErr("the host cannot be kicked")
	}

	room.Kick(targetID, r.now())
	r.removeFromRoom(room, targetID)

	// Fixed delivery order to the kicked session: error, redirect home,
	// leave room.
	r.sendTo(targetID, protocol.NewError("you were kicked from the room"))
	r.sendTo(targetID, protocol.NewRedirectToHome("kicked"))
	r.sendTo(targetID, protocol.NewLeaveRoom(room.ID, targetID, req.TargetPlayerName))

	r.broadcast(room, protocol.NewLeaveRoom(room.ID, targetID, req.TargetPlayerName))
	r.broadcastSystemChat(room, req.TargetPlayerName+" was kicked from the room")
	r.broadcastRoomInfo(room)
	r.reconcileAfterDeparture(room)
	return nil
}

func (r *Router) handleChangeGroup(userID string, req protocol.ChangeGroupRequest) *Error {
	room, exists := r.rooms[req.RoomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}
	if req.TargetGroupID < 0 || req.TargetGroupID >= roomstate.NumGroups {
		return validationErr("group id out of range")
	}

	room.PlayerGroup[userID] = req.TargetGroupID
	r.broadcastRoomInfo(room)

	if room.Status == roomstate.StatusWaiting && len(room.ForceStart) > 0 {
		if room.NonSpectatorCount() < 2 {
			room.ForceStart = make(map[string]bool)
			r.broadcastSystemChat(room, "force start cancelled: not enough players")
			r.broadcastRoomInfo(room)
		} else {
			r.maybeStartGame(room)
		}
	}
	return nil
}

// memberByName resolves a display name to a member's user id.
func (r *Router) memberByName(room *roomstate.Room, name string) string {
	for _, uid := range room.Members {
		if room.PlayerName[uid] == name {
			return uid
		}
	}
	return ""
}
