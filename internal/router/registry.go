package router

import (
	"context"

	"github.com/generals-server/core/internal/protocol"
	"github.com/generals-server/core/internal/roomstate"
)

// systemSender identifies server-originated chat lines (disconnects,
// admin promotions, force-start announcements).
const systemSender = "system"

// sendTo enqueues one event on a user's sink, if they are connected. Drops
// the event on a full or absent sink (a full sink is logged as a warning);
// the next map_update resynchronizes.
func (r *Router) sendTo(userID string, event interface{}) {
	e, ok := r.sessions[userID]
	if !ok || e.Sink == nil {
		return
	}
	if !e.Sink.Enqueue(event) {
		r.logger.Warn(context.Background(), "router: dropped event for slow session %s", userID)
	}
}

// broadcast enqueues one event on every current member's sink.
func (r *Router) broadcast(room *roomstate.Room, event interface{}) {
	for _, uid := range room.Members {
		r.sendTo(uid, event)
	}
}

// broadcastSystemChat announces a server-originated message to a room.
func (r *Router) broadcastSystemChat(room *roomstate.Room, text string) {
	r.broadcast(room, protocol.NewChatMessage(room.ID, systemSender, systemSender, text))
}

// roomInfo snapshots a room's lobby state for the room_info event.
func (r *Router) roomInfo(room *roomstate.Room) protocol.RoomInfoEvent {
	members := make([]protocol.RoomInfoMember, 0, len(room.Members))
	for _, uid := range room.Members {
		members = append(members, protocol.RoomInfoMember{
			UserID:    uid,
			Name:      room.PlayerName[uid],
			GroupID:   room.PlayerGroup[uid],
			IsHost:    room.Host.UserID == uid,
			IsAdmin:   room.Admin != nil && room.Admin.UserID == uid,
			ForceVote: room.ForceStart[uid],
		})
	}
	return protocol.RoomInfoEvent{
		Type:        "room_info",
		RoomID:      room.ID,
		Name:        room.Name,
		Status:      room.Status.String(),
		MaxPlayers:  room.MaxPlayers,
		RoomColor:   room.Color,
		HasPassword: room.PasswordHash != "",
		Members:     members,
	}
}

// broadcastRoomInfo pushes the current lobby snapshot to every member.
func (r *Router) broadcastRoomInfo(room *roomstate.Room) {
	r.broadcast(room, r.roomInfo(room))
}

// removeFromRoom strips a user from one room and applies the admin
// promotion rule: a departed admin is cleared, and when both host and
// admin are absent but members remain, the first remaining member is
// promoted and announced. Callers broadcast leave/room_info events and
// handle force-start reconciliation themselves.
func (r *Router) removeFromRoom(room *roomstate.Room, userID string) {
	wasAdmin := room.Admin != nil && room.Admin.UserID == userID
	room.RemoveMember(userID)
	if wasAdmin {
		room.Admin = nil
	}

	if !room.IsGlobal() && len(room.Members) > 0 && !room.IsMember(room.Host.UserID) && room.Admin == nil {
		first := room.Members[0]
		room.Admin = &roomstate.Member{UserID: first, Name: room.PlayerName[first]}
		r.broadcastSystemChat(room, room.PlayerName[first]+" is now the room admin")
	}

	if e, ok := r.sessions[userID]; ok {
		delete(e.Rooms, room.ID)
	}
}

// leaveOtherRooms removes the user from any non-global room other than
// keep, with the usual departure notifications — a user plays in at most
// one game room at a time.
func (r *Router) leaveOtherRooms(userID, keep string) {
	e, ok := r.sessions[userID]
	if !ok {
		return
	}
	for roomID := range e.Rooms {
		if roomID == keep || roomID == roomstate.GlobalRoomID {
			continue
		}
		room, exists := r.rooms[roomID]
		if !exists {
			delete(e.Rooms, roomID)
			continue
		}
		name := room.PlayerName[userID]
		r.removeFromRoom(room, userID)
		r.broadcast(room, protocol.NewLeaveRoom(roomID, userID, name))
		r.broadcastRoomInfo(room)
		r.reconcileAfterDeparture(room)
	}
}

// reconcileAfterDeparture re-evaluates a waiting room's force-start state
// after its membership shrank: a now-undefined threshold clears the votes
// with an announcement, and a now-met threshold starts the game.
func (r *Router) reconcileAfterDeparture(room *roomstate.Room) {
	if room.Status != roomstate.StatusWaiting {
		return
	}
	hadVotes := len(room.ForceStart) > 0
	room.ReconcileForceStart()
	if hadVotes && len(room.ForceStart) == 0 {
		r.broadcastSystemChat(room, "force start cancelled: not enough players")
		r.broadcastRoomInfo(room)
		return
	}
	r.maybeStartGame(room)
}
