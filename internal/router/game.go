package router

import (
	"context"
	"errors"

	"github.com/generals-server/core/internal/gamemap"
	"github.com/generals-server/core/internal/mapgen"
	"github.com/generals-server/core/internal/protocol"
	"github.com/generals-server/core/internal/roomstate"
)

func (r *Router) handleForceStart(userID, roomID string) *Error {
	room, exists := r.rooms[roomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}
	if room.Status != roomstate.StatusWaiting {
		return stateErr("the game has already started")
	}
	if room.PlayerGroup[userID] == roomstate.SpectatorGroup {
		return stateErr("spectators cannot force start")
	}
	if room.ForceStart[userID] {
		return stateErr("already voted to force start")
	}

	room.ForceStart[userID] = true
	r.broadcastRoomInfo(room)
	r.maybeStartGame(room)
	return nil
}

func (r *Router) handleDeForceStart(userID, roomID string) *Error {
	room, exists := r.rooms[roomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}
	if room.Status != roomstate.StatusWaiting {
		return stateErr("the game has already started")
	}

	delete(room.ForceStart, userID)
	r.broadcastRoomInfo(room)
	return nil
}

func (r *Router) handleShouldStart(roomID string) *Error {
	room, exists := r.rooms[roomID]
	if !exists {
		return stateErr("room not found")
	}
	if room.Status == roomstate.StatusWaiting {
		r.maybeStartGame(room)
	}
	return nil
}

// maybeStartGame begins the game when the force-start threshold is met
// among at least two active players.
func (r *Router) maybeStartGame(room *roomstate.Room) {
	if room.Status != roomstate.StatusWaiting || !room.ForceStartMet() {
		return
	}
	r.startGame(room)
}

func (r *Router) startGame(room *roomstate.Room) {
	playerCount := room.NonSpectatorCount()
	room.BeginGame()
	teams := room.ActiveTeamIDs()
	room.Map = mapgen.Generate(playerCount, teams, r.seed())

	r.broadcast(room, protocol.NewStartGame(room.ID))
	r.broadcastMapUpdate(room, nil)
	if r.sched != nil {
		r.sched.Arm(room.ID)
	}

	r.bus.PublishGameStarted(context.Background(), room.ID, playerCount)
	r.logger.Info(context.Background(), "router: game started in room %s with %d players", room.ID, playerCount)
}

func (r *Router) handleGameMove(userID string, req protocol.GameMoveRequest) *Error {
	room, exists := r.rooms[req.RoomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}
	if room.Status != roomstate.StatusPlaying || room.Map == nil {
		return stateErr("no game in progress")
	}
	team, onTeam := room.PlayerTeam[userID]
	if !onTeam {
		return stateErr("spectators cannot move")
	}

	from := gamemap.Point{X: req.FromX, Y: req.FromY}
	to := gamemap.Point{X: req.ToX, Y: req.ToY}
	result, err := gamemap.ApplyMove(room.Map, from, to, team, req.IsHalfMove)
	if err != nil {
		return moveError(err)
	}

	room.LastAction[userID] = "moved"
	r.sendTo(userID, protocol.NewMoveOk(req.MoveID))

	if result.EliminatedTeam != "" {
		r.broadcast(room, protocol.NewPlayerEliminated(result.EliminatedTeam, team))
	}

	r.broadcastMapUpdate(room, []string{req.MoveID})

	if result.GameWinner != "" {
		r.endGame(room, result.GameWinner)
	}
	return nil
}

// moveError maps the map model's sentinel errors onto the router taxonomy.
func moveError(err error) *Error {
	switch {
	case errors.Is(err, gamemap.ErrNotOwner):
		return permissionErr("you do not own the source tile")
	case errors.Is(err, gamemap.ErrSourceTooSmall):
		return validationErr("source tile needs more than one unit")
	case errors.Is(err, gamemap.ErrNotAdjacent):
		return validationErr("target tile is not adjacent")
	case errors.Is(err, gamemap.ErrImpassableTarget):
		return validationErr("cannot move into impassable terrain")
	case errors.Is(err, gamemap.ErrOutOfBounds):
		return validationErr("coordinates out of bounds")
	default:
		return validationErr("invalid move")
	}
}

func (r *Router) handleGameAction(userID string, req protocol.GameActionRequest) *Error {
	room, exists := r.rooms[req.RoomID]
	if !exists || !room.IsMember(userID) {
		return stateErr("not a member of this room")
	}
	if room.Status != roomstate.StatusPlaying {
		return stateErr("no game in progress")
	}
	room.LastAction[userID] = req.Action
	r.sendTo(userID, protocol.NewOk())
	return nil
}

// handleAdvanceTurn is one half-tick of the turn engine: growth, win
// check, per-viewer snapshots, then the half/turn advance and re-arm.
func (r *Router) handleAdvanceTurn(roomID string) {
	room, exists := r.rooms[roomID]
	if !exists || room.Status != roomstate.StatusPlaying || room.Map == nil {
		// Stale timer after a win, deletion, or corruption; drop.
		r.logger.Debug(context.Background(), "router: dropping stale tick for room %s", roomID)
		return
	}

	if room.Half == gamemap.FirstHalf {
		gamemap.GrowGenerals(room.Map)
	}

	ticks := 2*room.Turn + halfOffset(room.Half)
	gamemap.GrowCities(room.Map, ticks)

	if room.Turn%25 == 0 && room.Half == gamemap.FirstHalf {
		gamemap.GrowTerritoriesAndGenerals(room.Map)
	}

	if active := room.Map.ActiveTeams(); len(active) <= 1 {
		winner := ""
		for t := range active {
			winner = t
		}
		r.endGame(room, winner)
		return
	}

	r.broadcastMapUpdate(room, nil)
	r.broadcast(room, protocol.NewGameTurnUpdate(room.Turn, halfString(room.Half), r.turnActions(room)))

	if room.Half == gamemap.FirstHalf {
		room.Half = gamemap.SecondHalf
	} else {
		room.Half = gamemap.FirstHalf
		room.Turn++
		room.LastAction = make(map[string]string)
	}

	if r.sched != nil {
		r.sched.Arm(room.ID)
	}
}

// checkExpiryVictory ends a playing game when, after a membership expiry,
// at most one team still has both tiles on the map and a present player.
func (r *Router) checkExpiryVictory(room *roomstate.Room) {
	if room.Status != roomstate.StatusPlaying || room.Map == nil {
		return
	}
	active := room.Map.ActiveTeams()

	present := make(map[string]bool)
	for uid, team := range room.PlayerTeam {
		if _, ok := r.sessions[uid]; ok && active[team] {
			present[team] = true
		}
	}
	if len(present) > 1 {
		return
	}

	winner := ""
	for t := range present {
		winner = t
	}
	r.endGame(room, winner)
}

func (r *Router) endGame(room *roomstate.Room, winner string) {
	room.Status = roomstate.StatusEnded
	r.broadcast(room, protocol.NewGameWin(winner))
	r.broadcast(room, protocol.NewEndGame(room.ID))
	if r.sched != nil {
		r.sched.Stop(room.ID)
	}
	r.bus.PublishGameWin(context.Background(), room.ID, winner)
	r.logger.Info(context.Background(), "router: game in room %s won by %s", room.ID, winner)
}

// broadcastMapUpdate computes each member's fog-of-war view and pushes it,
// carrying the acknowledged move ids when a move triggered the snapshot.
func (r *Router) broadcastMapUpdate(room *roomstate.Room, ackMoveIDs []string) {
	if room.Map == nil {
		return
	}
	powers := r.playerPowers(room)
	for _, uid := range room.Members {
		team := room.PlayerTeam[uid]
		spectator := team == ""
		tiles := protocol.WireTiles(room.Map.View(team, spectator))
		r.sendTo(uid, protocol.NewMapUpdate(room.ID, tiles, ackMoveIDs, powers))
	}
}

// playerPowers builds the roster of non-spectator members: display name,
// group, whole-map team power, and status. Power is server-side truth,
// independent of any viewer's fog.
func (r *Router) playerPowers(room *roomstate.Room) []protocol.WirePlayerPower {
	activeTeams := room.Map.ActiveTeams()
	powers := make([]protocol.WirePlayerPower, 0, len(room.Members))
	for _, uid := range room.Members {
		g := room.PlayerGroup[uid]
		if g == roomstate.SpectatorGroup {
			continue
		}
		team := room.PlayerTeam[uid]
		status := "active"
		power := 0
		switch {
		case team == "":
			// In a team group but without a team: joined mid-game, gets a
			// team only when the next game starts.
			status = "observer"
		case !activeTeams[team]:
			status = "defeated"
		default:
			power = room.Map.TotalPower(team)
			if _, gone := r.disconnects[uid]; gone {
				status = "disconnected"
			}
		}
		powers = append(powers, protocol.WirePlayerPower{
			Name:    room.PlayerName[uid],
			GroupID: g,
			Power:   power,
			Status:  status,
		})
	}
	return powers
}

// turnActions builds the (name, last_action_or_waiting) roster for the
// game_turn_update frame.
func (r *Router) turnActions(room *roomstate.Room) []protocol.ActionEntry {
	actions := make([]protocol.ActionEntry, 0, len(room.Members))
	for _, uid := range room.Members {
		if room.PlayerGroup[uid] == roomstate.SpectatorGroup {
			continue
		}
		action := room.LastAction[uid]
		if action == "" {
			action = "waiting"
		}
		actions = append(actions, protocol.ActionEntry{Name: room.PlayerName[uid], Action: action})
	}
	return actions
}

func halfOffset(h gamemap.Half) int {
	if h == gamemap.SecondHalf {
		return 1
	}
	return 0
}

func halfString(h gamemap.Half) string {
	if h == gamemap.SecondHalf {
		return "second"
	}
	return "first"
}
