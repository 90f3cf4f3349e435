package router

import (
	"testing"
	"time"

	"github.com/generals-server/core/internal/gamemap"
	"github.com/generals-server/core/internal/protocol"
	"github.com/generals-server/core/internal/roomstate"
)

// startTwoPlayerGame brings a room to playing with alice and bob on
// opposing teams, then swaps in a small deterministic map.
func startTwoPlayerGame(t *testing.T, r *Router) (room *roomstate.Room, alice, bob *fakeSink) {
	t.Helper()
	alice = attach(t, r, "u1", "alice")
	bob = attach(t, r, "u2", "bob")
	join(t, r, "u1", "alice", "g1")
	join(t, r, "u2", "bob", "g1")

	r.dispatch(frameReq{UserID: "u1", Msg: protocol.ForceStartRequest{RoomID: "g1"}})
	r.dispatch(frameReq{UserID: "u2", Msg: protocol.ForceStartRequest{RoomID: "g1"}})

	room = r.rooms["g1"]
	if room.Status != roomstate.StatusPlaying {
		t.Fatalf("status = %v, want playing after both votes", room.Status)
	}

	m := gamemap.NewMap(20)
	m.Set(gamemap.Point{X: 2, Y: 2}, gamemap.NewGeneral(5, "team_0"))
	m.Set(gamemap.Point{X: 17, Y: 17}, gamemap.NewGeneral(5, "team_1"))
	room.Map = m
	return room, alice, bob
}

func TestForceStartBeginsGame(t *testing.T) {
	r, _, sched := newTestRouter()
	room, alice, _ := startTwoPlayerGame(t, r)

	if room.Turn != 1 || room.Half != gamemap.FirstHalf {
		t.Errorf("turn/half = %d/%v, want 1/first", room.Turn, room.Half)
	}
	if room.PlayerTeam["u1"] == "" || room.PlayerTeam["u2"] == "" {
		t.Errorf("teams = %v, want both players assigned", room.PlayerTeam)
	}
	if room.PlayerTeam["u1"] == room.PlayerTeam["u2"] {
		t.Errorf("both players on %s", room.PlayerTeam["u1"])
	}
	if len(sched.armed) == 0 || sched.armed[0] != "g1" {
		t.Errorf("scheduler armed = %v, want [g1]", sched.armed)
	}
	if !alice.hasEvent(func(e interface{}) bool {
		_, ok := e.(protocol.StartGameEvent)
		return ok
	}) {
		t.Error("start_game was not sent")
	}
	if !alice.hasEvent(func(e interface{}) bool {
		_, ok := e.(protocol.MapUpdateEvent)
		return ok
	}) {
		t.Error("initial map_update was not sent")
	}
}

func TestForceStartDuplicateVote(t *testing.T) {
	r, _, _ := newTestRouter()
	sink := attach(t, r, "u1", "alice")
	attach(t, r, "u2", "bob")
	join(t, r, "u1", "alice", "g1")
	join(t, r, "u2", "bob", "g1")

	r.dispatch(frameReq{UserID: "u1", Msg: protocol.ForceStartRequest{RoomID: "g1"}})
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.ForceStartRequest{RoomID: "g1"}})

	if msgs := sink.errorsSent(); len(msgs) != 1 {
		t.Errorf("duplicate vote errors = %v, want exactly one", msgs)
	}
	if r.rooms["g1"].Status != roomstate.StatusWaiting {
		t.Error("one voter started a two-player game")
	}
}

func TestForceStartRoundTrip(t *testing.T) {
	r, _, _ := newTestRouter()
	attach(t, r, "u1", "alice")
	attach(t, r, "u2", "bob")
	join(t, r, "u1", "alice", "g1")
	join(t, r, "u2", "bob", "g1")

	r.dispatch(frameReq{UserID: "u1", Msg: protocol.ForceStartRequest{RoomID: "g1"}})
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.DeForceStartRequest{RoomID: "g1"}})

	room := r.rooms["g1"]
	if len(room.ForceStart) != 0 {
		t.Errorf("force-start set = %v, want empty after the round trip", room.ForceStart)
	}
	if room.Status != roomstate.StatusWaiting {
		t.Errorf("status = %v, want waiting", room.Status)
	}
}

func TestChangeGroupCancelsQuorum(t *testing.T) {
	r, _, _ := newTestRouter()
	attach(t, r, "u1", "alice")
	sink2 := attach(t, r, "u2", "bob")
	join(t, r, "u1", "alice", "g1")
	join(t, r, "u2", "bob", "g1")

	r.dispatch(frameReq{UserID: "u1", Msg: protocol.ForceStartRequest{RoomID: "g1"}})
	r.dispatch(frameReq{UserID: "u2", Msg: protocol.ChangeGroupRequest{RoomID: "g1", TargetGroupID: roomstate.SpectatorGroup}})

	room := r.rooms["g1"]
	if len(room.ForceStart) != 0 {
		t.Errorf("votes = %v, want cleared when active players dropped below 2", room.ForceStart)
	}
	if !sink2.hasEvent(func(e interface{}) bool {
		chat, ok := e.(protocol.ChatMessageEvent)
		return ok && chat.SenderID == systemSender
	}) {
		t.Error("quorum cancellation was not announced")
	}
}

func TestChangeGroupCanTriggerStart(t *testing.T) {
	r, _, _ := newTestRouter()
	attach(t, r, "u1", "alice")
	attach(t, r, "u2", "bob")
	join(t, r, "u1", "alice", "g1")
	join(t, r, "u2", "bob", "g1")
	attach(t, r, "u3", "carol")
	join(t, r, "u3", "carol", "g1")
	room := r.rooms["g1"]

	// Two of three votes: threshold for N=3 is 3, so nothing starts.
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.ForceStartRequest{RoomID: "g1"}})
	r.dispatch(frameReq{UserID: "u2", Msg: protocol.ForceStartRequest{RoomID: "g1"}})
	if room.Status != roomstate.StatusWaiting {
		t.Fatal("game started below the three-player threshold")
	}

	// Carol stepping out to spectate drops N to 2, whose threshold the
	// two standing votes already meet.
	r.dispatch(frameReq{UserID: "u3", Msg: protocol.ChangeGroupRequest{RoomID: "g1", TargetGroupID: roomstate.SpectatorGroup}})
	if room.Status != roomstate.StatusPlaying {
		t.Errorf("status = %v, want playing after the group change", room.Status)
	}
}

func TestGameMove(t *testing.T) {
	r, _, _ := newTestRouter()
	room, alice, bob := startTwoPlayerGame(t, r)
	team := room.PlayerTeam["u1"]
	general := gamemap.Point{X: 2, Y: 2}
	if team != "team_0" {
		general = gamemap.Point{X: 17, Y: 17}
	}

	alice.events, bob.events = nil, nil
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.GameMoveRequest{
		RoomID: "g1", FromX: general.X, FromY: general.Y, ToX: general.X + 1, ToY: general.Y, MoveID: "m-1",
	}})

	if msgs := alice.errorsSent(); len(msgs) != 0 {
		t.Fatalf("move rejected: %v", msgs)
	}
	moveOk, ok := alice.events[0].(protocol.MoveOkEvent)
	if !ok || moveOk.MoveID != "m-1" {
		t.Errorf("first event = %+v, want move_ok m-1", alice.events[0])
	}

	dst := room.Map.At(gamemap.Point{X: general.X + 1, Y: general.Y})
	if dst.Kind != gamemap.Territory || dst.Count != 4 || dst.Owner != team {
		t.Errorf("target = %+v, want Territory{4, %s}", dst, team)
	}

	for _, sink := range []*fakeSink{alice, bob} {
		if !sink.hasEvent(func(e interface{}) bool {
			mu, ok := e.(protocol.MapUpdateEvent)
			return ok && len(mu.SuccessfulMoveSends) == 1 && mu.SuccessfulMoveSends[0] == "m-1"
		}) {
			t.Error("map_update with the acknowledged move id missing")
		}
	}
}

func TestGameMoveFogNeverLeaks(t *testing.T) {
	r, _, _ := newTestRouter()
	room, alice, _ := startTwoPlayerGame(t, r)
	enemyTeam := room.PlayerTeam["u2"]
	general := gamemap.Point{X: 2, Y: 2}
	if room.PlayerTeam["u1"] != "team_0" {
		general = gamemap.Point{X: 17, Y: 17}
	}

	alice.events = nil
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.GameMoveRequest{
		RoomID: "g1", FromX: general.X, FromY: general.Y, ToX: general.X, ToY: general.Y + 1, MoveID: "m-1",
	}})

	for _, e := range alice.events {
		mu, ok := e.(protocol.MapUpdateEvent)
		if !ok {
			continue
		}
		for _, tile := range mu.VisibleTiles {
			if !tile.HasVision && tile.Owner != "" {
				t.Fatalf("fogged tile leaks owner: %+v", tile)
			}
			if tile.Owner == enemyTeam {
				t.Fatalf("enemy tile visible across the map: %+v", tile)
			}
		}
	}
}

func TestGameMoveRejections(t *testing.T) {
	r, _, _ := newTestRouter()
	room, alice, _ := startTwoPlayerGame(t, r)
	general := gamemap.Point{X: 2, Y: 2}
	if room.PlayerTeam["u1"] != "team_0" {
		general = gamemap.Point{X: 17, Y: 17}
	}

	// Non-adjacent target.
	alice.events = nil
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.GameMoveRequest{
		RoomID: "g1", FromX: general.X, FromY: general.Y, ToX: general.X + 3, ToY: general.Y, MoveID: "m-1",
	}})
	if msgs := alice.errorsSent(); len(msgs) != 1 {
		t.Fatalf("errors = %v, want one rejection", msgs)
	}
	// A failed move sends no map update.
	if alice.hasEvent(func(e interface{}) bool {
		_, ok := e.(protocol.MapUpdateEvent)
		return ok
	}) {
		t.Error("rejected move produced a map_update")
	}

	// Spectators cannot move.
	spectator := attach(t, r, "u3", "carol")
	join(t, r, "u3", "carol", "g1")
	spectator.events = nil
	r.dispatch(frameReq{UserID: "u3", Msg: protocol.GameMoveRequest{
		RoomID: "g1", FromX: general.X, FromY: general.Y, ToX: general.X + 1, ToY: general.Y, MoveID: "m-2",
	}})
	if msgs := spectator.errorsSent(); len(msgs) != 1 {
		t.Errorf("spectator move errors = %v", msgs)
	}
}

func TestCapitalCaptureWinsGame(t *testing.T) {
	r, _, sched := newTestRouter()
	room, alice, bob := startTwoPlayerGame(t, r)
	team := room.PlayerTeam["u1"]
	enemy := room.PlayerTeam["u2"]

	m := gamemap.NewMap(20)
	m.Set(gamemap.Point{X: 2, Y: 2}, gamemap.NewTerritory(6, team))
	m.Set(gamemap.Point{X: 2, Y: 3}, gamemap.NewGeneral(3, enemy))
	m.Set(gamemap.Point{X: 10, Y: 10}, gamemap.NewTerritory(10, enemy))
	room.Map = m

	alice.events, bob.events = nil, nil
	r.dispatch(frameReq{UserID: "u1", Msg: protocol.GameMoveRequest{
		RoomID: "g1", FromX: 2, FromY: 2, ToX: 2, ToY: 3, MoveID: "m-win",
	}})

	if room.Status != roomstate.StatusEnded {
		t.Fatalf("status = %v, want ended", room.Status)
	}
	for _, sink := range []*fakeSink{alice, bob} {
		if !sink.hasEvent(func(e interface{}) bool {
			el, ok := e.(protocol.PlayerEliminatedEvent)
			return ok && el.EliminatedPlayer == enemy && el.EliminatedBy == team
		}) {
			t.Error("player_eliminated missing")
		}
		if !sink.hasEvent(func(e interface{}) bool {
			win, ok := e.(protocol.GameWinEvent)
			return ok && win.Winner == team
		}) {
			t.Error("game_win missing")
		}
	}
	if len(sched.stopped) == 0 || sched.stopped[len(sched.stopped)-1] != "g1" {
		t.Errorf("scheduler stops = %v, want g1", sched.stopped)
	}

	if got := m.At(gamemap.Point{X: 10, Y: 10}); got.Owner != team || got.Count != 5 {
		t.Errorf("cascaded territory = %+v, want {5, %s}", got, team)
	}
}

func TestAdvanceTurn(t *testing.T) {
	r, _, sched := newTestRouter()
	room, alice, _ := startTwoPlayerGame(t, r)
	sched.armed = nil
	alice.events = nil

	r.dispatch(advanceReq{RoomID: "g1"})

	// First half of turn 1: generals grow, ticks=2 grows nothing else here.
	if got := room.Map.At(gamemap.Point{X: 2, Y: 2}).Count; got != 6 {
		t.Errorf("general count = %d, want 6 after first-half growth", got)
	}
	if room.Half != gamemap.SecondHalf || room.Turn != 1 {
		t.Errorf("turn/half = %d/%v, want 1/second", room.Turn, room.Half)
	}
	if len(sched.armed) != 1 || sched.armed[0] != "g1" {
		t.Errorf("re-arm = %v, want [g1]", sched.armed)
	}

	var turnUpdate *protocol.GameTurnUpdateEvent
	for _, e := range alice.events {
		if tu, ok := e.(protocol.GameTurnUpdateEvent); ok {
			turnUpdate = &tu
		}
	}
	if turnUpdate == nil {
		t.Fatal("game_turn_update missing")
	}
	if turnUpdate.Turn != 1 || turnUpdate.Half != "first" {
		t.Errorf("turn update = %+v, want turn 1 first half", turnUpdate)
	}
	if len(turnUpdate.Actions) != 2 {
		t.Fatalf("actions = %+v, want both players", turnUpdate.Actions)
	}
	for _, a := range turnUpdate.Actions {
		if a.Action != "waiting" {
			t.Errorf("idle player action = %q, want waiting", a.Action)
		}
	}

	// Second half: generals do not grow again, the turn counter advances.
	r.dispatch(advanceReq{RoomID: "g1"})
	if got := room.Map.At(gamemap.Point{X: 2, Y: 2}).Count; got != 6 {
		t.Errorf("general count = %d, want 6 (no second-half growth)", got)
	}
	if room.Turn != 2 || room.Half != gamemap.FirstHalf {
		t.Errorf("turn/half = %d/%v, want 2/first", room.Turn, room.Half)
	}
}

func TestAdvanceTurnCityGrowth(t *testing.T) {
	r, _, _ := newTestRouter()
	room, _, _ := startTwoPlayerGame(t, r)
	team := room.PlayerTeam["u1"]
	room.Map.Set(gamemap.Point{X: 5, Y: 5}, gamemap.NewCity(10, team, gamemap.LargeCity))
	room.Map.Set(gamemap.Point{X: 6, Y: 5}, gamemap.NewCity(10, team, gamemap.Settlement))

	// Turn 1 first half: ticks=2, large +2, settlement unchanged.
	r.dispatch(advanceReq{RoomID: "g1"})
	if got := room.Map.At(gamemap.Point{X: 5, Y: 5}).Count; got != 12 {
		t.Errorf("large city = %d, want 12", got)
	}
	if got := room.Map.At(gamemap.Point{X: 6, Y: 5}).Count; got != 10 {
		t.Errorf("settlement = %d, want 10 at ticks=2", got)
	}

	// Turn 1 second half: ticks=3, odd, nothing grows.
	r.dispatch(advanceReq{RoomID: "g1"})
	if got := room.Map.At(gamemap.Point{X: 5, Y: 5}).Count; got != 12 {
		t.Errorf("large city = %d, want 12 at ticks=3", got)
	}

	// Turn 2 first half: ticks=4, large +2 and settlement +1.
	r.dispatch(advanceReq{RoomID: "g1"})
	if got := room.Map.At(gamemap.Point{X: 5, Y: 5}).Count; got != 14 {
		t.Errorf("large city = %d, want 14 at ticks=4", got)
	}
	if got := room.Map.At(gamemap.Point{X: 6, Y: 5}).Count; got != 11 {
		t.Errorf("settlement = %d, want 11 at ticks=4", got)
	}
}

func TestAdvanceTurnEveryTwentyFive(t *testing.T) {
	r, _, _ := newTestRouter()
	room, _, _ := startTwoPlayerGame(t, r)
	team := room.PlayerTeam["u1"]
	room.Map.Set(gamemap.Point{X: 5, Y: 5}, gamemap.NewTerritory(1, team))
	room.Turn = 25

	r.dispatch(advanceReq{RoomID: "g1"})
	if got := room.Map.At(gamemap.Point{X: 5, Y: 5}).Count; got != 2 {
		t.Errorf("territory = %d, want 2 after the 25-turn growth", got)
	}
	// Generals get the first-half +1 and the 25-turn +1.
	if got := room.Map.At(gamemap.Point{X: 2, Y: 2}).Count; got != 7 {
		t.Errorf("general = %d, want 7", got)
	}
}

func TestAdvanceTurnDetectsVictory(t *testing.T) {
	r, _, _ := newTestRouter()
	room, alice, _ := startTwoPlayerGame(t, r)
	team := room.PlayerTeam["u1"]

	m := gamemap.NewMap(20)
	m.Set(gamemap.Point{X: 2, Y: 2}, gamemap.NewGeneral(5, team))
	room.Map = m

	alice.events = nil
	r.dispatch(advanceReq{RoomID: "g1"})

	if room.Status != roomstate.StatusEnded {
		t.Fatalf("status = %v, want ended with one team left", room.Status)
	}
	if !alice.hasEvent(func(e interface{}) bool {
		win, ok := e.(protocol.GameWinEvent)
		return ok && win.Winner == team
	}) {
		t.Error("game_win missing")
	}
}

func TestAdvanceTurnStaleRoom(t *testing.T) {
	r, _, _ := newTestRouter()
	// Must not panic or create state for an unknown room.
	r.dispatch(advanceReq{RoomID: "ghost"})
	if _, ok := r.rooms["ghost"]; ok {
		t.Error("stale tick created a room")
	}
}

func TestGameActionShowsInTurnUpdate(t *testing.T) {
	r, _, _ := newTestRouter()
	_, alice, _ := startTwoPlayerGame(t, r)

	r.dispatch(frameReq{UserID: "u1", Msg: protocol.GameActionRequest{RoomID: "g1", Action: "rallying"}})
	alice.events = nil
	r.dispatch(advanceReq{RoomID: "g1"})

	found := false
	for _, e := range alice.events {
		tu, ok := e.(protocol.GameTurnUpdateEvent)
		if !ok {
			continue
		}
		for _, a := range tu.Actions {
			if a.Name == "alice" && a.Action == "rallying" {
				found = true
			}
		}
	}
	if !found {
		t.Error("stored game_action not reflected in the turn roster")
	}
}

func TestExpiryEndsGame(t *testing.T) {
	r, clock, _ := newTestRouter()
	room, _, bob := startTwoPlayerGame(t, r)
	winner := room.PlayerTeam["u2"]

	r.dispatch(detachReq{UserID: "u1"})
	clock.advance(31 * time.Second)
	bob.events = nil
	r.dispatch(expireReq{})

	if room.Status != roomstate.StatusEnded {
		t.Fatalf("status = %v, want ended after the opponent expired", room.Status)
	}
	if !bob.hasEvent(func(e interface{}) bool {
		win, ok := e.(protocol.GameWinEvent)
		return ok && win.Winner == winner
	}) {
		t.Error("game_win missing after expiry")
	}
}

func TestRosterPowersAndStatus(t *testing.T) {
	r, _, _ := newTestRouter()
	room, _, _ := startTwoPlayerGame(t, r)
	teamA := room.PlayerTeam["u1"]
	teamB := room.PlayerTeam["u2"]

	m := gamemap.NewMap(20)
	m.Set(gamemap.Point{X: 2, Y: 2}, gamemap.NewGeneral(5, teamA))
	m.Set(gamemap.Point{X: 3, Y: 2}, gamemap.NewTerritory(7, teamA))
	m.Set(gamemap.Point{X: 17, Y: 17}, gamemap.NewGeneral(4, teamB))
	room.Map = m

	powers := r.playerPowers(room)
	if len(powers) != 2 {
		t.Fatalf("roster = %+v, want two rows", powers)
	}
	byName := make(map[string]int)
	status := make(map[string]string)
	for _, p := range powers {
		byName[p.Name] = p.Power
		status[p.Name] = p.Status
	}
	if byName["alice"] != 12 || byName["bob"] != 4 {
		t.Errorf("powers = %v, want alice 12 bob 4", byName)
	}
	if status["alice"] != "active" || status["bob"] != "active" {
		t.Errorf("status = %v, want both active", status)
	}

	// Disconnected players show as disconnected while in grace.
	r.dispatch(detachReq{UserID: "u2"})
	for _, p := range r.playerPowers(room) {
		if p.Name == "bob" && p.Status != "disconnected" {
			t.Errorf("bob status = %q, want disconnected", p.Status)
		}
	}

	// A team with no tiles shows as defeated.
	m.Set(gamemap.Point{X: 17, Y: 17}, gamemap.NewWilderness())
	for _, p := range r.playerPowers(room) {
		if p.Name == "bob" && p.Status != "defeated" {
			t.Errorf("bob status = %q, want defeated", p.Status)
		}
	}
}

func TestJoinWhilePlayingBecomesSpectator(t *testing.T) {
	r, _, _ := newTestRouter()
	room, _, _ := startTwoPlayerGame(t, r)

	carol := attach(t, r, "u3", "carol")
	join(t, r, "u3", "carol", "g1")

	if g := room.PlayerGroup["u3"]; g != roomstate.SpectatorGroup {
		t.Errorf("mid-game joiner group = %d, want spectators", g)
	}
	if _, ok := room.PlayerTeam["u3"]; ok {
		t.Error("mid-game joiner was assigned a team")
	}
	if !carol.hasEvent(func(e interface{}) bool {
		redirect, ok := e.(protocol.RedirectToGameEvent)
		return ok && redirect.RoomID == "g1"
	}) {
		t.Error("mid-game joiner was not redirected to the game")
	}
}
