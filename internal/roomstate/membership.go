package roomstate

import "time"

// AssignGroupForJoin picks a group for a newly joining (or
// previously-unseen) member: while waiting, the smallest team group
// (0-7) among those with fewer than 2 members, ties broken by lowest id —
// so joiners spread one per team before any team doubles up — else
// spectators; while playing, always spectators (rejoining members keep
// their prior group via a separate path in the router).
func (r *Room) AssignGroupForJoin() int {
	if r.Status != StatusWaiting {
		return SpectatorGroup
	}
	best, bestSize := SpectatorGroup, 2
	for g := 0; g < SpectatorGroup; g++ {
		if n := len(r.GroupMembers(g)); n < bestSize {
			best, bestSize = g, n
		}
	}
	return best
}

// AddMember appends userID to the room, recording their display name and
// assigned group. It does not handle host/admin promotion — the router
// does that on join (a sole member with no admin becomes admin) and on
// departure.
func (r *Room) AddMember(userID, name string, group int) {
	r.Members = append(r.Members, userID)
	r.PlayerName[userID] = name
	r.PlayerGroup[userID] = group
	r.LastActivity = time.Now()
}

// RemoveMember strips userID from members, force-start votes, and group
// assignment. It does not touch host/admin — the router applies the
// promotion rule after calling this.
func (r *Room) RemoveMember(userID string) {
	for i, id := range r.Members {
		if id == userID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			break
		}
	}
	delete(r.ForceStart, userID)
	delete(r.PlayerGroup, userID)
	delete(r.PlayerName, userID)
	delete(r.PlayerTeam, userID)
	delete(r.LastAction, userID)
	r.LastActivity = time.Now()
}

// IsKicked reports whether userID is still within the 5-minute rejoin
// lockout for this room.
func (r *Room) IsKicked(userID string, lockout time.Duration, now time.Time) bool {
	t, ok := r.Kicks[userID]
	if !ok {
		return false
	}
	return now.Sub(t) < lockout
}

// Kick records a kick timestamp for the 5-minute rejoin lockout.
func (r *Room) Kick(userID string, now time.Time) {
	r.Kicks[userID] = now
}
