package roomstate

// forceStartThreshold maps the count of non-spectator members to the
// vote count that begins the game. A fixed lookup, not a formula.
var forceStartThreshold = map[int]int{
	2: 2, 3: 3, 4: 3, 5: 4, 6: 4, 7: 5, 8: 5,
	9: 6, 10: 6, 11: 7, 12: 7, 13: 8, 14: 8, 15: 9, 16: 9,
}

// ForceStartThreshold returns the number of force-start votes required
// among n non-spectator members, and whether a threshold exists at all
// (false when n <= 1).
func ForceStartThreshold(n int) (int, bool) {
	t, ok := forceStartThreshold[n]
	return t, ok
}

// ForceStartMet reports whether the room currently has enough force-start
// votes among active (non-spectator) members to begin the game.
func (r *Room) ForceStartMet() bool {
	n := r.NonSpectatorCount()
	threshold, ok := ForceStartThreshold(n)
	if !ok {
		return false
	}
	votes := 0
	for id := range r.ForceStart {
		if g, exists := r.PlayerGroup[id]; exists && g != SpectatorGroup {
			votes++
		}
	}
	return n >= 2 && votes >= threshold
}

// ReconcileForceStart clears the force-start set when the active-player
// count has dropped below two, where no threshold applies and stale votes
// from a larger lobby must not linger.
func (r *Room) ReconcileForceStart() {
	n := r.NonSpectatorCount()
	if _, ok := ForceStartThreshold(n); !ok && len(r.ForceStart) > 0 {
		r.ForceStart = make(map[string]bool)
	}
}

// AssignTeams maps every non-spectator member to a shared team id per
// their group, and clears the team map for spectators.
func (r *Room) AssignTeams() {
	r.PlayerTeam = make(map[string]string)
	for _, id := range r.Members {
		g := r.PlayerGroup[id]
		if g == SpectatorGroup {
			continue
		}
		r.PlayerTeam[id] = TeamID(g)
	}
}

// ActiveTeamIDs returns the distinct team ids among current non-spectator
// members, in ascending group order — the order map generation assigns
// generals in.
func (r *Room) ActiveTeamIDs() []string {
	var teams []string
	for g := 0; g < SpectatorGroup; g++ {
		if len(r.GroupMembers(g)) > 0 {
			teams = append(teams, TeamID(g))
		}
	}
	return teams
}

// BeginGame transitions the room into play: status, turn/half reset,
// force-start/action clearing, and team assignment. It does not generate
// the map — the router does that (it owns the RNG seed and mapgen
// dependency) and calls Room.Map = ... before emitting StartGame.
func (r *Room) BeginGame() {
	r.Status = StatusPlaying
	r.Turn = 1
	r.Half = 0 // FirstHalf
	r.ForceStart = make(map[string]bool)
	r.LastAction = make(map[string]string)
	r.AssignTeams()
}
