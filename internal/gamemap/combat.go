package gamemap

import "errors"

var (
	ErrNotOwner        = errors.New("source tile not owned by mover's team")
	ErrSourceTooSmall   = errors.New("source tile count must be greater than 1")
	ErrNotAdjacent      = errors.New("target tile is not adjacent to source")
	ErrImpassableTarget = errors.New("target tile is impassable")
	ErrOutOfBounds      = errors.New("coordinates out of bounds")
)

// MoveResult reports the bookkeeping a successful move needs to turn into
// outbound events: whether an enemy general was captured, and — if so —
// who lost.
type MoveResult struct {
	EliminatedTeam string // non-empty iff a general was captured this move
	GameWinner     string // non-empty iff exactly one team remains afterward
}

// ApplyMove executes one move against m in place. from must hold a
// Territory or GeneralTile owned by team; to must be orthogonally
// adjacent and in bounds. half selects the half-vs-full move-count rule.
func ApplyMove(m *Map, from, to Point, team string, half bool) (MoveResult, error) {
	if !m.InBounds(from) || !m.InBounds(to) {
		return MoveResult{}, ErrOutOfBounds
	}
	if !Adjacent(from, to) {
		return MoveResult{}, ErrNotAdjacent
	}

	src := m.At(from)
	if (src.Kind != Territory && src.Kind != GeneralTile) || src.Owner != team {
		return MoveResult{}, ErrNotOwner
	}
	if src.Count <= 1 {
		return MoveResult{}, ErrSourceTooSmall
	}

	n := src.Count
	moveCount := n - 1
	if half {
		moveCount = n / 2
	}
	if moveCount < 1 {
		moveCount = 1
	}
	if moveCount > n-1 {
		moveCount = n - 1
	}
	src.Count = n - moveCount
	m.Set(from, src)

	dst := m.At(to)
	var result MoveResult

	switch dst.Kind {
	case Mountain, Void:
		// Reject, but source has already been mutated above per spec's
		// "clamp" ordering; restore it since the move never happened.
		src.Count = n
		m.Set(from, src)
		return MoveResult{}, ErrImpassableTarget

	case Wilderness:
		m.Set(to, NewTerritory(moveCount, team))

	case Territory:
		if dst.Owner == team {
			dst.Count += moveCount
			m.Set(to, dst)
		} else if moveCount > dst.Count {
			m.Set(to, NewTerritory(moveCount-dst.Count, team))
		} else {
			dst.Count -= moveCount
			m.Set(to, dst)
		}

	case City:
		if dst.Owner == team {
			dst.Count += moveCount
			m.Set(to, dst)
		} else if moveCount > dst.Count {
			m.Set(to, NewCity(moveCount-dst.Count, team, dst.CityKind))
		} else {
			dst.Count -= moveCount
			m.Set(to, dst)
		}

	case GeneralTile:
		if dst.Owner == team {
			dst.Count += moveCount
			m.Set(to, dst)
		} else if moveCount > dst.Count {
			defeated := dst.Owner
			m.Set(to, NewGeneral(moveCount-dst.Count, team))
			transferTerritory(m, defeated, team)
			result.EliminatedTeam = defeated

			active := m.ActiveTeams()
			if len(active) == 1 {
				for winner := range active {
					result.GameWinner = winner
				}
			}
		} else {
			dst.Count -= moveCount
			m.Set(to, dst)
		}
	}

	return result, nil
}

// transferTerritory reassigns every tile owned by defeated to attacker at
// half count when a capital falls. Territories that
// would go to 0 revert to Wilderness; Cities that would go to 0 become
// unowned. The captured general tile itself is handled by the caller
// before this runs, so it is skipped here naturally (its owner is already
// attacker).
func transferTerritory(m *Map, defeated, attacker string) {
	for i, t := range m.Tiles {
		if t.Owner != defeated {
			continue
		}
		transferred := t.Count / 2
		switch t.Kind {
		case Territory:
			if transferred == 0 {
				m.Tiles[i] = NewWilderness()
			} else {
				m.Tiles[i] = NewTerritory(transferred, attacker)
			}
		case City:
			if transferred == 0 {
				m.Tiles[i] = NewCity(0, "", t.CityKind)
			} else {
				m.Tiles[i] = NewCity(transferred, attacker, t.CityKind)
			}
		case GeneralTile:
			// A team can only have one general; it was already replaced by
			// the caller. Defensive no-op in case of future multi-general
			// variants.
			m.Tiles[i] = NewGeneral(transferred, attacker)
		}
	}
}
