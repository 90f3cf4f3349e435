package gamemap

// VisibleTile is one entry of a viewer's per-tick snapshot, the in-memory
// form of a visible_tiles [x,y,kind,count,owner?,has_vision] tuple.
type VisibleTile struct {
	X, Y      int
	Kind      Kind
	Count     int
	Owner     string
	CityKind  CityKind
	HasVision bool
}

// View computes the fog-of-war projection for a viewing team. Spectators
// (isSpectator true) see the whole board with full vision; non-spectator
// teams see only the 3x3 box around each tile they own, with mountains and
// cities "position-visible" everywhere (coordinates/kind leaked, but counts
// and owners redacted without true vision), Void always transmitted, and
// every other unseen cell collapsed to a single opaque "unknown" kind.
func (m *Map) View(team string, isSpectator bool) []VisibleTile {
	visible := m.visibilityMask(team, isSpectator)

	out := make([]VisibleTile, 0, len(m.Tiles))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			p := Point{x, y}
			t := m.At(p)
			hasVision := isSpectator || visible[m.index(p)]

			switch {
			case hasVision:
				out = append(out, VisibleTile{X: x, Y: y, Kind: t.Kind, Count: t.Count, Owner: t.Owner, CityKind: t.CityKind, HasVision: true})
			case t.Kind == Mountain:
				out = append(out, VisibleTile{X: x, Y: y, Kind: Mountain, HasVision: false})
			case t.Kind == City:
				out = append(out, VisibleTile{X: x, Y: y, Kind: City, CityKind: t.CityKind, HasVision: false})
			case t.Kind == Void:
				out = append(out, VisibleTile{X: x, Y: y, Kind: Void, HasVision: false})
			default:
				out = append(out, VisibleTile{X: x, Y: y, Kind: UnknownKind, HasVision: false})
			}
		}
	}
	return out
}

// UnknownKind is the sentinel Kind value the wire codec renders as
// "unknown" — it is never a real tile's stored Kind, only a visibility
// projection artifact.
const UnknownKind Kind = -1

func (m *Map) visibilityMask(team string, isSpectator bool) []bool {
	mask := make([]bool, len(m.Tiles))
	if isSpectator {
		for i := range mask {
			mask[i] = true
		}
		return mask
	}
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			p := Point{x, y}
			if m.At(p).Owner != team {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					q := Point{x + dx, y + dy}
					if m.InBounds(q) {
						mask[m.index(q)] = true
					}
				}
			}
		}
	}
	return mask
}
