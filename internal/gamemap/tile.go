// Package gamemap implements the tile grid, combat resolution, territory
// transfer on elimination, growth rules, and the per-viewer visibility
// projection.
package gamemap

// Kind is the tile's sum-type discriminant. Go has no sum types, so the
// variant's payload fields (Count, Owner, CityKind) are simply zero/empty when
// the kind doesn't use them; construction helpers keep that invariant.
type Kind int

const (
	Wilderness Kind = iota
	Territory
	GeneralTile
	City
	Mountain
	Void
)

// CityKind distinguishes the three city growth tiers.
type CityKind int

const (
	NoCity CityKind = iota
	Settlement
	SmallCity
	LargeCity
)

// Tile is one cell of the grid. Owner is a team id ("team_0" etc, see
// internal/roomstate.TeamID) and is only meaningful when non-empty; owned
// kinds (Territory, GeneralTile, a captured City) always carry a non-empty
// owner by construction, never a null/placeholder owner.
type Tile struct {
	Kind     Kind
	Count    int
	Owner    string
	CityKind CityKind
}

func NewWilderness() Tile { return Tile{Kind: Wilderness} }

func NewTerritory(count int, owner string) Tile {
	return Tile{Kind: Territory, Count: count, Owner: owner}
}

func NewGeneral(count int, owner string) Tile {
	return Tile{Kind: GeneralTile, Count: count, Owner: owner}
}

func NewCity(count int, owner string, kind CityKind) Tile {
	return Tile{Kind: City, Count: count, Owner: owner, CityKind: kind}
}

func NewMountain() Tile { return Tile{Kind: Mountain} }

func NewVoid() Tile { return Tile{Kind: Void} }

// Passable reports whether a unit may occupy or traverse this tile kind
// (Wilderness/Territory/City/GeneralTile).
func (t Tile) Passable() bool {
	switch t.Kind {
	case Wilderness, Territory, GeneralTile, City:
		return true
	default:
		return false
	}
}

// Owned reports whether the tile currently belongs to a team.
func (t Tile) Owned() bool {
	return t.Owner != ""
}
