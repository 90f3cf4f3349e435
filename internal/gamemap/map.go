package gamemap

import "fmt"

// Point is an (x, y) grid coordinate.
type Point struct {
	X, Y int
}

// Map is a square grid of tiles, row-major by Y then X; sides run 20-60.
// It is an owned value per room; there is no aliasing between rooms, and
// combat mutates it in place.
type Map struct {
	Size  int
	Tiles []Tile
}

// NewMap allocates a size×size grid of Wilderness.
func NewMap(size int) *Map {
	tiles := make([]Tile, size*size)
	for i := range tiles {
		tiles[i] = NewWilderness()
	}
	return &Map{Size: size, Tiles: tiles}
}

func (m *Map) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Size && p.Y < m.Size
}

func (m *Map) index(p Point) int {
	return p.Y*m.Size + p.X
}

// At returns the tile at p. Panics if out of bounds — callers check
// InBounds at the edge of the grid rather than inside every accessor.
func (m *Map) At(p Point) Tile {
	return m.Tiles[m.index(p)]
}

func (m *Map) Set(p Point, t Tile) {
	m.Tiles[m.index(p)] = t
}

// Adjacent reports whether a and b are orthogonally adjacent (Manhattan
// distance exactly 1).
func Adjacent(a, b Point) bool {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}

// ManhattanDistance returns |ax-bx|+|ay-by|.
func ManhattanDistance(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Neighbors returns the in-bounds orthogonal neighbors of p.
func (m *Map) Neighbors(p Point) []Point {
	candidates := [4]Point{
		{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1},
	}
	out := make([]Point, 0, 4)
	for _, c := range candidates {
		if m.InBounds(c) {
			out = append(out, c)
		}
	}
	return out
}

// Generals returns the coordinates of every GeneralTile on the map.
func (m *Map) Generals() []Point {
	var out []Point
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			p := Point{x, y}
			if m.At(p).Kind == GeneralTile {
				out = append(out, p)
			}
		}
	}
	return out
}

// ActiveTeams returns the set of team ids that still own at least one tile.
func (m *Map) ActiveTeams() map[string]bool {
	teams := make(map[string]bool)
	for _, t := range m.Tiles {
		if t.Owned() {
			teams[t.Owner] = true
		}
	}
	return teams
}

// TotalPower sums the counts of every tile owned by team across the whole
// map — the server-side truth used for roster power, independent of any
// viewer's fog.
func (m *Map) TotalPower(team string) int {
	total := 0
	for _, t := range m.Tiles {
		if t.Owner == team {
			total += t.Count
		}
	}
	return total
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }
