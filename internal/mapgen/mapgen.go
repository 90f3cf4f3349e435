// Package mapgen implements the random map generator: size selection by
// player count, rejection-sampled general placement with minimum pairwise
// distance and border margin, terrain sprinkling, BFS connectivity
// validation, and a deterministic fallback map.
package mapgen

import (
	"math/rand"

	"github.com/generals-server/core/internal/gamemap"
)

const (
	minGeneralDistance = 15
	borderMargin       = 3
	maxAttemptsPerGen   = 1000
	maxMapAttempts      = 100
)

// baseSideFor returns the unmodified base side length for a player
// count. A fixed table; uniform noise is added on top.
func baseSideFor(playerCount int) int {
	switch {
	case playerCount <= 1:
		return 20
	case playerCount == 2:
		return 25
	case playerCount <= 4:
		return 30
	case playerCount <= 6:
		return 35
	case playerCount <= 8:
		return 40
	case playerCount <= 12:
		return 45
	default:
		return 50
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Generate produces a map sized for playerCount and seeds one general per
// team in teams, with connectivity guaranteed between every pair. seed
// should be the current wall-clock seconds in production and a fixed value
// in tests for determinism.
func Generate(playerCount int, teams []string, seed int64) *gamemap.Map {
	rng := rand.New(rand.NewSource(seed))

	for attempt := 0; attempt < maxMapAttempts; attempt++ {
		side := baseSideFor(playerCount) + rng.Intn(11) - 5
		side = clamp(side, 20, 60)

		m := gamemap.NewMap(side)
		generals, ok := placeGenerals(m, rng, len(teams))
		if !ok {
			continue
		}
		sprinkleTerrain(m, rng, 0.10, 0.20, 0.08, 0.15)

		if !connected(m, generals) {
			continue
		}

		assignGenerals(m, generals, teams)
		return m
	}

	return fallbackMap(teams)
}

// placeGenerals rejection-samples count general locations at least
// minGeneralDistance apart and borderMargin cells from the edge. Generals
// are seeded with count=2 and an empty owner placeholder; Generate assigns
// the real team ids afterward.
func placeGenerals(m *gamemap.Map, rng *rand.Rand, count int) ([]gamemap.Point, bool) {
	var placed []gamemap.Point
	for i := 0; i < count; i++ {
		ok := false
		for attempt := 0; attempt < maxAttemptsPerGen; attempt++ {
			x := borderMargin + rng.Intn(m.Size-2*borderMargin)
			y := borderMargin + rng.Intn(m.Size-2*borderMargin)
			p := gamemap.Point{X: x, Y: y}

			if m.At(p).Kind != gamemap.Wilderness {
				continue
			}
			tooClose := false
			for _, other := range placed {
				if gamemap.ManhattanDistance(p, other) < minGeneralDistance {
					tooClose = true
					break
				}
			}
			if tooClose {
				continue
			}

			m.Set(p, gamemap.NewGeneral(2, ""))
			placed = append(placed, p)
			ok = true
			break
		}
		if !ok {
			return nil, false
		}
	}
	return placed, true
}

// sprinkleTerrain scatters mountains and cities at a density uniformly
// sampled from the given ranges, only overwriting Wilderness tiles.
func sprinkleTerrain(m *gamemap.Map, rng *rand.Rand, mountainLo, mountainHi, cityLo, cityHi float64) {
	total := m.Size * m.Size

	mountainDensity := mountainLo + rng.Float64()*(mountainHi-mountainLo)
	mountains := int(float64(total) * mountainDensity)
	for i := 0; i < mountains; i++ {
		p := gamemap.Point{X: rng.Intn(m.Size), Y: rng.Intn(m.Size)}
		if m.At(p).Kind == gamemap.Wilderness {
			m.Set(p, gamemap.NewMountain())
		}
	}

	cityDensity := cityLo + rng.Float64()*(cityHi-cityLo)
	cities := int(float64(total) * cityDensity)
	for i := 0; i < cities; i++ {
		p := gamemap.Point{X: rng.Intn(m.Size), Y: rng.Intn(m.Size)}
		if m.At(p).Kind != gamemap.Wilderness {
			continue
		}
		m.Set(p, randomCity(rng))
	}
}

// randomCity picks a city kind and initial count: 20% LargeCity(75-105),
// 30% SmallCity(35-55), 50% Settlement(15-25).
func randomCity(rng *rand.Rand) gamemap.Tile {
	roll := rng.Float64()
	switch {
	case roll < 0.20:
		return gamemap.NewCity(75+rng.Intn(31), "", gamemap.LargeCity)
	case roll < 0.50:
		return gamemap.NewCity(35+rng.Intn(21), "", gamemap.SmallCity)
	default:
		return gamemap.NewCity(15+rng.Intn(11), "", gamemap.Settlement)
	}
}

// connected validates that all generals are mutually reachable via
// passable tiles, by BFS from the first general.
func connected(m *gamemap.Map, generals []gamemap.Point) bool {
	if len(generals) == 0 {
		return true
	}
	seen := make(map[gamemap.Point]bool, m.Size*m.Size)
	queue := []gamemap.Point{generals[0]}
	seen[generals[0]] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range m.Neighbors(cur) {
			if seen[n] || !m.At(n).Passable() {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}

	for _, g := range generals {
		if !seen[g] {
			return false
		}
	}
	return true
}

// assignGenerals replaces each placeholder general's owner with the i-th
// team id.
func assignGenerals(m *gamemap.Map, generals []gamemap.Point, teams []string) {
	for i, p := range generals {
		if i >= len(teams) {
			break
		}
		t := m.At(p)
		t.Owner = teams[i]
		m.Set(p, t)
	}
}

// fallbackMap is the last resort on exhaustion of attempts: divide the
// board into four quadrants, place each team's general on a cycling
// quadrant anchor with a small random offset, and sprinkle very thin
// terrain, which stays connected at these densities.
func fallbackMap(teams []string) *gamemap.Map {
	side := 40
	m := gamemap.NewMap(side)
	rng := rand.New(rand.NewSource(1))

	half := side / 2
	quadrants := [4]gamemap.Point{
		{X: half / 2, Y: half / 2},
		{X: half + half/2, Y: half / 2},
		{X: half / 2, Y: half + half/2},
		{X: half + half/2, Y: half + half/2},
	}

	// Every team gets a general, cycling through the quadrants when there
	// are more than four teams.
	for i, team := range teams {
		base := quadrants[i%4]
		p := base
		for attempt := 0; attempt < 20; attempt++ {
			candidate := gamemap.Point{
				X: clamp(base.X+rng.Intn(5)-2, borderMargin, side-1-borderMargin),
				Y: clamp(base.Y+rng.Intn(5)-2, borderMargin, side-1-borderMargin),
			}
			if m.At(candidate).Kind == gamemap.Wilderness {
				p = candidate
				break
			}
		}
		if m.At(p).Kind != gamemap.Wilderness {
			// Offsets collided with an earlier general; probe the row.
			for x := borderMargin; x < side-borderMargin; x++ {
				q := gamemap.Point{X: x, Y: p.Y}
				if m.At(q).Kind == gamemap.Wilderness {
					p = q
					break
				}
			}
		}
		m.Set(p, gamemap.NewGeneral(2, team))
	}

	sprinkleTerrain(m, rng, 0.03, 0.05, 0.04, 0.06)
	return m
}
