package gamemap

import "testing"

func viewIndex(tiles []VisibleTile, size int, p Point) VisibleTile {
	return tiles[p.Y*size+p.X]
}

func TestViewOwnerVision(t *testing.T) {
	m := NewMap(20)
	m.Set(Point{2, 2}, NewGeneral(5, "team_0"))
	m.Set(Point{2, 3}, NewTerritory(4, "team_0"))
	m.Set(Point{10, 10}, NewTerritory(9, "team_1"))

	view := m.View("team_0", false)
	if len(view) != 20*20 {
		t.Fatalf("view has %d tiles, want %d", len(view), 20*20)
	}

	// The 3x3 boxes around (2,2) and (2,3) have vision.
	for y := 1; y <= 4; y++ {
		for x := 1; x <= 3; x++ {
			if !viewIndex(view, 20, Point{x, y}).HasVision {
				t.Errorf("(%d,%d) should have vision", x, y)
			}
		}
	}

	// The enemy territory is out of range and collapses to unknown.
	enemy := viewIndex(view, 20, Point{10, 10})
	if enemy.Kind != UnknownKind || enemy.Count != 0 || enemy.Owner != "" || enemy.HasVision {
		t.Errorf("fogged enemy tile = %+v, want opaque unknown", enemy)
	}
}

func TestViewLandmarksPositionVisible(t *testing.T) {
	m := NewMap(20)
	m.Set(Point{2, 2}, NewTerritory(5, "team_0"))
	m.Set(Point{15, 15}, NewMountain())
	m.Set(Point{16, 15}, NewCity(42, "team_1", LargeCity))
	m.Set(Point{17, 15}, NewVoid())

	view := m.View("team_0", false)

	mountain := viewIndex(view, 20, Point{15, 15})
	if mountain.Kind != Mountain || mountain.HasVision {
		t.Errorf("fogged mountain = %+v, want position-visible Mountain", mountain)
	}

	// The city's existence and kind leak, but count and owner must not.
	city := viewIndex(view, 20, Point{16, 15})
	if city.Kind != City || city.CityKind != LargeCity || city.HasVision {
		t.Errorf("fogged city = %+v, want position-visible City", city)
	}
	if city.Count != 0 || city.Owner != "" {
		t.Errorf("fogged city leaks state: %+v", city)
	}

	void := viewIndex(view, 20, Point{17, 15})
	if void.Kind != Void {
		t.Errorf("void = %+v, want Void always transmitted", void)
	}
}

func TestViewCityWithVision(t *testing.T) {
	m := NewMap(20)
	m.Set(Point{2, 2}, NewTerritory(5, "team_0"))
	m.Set(Point{3, 2}, NewCity(42, "team_1", SmallCity))

	view := m.View("team_0", false)
	city := viewIndex(view, 20, Point{3, 2})
	if !city.HasVision || city.Count != 42 || city.Owner != "team_1" {
		t.Errorf("adjacent city = %+v, want fully revealed", city)
	}
}

func TestViewSpectatorSeesAll(t *testing.T) {
	m := NewMap(20)
	m.Set(Point{2, 2}, NewGeneral(5, "team_0"))
	m.Set(Point{10, 10}, NewTerritory(9, "team_1"))

	view := m.View("", true)
	for _, tile := range view {
		if !tile.HasVision {
			t.Fatalf("spectator lacks vision at (%d,%d)", tile.X, tile.Y)
		}
	}
	if got := viewIndex(view, 20, Point{10, 10}); got.Count != 9 || got.Owner != "team_1" {
		t.Errorf("spectator tile = %+v, want full state", got)
	}
}
