package logic

import "testing"

func TestGenerateDeterministic(t *testing.T) {
	a := Generate("ROOM42", 48, 48)
	b := Generate("ROOM42", 48, 48)

	if len(a.Tiles) != len(b.Tiles) {
		t.Fatalf("height mismatch: %d vs %d", len(a.Tiles), len(b.Tiles))
	}
	for row := range a.Tiles {
		for col := range a.Tiles[row] {
			if a.Tiles[row][col] != b.Tiles[row][col] {
				t.Fatalf("tile (%d,%d) differs: %d vs %d", row, col, a.Tiles[row][col], b.Tiles[row][col])
			}
		}
	}
	if len(a.Portals) != len(b.Portals) {
		t.Fatalf("portal count differs: %d vs %d", len(a.Portals), len(b.Portals))
	}
	for i := range a.Portals {
		if a.Portals[i] != b.Portals[i] {
			t.Fatalf("portal %d differs: %v vs %v", i, a.Portals[i], b.Portals[i])
		}
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	a := Generate("ROOM42", 48, 48)
	b := Generate("ROOM43", 48, 48)

	same := true
	for row := range a.Tiles {
		for col := range a.Tiles[row] {
			if a.Tiles[row][col] != b.Tiles[row][col] {
				same = false
			}
		}
	}
	if same {
		t.Fatalf("different seeds produced identical grids")
	}
}

func TestGenerateBordersLethal(t *testing.T) {
	g := Generate("edge", 32, 24)
	for col := 0; col < g.Width; col++ {
		if g.Tiles[0][col] != TileLava || g.Tiles[g.Height-1][col] != TileLava {
			t.Fatalf("border row not lethal at col %d", col)
		}
	}
	for row := 0; row < g.Height; row++ {
		if g.Tiles[row][0] != TileLava || g.Tiles[row][g.Width-1] != TileLava {
			t.Fatalf("border col not lethal at row %d", row)
		}
	}
}

func TestGenerateRoadLattice(t *testing.T) {
	g := Generate("lattice", 48, 48)
	for row := 1; row < g.Height-1; row++ {
		for col := 1; col < g.Width-1; col++ {
			onLattice := row%RoadSpacing == 0 || col%RoadSpacing == 0
			if onLattice && g.Tiles[row][col] != TileRoad {
				t.Fatalf("lattice cell (%d,%d) is %d, want road", row, col, g.Tiles[row][col])
			}
			if !onLattice && g.Tiles[row][col] == TileRoad {
				t.Fatalf("off-lattice cell (%d,%d) is road", row, col)
			}
		}
	}
}

func TestGenerateWaterClusters(t *testing.T) {
	// The cluster paint reaches one row beyond the generation cursor; every
	// seed here must build cleanly and at least one must produce water.
	found := false
	for _, seed := range []string{"ROOM42", "ROOM43", "a", "b", "water"} {
		g := Generate(seed, 48, 48)
		for row := 1; row < g.Height-1; row++ {
			for col := 1; col < g.Width-1; col++ {
				if g.Tiles[row][col] == TileWater {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("no water cluster across seeds")
	}
}

func TestGeneratePortalsOnRoad(t *testing.T) {
	g := Generate("portals", 48, 48)
	if len(g.Portals) != PortalAnchorCount {
		t.Fatalf("got %d portals, want %d", len(g.Portals), PortalAnchorCount)
	}
	for _, p := range g.Portals {
		if g.Tiles[p.Row][p.Col] != TileRoad {
			t.Fatalf("portal at (%d,%d) sits on tile %d, want road", p.Row, p.Col, g.Tiles[p.Row][p.Col])
		}
	}
}

func TestSnapToRoad(t *testing.T) {
	g := Generate("snap", 48, 48)

	cases := []struct {
		in   GridPos
		want GridPos
	}{
		{GridPos{Row: 5, Col: 6}, GridPos{Row: 4, Col: 8}},
		{GridPos{Row: 0, Col: 0}, GridPos{Row: 4, Col: 4}},
		{GridPos{Row: 47, Col: 47}, GridPos{Row: 40, Col: 40}},
		{GridPos{Row: 8, Col: 8}, GridPos{Row: 8, Col: 8}},
	}
	for _, tc := range cases {
		got := g.SnapToRoad(tc.in)
		if got != tc.want {
			t.Fatalf("SnapToRoad(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSnapToRoadAlwaysLandsOnRoad(t *testing.T) {
	g := Generate("bounds", 48, 48)
	for row := -2; row < 52; row += 3 {
		for col := -2; col < 52; col += 3 {
			got := g.SnapToRoad(GridPos{Row: row, Col: col})
			if g.At(got.Row, got.Col) != TileRoad {
				t.Fatalf("SnapToRoad(%d,%d) = %v lands on tile %d", row, col, got, g.At(got.Row, got.Col))
			}
		}
	}
}

func TestHashSeedStable(t *testing.T) {
	if HashSeed("ROOM42") != HashSeed("ROOM42") {
		t.Fatalf("hash not stable")
	}
	// zero would stall the xorshift stream
	if HashSeed("") == 0 {
		t.Fatalf("empty seed hashed to zero")
	}
	if HashSeed("a") == HashSeed("b") {
		t.Fatalf("trivial hash collision")
	}
}
