package logic

import "testing"

func TestCoordinateRoundTrip(t *testing.T) {
	m := Mapper{TileSize: 32}
	for row := 0; row < 64; row++ {
		for col := 0; col < 64; col++ {
			cell := GridPos{Row: row, Col: col}
			back := m.ToGrid(m.ToPixel(cell))
			if back != cell {
				t.Fatalf("round trip (%d,%d) came back as (%d,%d)", row, col, back.Row, back.Col)
			}
		}
	}
}

func TestToPixelIsTileCenter(t *testing.T) {
	m := Mapper{TileSize: 40}
	p := m.ToPixel(GridPos{Row: 2, Col: 3})
	if p.X != 3*40+20 || p.Y != 2*40+20 {
		t.Fatalf("ToPixel(2,3) = (%v,%v), want (140,100)", p.X, p.Y)
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(Vector2{X: 3, Y: 4})
	if d := Distance(Vector2{}, v); d < 0.999 || d > 1.001 {
		t.Fatalf("normalized length %v, want 1", d)
	}
	z := Normalize(Vector2{})
	if z.X != 0 || z.Y != 0 {
		t.Fatalf("zero vector changed: %v", z)
	}
}
