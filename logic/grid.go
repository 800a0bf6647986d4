package logic

import "math"

// Mapper converts between tile coordinates and world pixel coordinates.
// Servers speak row/col; position broadcasts carry pixels plus the derived
// cell, so both directions must be exact inverses for grid-aligned inputs.
type Mapper struct {
	TileSize float64
}

// ToPixel maps a cell to its tile-center pixel position.
func (m Mapper) ToPixel(pos GridPos) Vector2 {
	return Vector2{
		X: float64(pos.Col)*m.TileSize + m.TileSize/2,
		Y: float64(pos.Row)*m.TileSize + m.TileSize/2,
	}
}

// ToGrid maps a pixel position to its containing cell (floor division).
func (m Mapper) ToGrid(p Vector2) GridPos {
	return GridPos{
		Row: int(math.Floor(p.Y / m.TileSize)),
		Col: int(math.Floor(p.X / m.TileSize)),
	}
}

// Distance between two pixel positions.
func Distance(a, b Vector2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Normalize scales v to unit length; the zero vector stays zero.
func Normalize(v Vector2) Vector2 {
	len2 := v.X*v.X + v.Y*v.Y
	if len2 == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(len2)
	return Vector2{X: v.X * inv, Y: v.Y * inv}
}
