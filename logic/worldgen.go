package logic

// Tile kinds
const (
	TileRoad     = 0
	TileSidewalk = 1
	TileBuilding = 2
	TileWater    = 3
	TileLava     = 4
)

// RoadSpacing is the lattice pitch: every RoadSpacing-th row and column is road.
const RoadSpacing = 4

// PortalAnchorCount is the fixed number of teleport anchors per map.
const PortalAnchorCount = 4

// WorldGrid is the shared city map. Immutable after Generate; every client
// regenerates it locally from the room seed instead of receiving tile data.
type WorldGrid struct {
	Width   int
	Height  int
	Tiles   [][]int
	Portals []GridPos
}

// xorshift32 is the shared deterministic stream. Both the draw order and the
// per-tile draw count are part of the wire contract: every client must
// reproduce the grid bit-for-bit from the same room code.
type xorshift32 struct {
	state uint32
}

func (r *xorshift32) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *xorshift32) Float64() float64 {
	return float64(r.next()) / float64(1<<32)
}

func (r *xorshift32) Intn(n int) int {
	return int(r.next() % uint32(n))
}

// HashSeed folds the room code into a 32-bit seed (FNV-1a).
func HashSeed(seed string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(seed); i++ {
		h ^= uint32(seed[i])
		h *= 16777619
	}
	if h == 0 {
		// xorshift must not start at zero
		h = 0x9e3779b9
	}
	return h
}

// Generate builds the city grid for a room code. Pure: the same arguments
// always yield an identical grid.
func Generate(seed string, width, height int) *WorldGrid {
	rng := &xorshift32{state: HashSeed(seed)}

	// All rows exist before the decision loop: water clusters paint one row
	// ahead of the cursor.
	tiles := make([][]int, height)
	for row := range tiles {
		tiles[row] = make([]int, width)
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			// Borders are always lethal
			if row == 0 || row == height-1 || col == 0 || col == width-1 {
				tiles[row][col] = TileLava
				continue
			}
			if row%RoadSpacing == 0 || col%RoadSpacing == 0 {
				tiles[row][col] = TileRoad
				continue
			}
			// A water cluster may already have painted this cell; the roll
			// still happens so the draw count stays fixed.
			roll := rng.Float64()
			if tiles[row][col] == TileWater {
				continue
			}
			switch {
			case roll < 0.05:
				paintWaterCluster(tiles, width, height, row, col)
			case roll < 0.45:
				tiles[row][col] = TileBuilding
			case roll < 0.48:
				tiles[row][col] = TileLava
			default:
				tiles[row][col] = TileSidewalk
			}
		}
	}

	grid := &WorldGrid{Width: width, Height: height, Tiles: tiles}

	// Portal anchors: retry until the pick lands on road.
	for len(grid.Portals) < PortalAnchorCount {
		row := rng.Intn(height)
		col := rng.Intn(width)
		if tiles[row][col] == TileRoad {
			grid.Portals = append(grid.Portals, GridPos{Row: row, Col: col})
		}
	}
	return grid
}

// paintWaterCluster floods the 3x3 block around (row, col), skipping road
// and border cells so the lattice stays traversable.
func paintWaterCluster(tiles [][]int, width, height, row, col int) {
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if r <= 0 || r >= height-1 || c <= 0 || c >= width-1 {
				continue
			}
			if r%RoadSpacing == 0 || c%RoadSpacing == 0 {
				continue
			}
			tiles[r][c] = TileWater
		}
	}
}

// At returns the tile kind at a cell, treating out-of-bounds as lethal.
func (g *WorldGrid) At(row, col int) int {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return TileLava
	}
	return g.Tiles[row][col]
}

// IsSolid reports whether the cell blocks movement. Hazard tiles are solid
// only when the match rules make them non-lethal walls.
func (g *WorldGrid) IsSolid(row, col int, hazardLethal bool) bool {
	switch g.At(row, col) {
	case TileBuilding, TileWater:
		return true
	case TileLava:
		return !hazardLethal
	}
	return false
}

// IsLethal reports whether standing on the cell kills.
func (g *WorldGrid) IsLethal(row, col int) bool {
	return g.At(row, col) == TileLava
}

// SnapToRoad corrects an off-network cell to the nearest lattice
// intersection, clamped inside the border.
func (g *WorldGrid) SnapToRoad(pos GridPos) GridPos {
	return GridPos{
		Row: snapAxis(pos.Row, g.Height),
		Col: snapAxis(pos.Col, g.Width),
	}
}

func snapAxis(v, dim int) int {
	snapped := ((v + RoadSpacing/2) / RoadSpacing) * RoadSpacing
	// The result must stay a lattice multiple, so the upper clamp is the
	// largest road line within the safe interior band.
	last := ((dim - RoadSpacing - 1) / RoadSpacing) * RoadSpacing
	return clampInt(snapped, RoadSpacing, last)
}
