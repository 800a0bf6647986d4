package logic

import "time"

// PositionReport is the throttled broadcast payload: raw pixels plus the
// derived cell, redundantly, for wire compatibility.
type PositionReport struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	DirX      float64 `json:"dir_x"`
	DirY      float64 `json:"dir_y"`
	Velocity  float64 `json:"velocity"`
	Timestamp int64   `json:"timestamp"`
}

// Predictor owns the controlled entity. It is authoritative for this client
// between server corrections; corrections arrive only via SnapTo.
type Predictor struct {
	Grid   *WorldGrid
	Map    Mapper
	Cfg    *MatchConfig
	Entity LocalEntity

	huntStart time.Time
}

func NewPredictor(grid *WorldGrid, m Mapper, cfg *MatchConfig, spawn Vector2) *Predictor {
	p := &Predictor{Grid: grid, Map: m, Cfg: cfg}
	p.Entity.Pos = spawn
	p.Entity.Facing = Vector2{X: 1, Y: 0}
	p.Entity.Stamina = 1
	return p
}

// StartHunt records the phase start for the elapsed-time speed modifier.
func (p *Predictor) StartHunt(now time.Time) {
	p.huntStart = now
}

// Speed derives the current speed from role and elapsed hunt time. The two
// modifiers are independent and multiplicative.
func (p *Predictor) Speed(now time.Time, isChaser bool) float64 {
	speed := p.Cfg.Gameplay.BaseMoveSpeed
	if isChaser {
		speed *= p.Cfg.Gameplay.ChaserSpeedMult
	}
	if !p.huntStart.IsZero() && now.Sub(p.huntStart).Seconds() > p.Cfg.Gameplay.LateAfterSec {
		speed *= p.Cfg.Gameplay.LateSpeedMult
	}
	if p.Cfg.Rules.StaminaEnabled && p.Entity.Stamina <= 0 {
		speed *= 0.5
	}
	return speed
}

// Tick advances the entity one simulation step. Movement is fully
// suppressed while frozen. Returns true when the entity crossed into a
// lethal tile and the death has not been reported yet; the caller must send
// the report exactly once and the flag stays set until ClearHazardReport.
func (p *Predictor) Tick(intent Vector2, dt float64, now time.Time, isChaser, frozen bool) bool {
	if frozen {
		p.Entity.Vel = Vector2{}
		return false
	}

	dir := Normalize(intent)
	if dir.X != 0 || dir.Y != 0 {
		p.Entity.Facing = dir
	}
	p.tickStamina(dir, dt)

	speed := p.Speed(now, isChaser)
	p.Entity.Vel = Vector2{X: dir.X * speed, Y: dir.Y * speed}

	// Slide along walls: resolve X first, then Y, so an entity pushed into
	// a corner still moves along the open axis.
	pos := p.Entity.Pos
	lethal := p.Cfg.Rules.HazardLethal

	nextX := Vector2{X: pos.X + p.Entity.Vel.X*dt, Y: pos.Y}
	if cell := p.Map.ToGrid(nextX); !p.Grid.IsSolid(cell.Row, cell.Col, lethal) {
		pos.X = nextX.X
	}
	nextY := Vector2{X: pos.X, Y: pos.Y + p.Entity.Vel.Y*dt}
	if cell := p.Map.ToGrid(nextY); !p.Grid.IsSolid(cell.Row, cell.Col, lethal) {
		pos.Y = nextY.Y
	}

	if pos != p.Entity.Pos {
		p.Entity.pushTrail(p.Entity.Pos)
		p.Entity.Pos = pos
	}

	if lethal {
		cell := p.Map.ToGrid(p.Entity.Pos)
		if p.Grid.IsLethal(cell.Row, cell.Col) && !p.Entity.hazardReported {
			p.Entity.hazardReported = true
			return true
		}
	}
	return false
}

func (p *Predictor) tickStamina(dir Vector2, dt float64) {
	if !p.Cfg.Rules.StaminaEnabled {
		return
	}
	if dir.X != 0 && dir.Y != 0 {
		// Diagonal sprinting drains; anything less recovers.
		p.Entity.Stamina = clampFloat(p.Entity.Stamina-0.4*dt, 0, 1)
	} else {
		p.Entity.Stamina = clampFloat(p.Entity.Stamina+0.25*dt, 0, 1)
	}
}

// ClearHazardReport re-arms the one-shot death report. Called on respawn.
func (p *Predictor) ClearHazardReport() {
	p.Entity.hazardReported = false
}

// SnapTo applies a server position correction atomically: position replaced,
// trail cleared, velocity zeroed. Never blended.
func (p *Predictor) SnapTo(pos Vector2) {
	p.Entity.Pos = pos
	p.Entity.Vel = Vector2{}
	p.Entity.clearTrail()
}

// MaybeBroadcast returns a position report when the throttle window has
// elapsed. A timestamp gate, not a timer: bursts of input changes collapse
// to one report per interval.
func (p *Predictor) MaybeBroadcast(now time.Time) (PositionReport, bool) {
	interval := time.Duration(p.Cfg.Net.BroadcastRateMs) * time.Millisecond
	if !p.Entity.lastBroadcast.IsZero() && now.Sub(p.Entity.lastBroadcast) < interval {
		return PositionReport{}, false
	}
	p.Entity.lastBroadcast = now

	cell := p.Map.ToGrid(p.Entity.Pos)
	speed := Distance(Vector2{}, p.Entity.Vel)
	return PositionReport{
		X:         p.Entity.Pos.X,
		Y:         p.Entity.Pos.Y,
		Row:       cell.Row,
		Col:       cell.Col,
		DirX:      p.Entity.Facing.X,
		DirY:      p.Entity.Facing.Y,
		Velocity:  speed,
		Timestamp: now.UnixMilli(),
	}, true
}
