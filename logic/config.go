package logic

import "math"

// MatchConfig mirrors the server's match-started map configuration. The
// client regenerates the grid locally from RoomCode + this config; tile data
// never crosses the wire.
type MatchConfig struct {
	Map struct {
		Width      int       `json:"width"`
		Height     int       `json:"height"`
		TileSize   float64   `json:"tile_size"`
		SpawnSlots []GridPos `json:"spawn_slots"`
	} `json:"map"`
	Gameplay struct {
		BaseMoveSpeed   float64 `json:"base_move_speed"`
		ChaserSpeedMult float64 `json:"chaser_speed_mult"`
		LateSpeedMult   float64 `json:"late_speed_mult"`
		LateAfterSec    float64 `json:"late_after_sec"`
		PickupRadius    float64 `json:"pickup_radius"`
		InvulnSec       float64 `json:"invuln_sec"`
		AnnounceSec     float64 `json:"announce_sec"`
		QuizRetrySec    float64 `json:"quiz_retry_sec"`
	} `json:"gameplay"`
	Rules MatchRules `json:"rules"`

	Net struct {
		TickRateMs      int `json:"tick_rate_ms"`
		BroadcastRateMs int `json:"broadcast_rate_ms"`
	} `json:"net"`
}

// MatchRules are the capability flags that collapse the engine variants into
// one code path.
type MatchRules struct {
	HazardLethal    bool `json:"hazard_lethal"`
	InvulnOnRecover bool `json:"invuln_on_recover"`
	StaminaEnabled  bool `json:"stamina_enabled"`
}

// DefaultMatchConfig returns the tuning the server sends absent overrides.
func DefaultMatchConfig() MatchConfig {
	var cfg MatchConfig
	cfg.Map.Width = 48
	cfg.Map.Height = 48
	cfg.Map.TileSize = 32
	cfg.Gameplay.BaseMoveSpeed = 160
	cfg.Gameplay.ChaserSpeedMult = 1.15
	cfg.Gameplay.LateSpeedMult = 1.1
	cfg.Gameplay.LateAfterSec = 60
	cfg.Gameplay.PickupRadius = 24
	cfg.Gameplay.InvulnSec = 3
	cfg.Gameplay.AnnounceSec = 3
	cfg.Gameplay.QuizRetrySec = 2
	cfg.Rules = MatchRules{HazardLethal: true, InvulnOnRecover: true}
	cfg.Net.TickRateMs = 33
	cfg.Net.BroadcastRateMs = 100
	return cfg
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func clampFloat(v, minV, maxV float64) float64 {
	if math.IsNaN(v) {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// ClampMatchConfig enforces hard safety bounds on server-provided configs.
// It mutates cfg in-place so callers can accept wire values while
// guaranteeing sane limits.
func ClampMatchConfig(cfg *MatchConfig) {
	if cfg == nil {
		return
	}

	// --- map ---
	cfg.Map.Width = clampInt(cfg.Map.Width, 2*RoadSpacing+2, 256)
	cfg.Map.Height = clampInt(cfg.Map.Height, 2*RoadSpacing+2, 256)
	cfg.Map.TileSize = clampFloat(cfg.Map.TileSize, 4, 128)

	// --- gameplay ---
	cfg.Gameplay.BaseMoveSpeed = clampFloat(cfg.Gameplay.BaseMoveSpeed, 20, 600)
	cfg.Gameplay.ChaserSpeedMult = clampFloat(cfg.Gameplay.ChaserSpeedMult, 0.5, 2.0)
	cfg.Gameplay.LateSpeedMult = clampFloat(cfg.Gameplay.LateSpeedMult, 0.5, 2.0)
	cfg.Gameplay.LateAfterSec = clampFloat(cfg.Gameplay.LateAfterSec, 5, 600)
	cfg.Gameplay.PickupRadius = clampFloat(cfg.Gameplay.PickupRadius, 1, 4*cfg.Map.TileSize)
	cfg.Gameplay.InvulnSec = clampFloat(cfg.Gameplay.InvulnSec, 0, 30)
	cfg.Gameplay.AnnounceSec = clampFloat(cfg.Gameplay.AnnounceSec, 0.5, 10)
	cfg.Gameplay.QuizRetrySec = clampFloat(cfg.Gameplay.QuizRetrySec, 0.5, 10)

	// --- net ---
	cfg.Net.TickRateMs = clampInt(cfg.Net.TickRateMs, 10, 200)
	cfg.Net.BroadcastRateMs = clampInt(cfg.Net.BroadcastRateMs, 20, 1000)
}
