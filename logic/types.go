package logic

import "time"

// Vector2 represents a 2D position in world pixels
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridPos is a tile coordinate
type GridPos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Role enum
const (
	RoleRunner = "RUNNER"
	RoleChaser = "CHASER"
)

// TrailSize bounds the local entity's recent-position ring buffer.
const TrailSize = 16

// LocalEntity is the controlled entity. Owned exclusively by the predictor;
// network data only replaces it wholesale via SnapTo (teleport/respawn).
type LocalEntity struct {
	Pos    Vector2 `json:"pos"`
	Vel    Vector2 `json:"-"`
	Facing Vector2 `json:"facing"`

	trail     [TrailSize]Vector2
	trailHead int
	trailLen  int

	Stamina float64 `json:"stamina"`

	hazardReported bool
	lastBroadcast  time.Time
}

// Trail returns the recent positions, oldest first.
func (e *LocalEntity) Trail() []Vector2 {
	out := make([]Vector2, 0, e.trailLen)
	for i := 0; i < e.trailLen; i++ {
		idx := (e.trailHead - e.trailLen + i + TrailSize) % TrailSize
		out = append(out, e.trail[idx])
	}
	return out
}

func (e *LocalEntity) pushTrail(p Vector2) {
	e.trail[e.trailHead] = p
	e.trailHead = (e.trailHead + 1) % TrailSize
	if e.trailLen < TrailSize {
		e.trailLen++
	}
}

func (e *LocalEntity) clearTrail() {
	e.trailHead = 0
	e.trailLen = 0
}

// RemoteEntity mirrors another player. Created on first sighting, removed
// only on an explicit departure event, never garbage-collected by staleness.
type RemoteEntity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Pos      Vector2 `json:"pos"`
	Target   Vector2 `json:"-"`
	Facing   Vector2 `json:"facing"`
	IsChaser bool    `json:"is_chaser"`
	Frozen   bool    `json:"frozen"`

	Invulnerable bool      `json:"invulnerable"`
	InvulnUntil  time.Time `json:"-"`
}

// CollectibleKind enum
const (
	KindCurrency     = "CURRENCY"
	KindTrapPickup   = "TRAP_PICKUP"
	KindDeployedTrap = "TRAP"
	KindPortal       = "PORTAL"
)

// Collectible is an ephemeral world object. Once Collected is set the item
// is filtered from the active set on the next read and never resurrected.
type Collectible struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Cell      GridPos `json:"cell"`
	Value     int     `json:"value"`
	OwnerID   string  `json:"owner_id,omitempty"`
	Collected bool    `json:"-"`
}

// RoundContext is replaced wholesale on every round-start event.
type RoundContext struct {
	Round       int             `json:"round"`
	TotalRounds int             `json:"total_rounds"`
	ChaserIDs   map[string]bool `json:"-"`
	EndsAt      time.Time       `json:"-"`
}

// IsChaser reports whether id currently holds the chaser role.
func (rc *RoundContext) IsChaser(id string) bool {
	if rc == nil || rc.ChaserIDs == nil {
		return false
	}
	return rc.ChaserIDs[id]
}

// Cue kinds for one-shot visual events drained by the renderer.
const (
	CueTeleport     = "TELEPORT"
	CueTrapTrigger  = "TRAP_TRIGGER"
	CueRoleAnnounce = "ROLE_ANNOUNCE"
	CueRoleHide     = "ROLE_HIDE"
	CueScreenFlash  = "SCREEN_FLASH"
	CueRespawn      = "RESPAWN"
)

// Cue is a one-shot visual event for the external renderer.
type Cue struct {
	Kind string  `json:"kind"`
	Pos  Vector2 `json:"pos"`
	Text string  `json:"text,omitempty"`
}

// Frame is what the tick loop hands to the external renderer.
type Frame struct {
	Tick         uint64         `json:"tick"`
	Phase        Phase          `json:"phase"`
	Frozen       bool           `json:"frozen"`
	Spectating   bool           `json:"spectating"`
	Invulnerable bool           `json:"invulnerable"`
	Announcement bool           `json:"announcement"`
	Round        RoundContext   `json:"round"`
	Local        LocalEntity    `json:"local"`
	Remotes      []RemoteEntity `json:"remotes"`
	Collectibles []Collectible  `json:"collectibles"`
	TrapCount    int            `json:"trap_count"`
	Scores       map[string]int `json:"scores"`
	Cues         []Cue          `json:"cues"`
	Connected    bool           `json:"connected"`
}
