package logic

import (
	"fmt"
	"sync/atomic"
	"time"
)

var localUIDCounter int64

// NewLocalUID mints an id for objects created optimistically before the
// server has named them.
func NewLocalUID() string {
	val := atomic.AddInt64(&localUIDCounter, 1)
	return fmt.Sprintf("loc_%d_%d", time.Now().UnixNano(), val)
}

// SynthesizeID derives a stable id from a grid cell for legacy spawn events
// that omit one.
func SynthesizeID(kind string, cell GridPos) string {
	return fmt.Sprintf("%s_%d_%d", kind, cell.Row, cell.Col)
}

// CollectibleStore owns the ephemeral world-object sets and reconciles
// optimistic local mutations against server confirmations. All access is on
// the session loop.
type CollectibleStore struct {
	items []*Collectible
	// tombstones: ids flagged collected/triggered are never resurrected by a
	// later duplicate or spawn event
	collected map[string]bool

	trapInventory  int
	pendingDeploys int

	scores map[string]int
}

func NewCollectibleStore() *CollectibleStore {
	return &CollectibleStore{
		collected: make(map[string]bool),
		scores:    make(map[string]int),
	}
}

// TrapInventory returns the local trap count.
func (s *CollectibleStore) TrapInventory() int { return s.trapInventory }

// SetTrapInventory overwrites the trap count (snapshot replay).
func (s *CollectibleStore) SetTrapInventory(n int) {
	if n < 0 {
		n = 0
	}
	s.trapInventory = n
	s.pendingDeploys = 0
}

// Scores returns the shared score table mirror.
func (s *CollectibleStore) Scores() map[string]int { return s.scores }

// MergeScores folds a server scoreboard into the mirror.
func (s *CollectibleStore) MergeScores(board map[string]int) {
	for id, v := range board {
		s.scores[id] = v
	}
}

// Spawn appends items to the active set. Items with no id get one
// synthesized from their cell. Tombstoned ids are dropped, and an id already
// present is not duplicated.
func (s *CollectibleStore) Spawn(items ...Collectible) {
	for _, item := range items {
		if item.ID == "" {
			item.ID = SynthesizeID(item.Kind, item.Cell)
		}
		if s.collected[item.ID] || s.find(item.ID) != nil {
			continue
		}
		c := item
		s.items = append(s.items, &c)
	}
}

func (s *CollectibleStore) find(id string) *Collectible {
	for _, c := range s.items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Active returns the renderable items of a kind; pass "" for all. Items
// flagged collected are filtered even before the server confirms.
func (s *CollectibleStore) Active(kind string) []Collectible {
	out := make([]Collectible, 0, len(s.items))
	for _, c := range s.items {
		if c.Collected {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// OptimisticCollect flags every un-collected item of the given kind within
// radius of pos and returns them so the caller can send collect requests.
// Eligibility is the caller's problem: gate on role before calling so no
// round trip is wasted.
func (s *CollectibleStore) OptimisticCollect(kind string, pos Vector2, m Mapper, radius float64) []Collectible {
	var hits []Collectible
	for _, c := range s.items {
		if c.Collected || c.Kind != kind {
			continue
		}
		if Distance(pos, m.ToPixel(c.Cell)) > radius {
			continue
		}
		c.Collected = true
		s.collected[c.ID] = true
		hits = append(hits, *c)
	}
	return hits
}

// ConfirmCollected reconciles a server confirmation with the local set. The
// match key degrades gracefully: id+cell, then id only, then cell only, to
// tolerate both modern and legacy event shapes. Returns the matched item and
// whether it had already been flagged by an optimistic local collect; a nil
// match means the client never saw the item (another player's pickup) and
// the caller still merges any accompanying scoreboard.
func (s *CollectibleStore) ConfirmCollected(kind, id string, cell GridPos, hasCell bool) (*Collectible, bool) {
	match := s.match(kind, id, cell, hasCell)
	if match == nil {
		return nil, false
	}
	wasLocal := match.Collected
	match.Collected = true
	s.collected[match.ID] = true
	s.compact()
	return match, wasLocal
}

func (s *CollectibleStore) match(kind, id string, cell GridPos, hasCell bool) *Collectible {
	if id != "" && hasCell {
		for _, c := range s.items {
			if c.Kind == kind && c.ID == id && c.Cell == cell {
				return c
			}
		}
	}
	if id != "" {
		for _, c := range s.items {
			if c.Kind == kind && c.ID == id {
				return c
			}
		}
	}
	if hasCell {
		for _, c := range s.items {
			if c.Kind == kind && c.Cell == cell && !c.Collected {
				return c
			}
		}
	}
	return nil
}

// compact drops confirmed items from the backing slice.
func (s *CollectibleStore) compact() {
	kept := s.items[:0]
	for _, c := range s.items {
		if !c.Collected {
			kept = append(kept, c)
		}
	}
	s.items = kept
}

// CollectTrapPickup adds a trap to the local inventory after an optimistic
// trap-pickup collect.
func (s *CollectibleStore) CollectTrapPickup() {
	s.trapInventory++
}

// DeployTrap places a trap optimistically: inventory decrements now, and the
// server's own deploy echo must not decrement again. Returns the placed trap
// and false when inventory is empty.
func (s *CollectibleStore) DeployTrap(cell GridPos, ownerID string) (Collectible, bool) {
	if s.trapInventory <= 0 {
		return Collectible{}, false
	}
	s.trapInventory--
	s.pendingDeploys++
	trap := Collectible{ID: NewLocalUID(), Kind: KindDeployedTrap, Cell: cell, OwnerID: ownerID}
	s.items = append(s.items, &trap)
	return trap, true
}

// ApplyServerDeploy replays the server's deploy event. If it echoes one of
// our own optimistic deploys, the local placeholder adopts the server id and
// inventory is left alone; otherwise the trap is appended normally.
func (s *CollectibleStore) ApplyServerDeploy(id string, cell GridPos, ownerID, localID string) {
	if ownerID == localID && s.pendingDeploys > 0 {
		s.pendingDeploys--
		for _, c := range s.items {
			if c.Kind == KindDeployedTrap && c.Cell == cell && c.OwnerID == localID && !s.collected[c.ID] {
				if id != "" {
					c.ID = id
				}
				return
			}
		}
	}
	s.Spawn(Collectible{ID: id, Kind: KindDeployedTrap, Cell: cell, OwnerID: ownerID})
}

// TriggerTrap removes a deployed trap and reports its cell so the caller can
// surface the teleport-pair cue. Idempotent for duplicate trigger events.
func (s *CollectibleStore) TriggerTrap(id string, cell GridPos, hasCell bool) (GridPos, bool) {
	match := s.match(KindDeployedTrap, id, cell, hasCell)
	if match == nil {
		return GridPos{}, false
	}
	at := match.Cell
	match.Collected = true
	s.collected[match.ID] = true
	s.compact()
	return at, true
}

// Reset discards every set at match end.
func (s *CollectibleStore) Reset() {
	s.items = nil
	s.collected = make(map[string]bool)
	s.trapInventory = 0
	s.pendingDeploys = 0
	s.scores = make(map[string]int)
}
