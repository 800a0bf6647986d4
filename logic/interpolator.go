package logic

import "sort"

// Interpolation tuning. The per-tick factor is the fraction of remaining
// distance covered each tick; SnapEpsilon is the radius inside which the
// rendered position locks to target.
const (
	LerpFactor  = 0.25
	SnapEpsilon = 0.5
)

// Interpolator owns the remote-entity table and smooths sparse position
// reports into per-tick rendered positions.
type Interpolator struct {
	entities map[string]*RemoteEntity
}

func NewInterpolator() *Interpolator {
	return &Interpolator{entities: make(map[string]*RemoteEntity)}
}

// Get returns the tracked entity for id, or nil.
func (it *Interpolator) Get(id string) *RemoteEntity {
	return it.entities[id]
}

// Len returns the number of tracked entities.
func (it *Interpolator) Len() int { return len(it.entities) }

// ApplyPosition records a sparse position report. Unseen ids are inserted
// with current == target so they do not glide in from the origin; known ids
// only retarget.
func (it *Interpolator) ApplyPosition(id, name string, pos, facing Vector2) *RemoteEntity {
	e, ok := it.entities[id]
	if !ok {
		e = &RemoteEntity{ID: id, Name: name, Pos: pos, Target: pos, Facing: facing}
		it.entities[id] = e
		return e
	}
	e.Target = pos
	if facing.X != 0 || facing.Y != 0 {
		e.Facing = facing
	}
	if name != "" {
		e.Name = name
	}
	return e
}

// ForceSet bypasses interpolation: teleport, respawn, and trap-trigger
// corrections set current and target atomically.
func (it *Interpolator) ForceSet(id string, pos Vector2) *RemoteEntity {
	e, ok := it.entities[id]
	if !ok {
		e = &RemoteEntity{ID: id, Pos: pos, Target: pos}
		it.entities[id] = e
		return e
	}
	e.Pos = pos
	e.Target = pos
	return e
}

// Remove drops an entity on an explicit departure event. Nothing else ever
// removes entities; a briefly idle player must not pop out.
func (it *Interpolator) Remove(id string) {
	delete(it.entities, id)
}

// Tick moves every rendered position a fixed fraction of the remaining
// distance toward its target, snapping once within epsilon. Exponential
// smoothing absorbs irregular network intervals.
func (it *Interpolator) Tick() {
	for _, e := range it.entities {
		dx := e.Target.X - e.Pos.X
		dy := e.Target.Y - e.Pos.Y
		if dx*dx+dy*dy <= SnapEpsilon*SnapEpsilon {
			e.Pos = e.Target
			continue
		}
		e.Pos.X += dx * LerpFactor
		e.Pos.Y += dy * LerpFactor
	}
}

// Each visits every tracked entity.
func (it *Interpolator) Each(fn func(*RemoteEntity)) {
	for _, e := range it.entities {
		fn(e)
	}
}

// Snapshot returns the entities in stable id order for frame assembly.
func (it *Interpolator) Snapshot() []RemoteEntity {
	out := make([]RemoteEntity, 0, len(it.entities))
	for _, e := range it.entities {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
