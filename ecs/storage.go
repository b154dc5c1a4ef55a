package ecs

// Registry tracks entity generations and free ids. Destroying an entity bumps
// the generation of its slot so stale handles stop resolving.
type Registry struct {
	gen   []generation
	free  []entityID
	alive int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create allocates a new entity, reusing freed slots first.
func (r *Registry) Create() Entity {
	if r == nil {
		return 0
	}
	var id entityID
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.gen = append(r.gen, 0)
		id = entityID(len(r.gen))
	}
	r.alive++
	return makeEntity(id, r.gen[id-1])
}

// Destroy marks an entity as dead. It returns false for stale handles.
func (r *Registry) Destroy(e Entity) bool {
	if !r.IsAlive(e) {
		return false
	}
	idx := e.id() - 1
	r.gen[idx]++
	r.free = append(r.free, e.id())
	r.alive--
	return true
}

// IsAlive reports whether an entity handle is valid.
func (r *Registry) IsAlive(e Entity) bool {
	if r == nil || !e.Valid() || int(e.id()) > len(r.gen) {
		return false
	}
	return r.gen[e.id()-1] == e.generation()
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.alive
}
