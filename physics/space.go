package physics

import (
	"log"
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ecs"
)

// Hit describes the nearest collider along a ray.
type Hit struct {
	Owner  ecs.Entity
	Layer  Layer
	Point  cp.Vector
	Normal cp.Vector
	// Alpha is the fraction of the ray travelled before the hit, in [0,1].
	Alpha float64
}

type collider struct {
	owner ecs.Entity
	layer Layer
}

// Space wraps a Chipmunk space used purely for spatial queries. Movers are
// kinematic circles; walls and obstacles hang off the static body.
//
// Queries test the tracked shapes' cached geometry directly rather than the
// space's BB tree, which only reindexes moved bodies on Step.
type Space struct {
	space *cp.Space

	colliders map[*cp.Shape]collider
	shapes    map[ecs.Entity][]*cp.Shape
	bodies    map[ecs.Entity]*cp.Body
}

func NewSpace() *Space {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &Space{
		space:     space,
		colliders: make(map[*cp.Shape]collider),
		shapes:    make(map[ecs.Entity][]*cp.Shape),
		bodies:    make(map[ecs.Entity]*cp.Body),
	}
}

// Space exposes the underlying Chipmunk space for debug drawing.
func (s *Space) Space() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// AddCircle gives owner a movable circular collider at pos. Each owner has at
// most one movable body.
func (s *Space) AddCircle(owner ecs.Entity, pos cp.Vector, radius float64, layer Layer) *cp.Shape {
	if s == nil {
		return nil
	}
	if _, ok := s.bodies[owner]; ok {
		log.Printf("physics: entity %s already has a body, replacing", owner)
		s.Remove(owner)
	}
	body := s.space.AddBody(cp.NewKinematicBody())
	body.SetPosition(pos)
	shape := s.space.AddShape(cp.NewCircle(body, radius, cp.Vector{}))
	shape.SetFilter(shapeFilter(layer))
	s.bodies[owner] = body
	s.track(owner, layer, shape)
	return shape
}

// AddBox adds a static axis-aligned box collider.
func (s *Space) AddBox(owner ecs.Entity, bb cp.BB, layer Layer) *cp.Shape {
	if s == nil {
		return nil
	}
	shape := s.space.AddShape(cp.NewBox2(s.space.StaticBody, bb, 0))
	shape.SetFilter(shapeFilter(layer))
	s.track(owner, layer, shape)
	return shape
}

// AddSegment adds a static segment collider with the given thickness radius.
func (s *Space) AddSegment(owner ecs.Entity, a, b cp.Vector, radius float64, layer Layer) *cp.Shape {
	if s == nil {
		return nil
	}
	shape := s.space.AddShape(cp.NewSegment(s.space.StaticBody, a, b, radius))
	shape.SetFilter(shapeFilter(layer))
	s.track(owner, layer, shape)
	return shape
}

// AddBounds walls in the rectangle [0,w]x[0,h].
func (s *Space) AddBounds(owner ecs.Entity, w, h, thickness float64, layer Layer) {
	walls := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: w, Y: 0}},
		{a: cp.Vector{X: 0, Y: h}, b: cp.Vector{X: w, Y: h}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: h}},
		{a: cp.Vector{X: w, Y: 0}, b: cp.Vector{X: w, Y: h}},
	}
	for _, wall := range walls {
		s.AddSegment(owner, wall.a, wall.b, thickness, layer)
	}
}

func (s *Space) track(owner ecs.Entity, layer Layer, shape *cp.Shape) {
	shape.CacheBB()
	s.colliders[shape] = collider{owner: owner, layer: layer}
	s.shapes[owner] = append(s.shapes[owner], shape)
}

// SetPosition moves owner's body and recaches its shapes so queries in the
// same tick see the new position.
func (s *Space) SetPosition(owner ecs.Entity, pos cp.Vector) bool {
	if s == nil {
		return false
	}
	body, ok := s.bodies[owner]
	if !ok {
		return false
	}
	body.SetPosition(pos)
	for _, shape := range s.shapes[owner] {
		shape.CacheBB()
	}
	return true
}

func (s *Space) Position(owner ecs.Entity) (cp.Vector, bool) {
	if s == nil {
		return cp.Vector{}, false
	}
	body, ok := s.bodies[owner]
	if !ok {
		return cp.Vector{}, false
	}
	return body.Position(), true
}

// Remove drops every collider owned by owner.
func (s *Space) Remove(owner ecs.Entity) {
	if s == nil {
		return
	}
	for _, shape := range s.shapes[owner] {
		s.space.RemoveShape(shape)
		delete(s.colliders, shape)
	}
	delete(s.shapes, owner)
	if body, ok := s.bodies[owner]; ok {
		s.space.RemoveBody(body)
		delete(s.bodies, owner)
	}
}

// Has reports whether owner has any collider.
func (s *Space) Has(owner ecs.Entity) bool {
	if s == nil {
		return false
	}
	return len(s.shapes[owner]) > 0
}

// OverlapCircle returns the owners of colliders on mask that intersect the
// circle, each at most once, in ascending entity order.
func (s *Space) OverlapCircle(center cp.Vector, radius float64, mask Layer) []ecs.Entity {
	if s == nil || radius < 0 || mask == LayerNone {
		return nil
	}
	bb := cp.NewBBForCircle(center, radius)
	var out []ecs.Entity
	seen := make(map[ecs.Entity]bool)
	for shape, c := range s.colliders {
		if !mask.Has(c.layer) || seen[c.owner] || !bb.Intersects(shape.BB()) {
			continue
		}
		if shape.PointQuery(center).Distance > radius {
			continue
		}
		seen[c.owner] = true
		out = append(out, c.owner)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Raycast returns the nearest collider on mask along from->to.
func (s *Space) Raycast(from, to cp.Vector, mask Layer) (Hit, bool) {
	return s.RaycastExcept(from, to, mask, 0)
}

// RaycastExcept is Raycast ignoring colliders owned by exclude.
func (s *Space) RaycastExcept(from, to cp.Vector, mask Layer, exclude ecs.Entity) (Hit, bool) {
	if s == nil || mask == LayerNone {
		return Hit{}, false
	}
	best := Hit{Alpha: math.Inf(1)}
	found := false
	var info cp.SegmentQueryInfo
	for shape, c := range s.colliders {
		if !mask.Has(c.layer) {
			continue
		}
		if exclude.Valid() && c.owner == exclude {
			continue
		}
		if !shape.SegmentQuery(from, to, 0, &info) {
			continue
		}
		if info.Alpha < best.Alpha || (info.Alpha == best.Alpha && c.owner < best.Owner) {
			best = Hit{Owner: c.owner, Layer: c.layer, Point: info.Point, Normal: info.Normal, Alpha: info.Alpha}
			found = true
		}
	}
	if !found {
		return Hit{}, false
	}
	return best, true
}

// Step advances the Chipmunk space.
func (s *Space) Step(dt float64) {
	if s == nil || dt <= 0 {
		return
	}
	s.space.Step(dt)
}

// PhysicsUpdate lets the space run as a fixed-step system.
func (s *Space) PhysicsUpdate(dt float64) {
	s.Step(dt)
}

// Len returns the number of colliders.
func (s *Space) Len() int {
	if s == nil {
		return 0
	}
	return len(s.colliders)
}

// EachCollider calls fn for every collider, for debug drawing.
func (s *Space) EachCollider(fn func(owner ecs.Entity, layer Layer, shape *cp.Shape)) {
	if s == nil || fn == nil {
		return
	}
	for shape, c := range s.colliders {
		fn(c.owner, c.layer, shape)
	}
}
