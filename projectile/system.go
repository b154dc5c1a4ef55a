package projectile

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/component"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/physics"
)

// Raycaster is the slice of the physics space projectiles need.
type Raycaster interface {
	RaycastExcept(from, to cp.Vector, mask physics.Layer, exclude ecs.Entity) (physics.Hit, bool)
}

// Resolver finds the damageable component of a hit collider's owner.
type Resolver interface {
	Damageable(e ecs.Entity) (component.Damageable, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(e ecs.Entity) (component.Damageable, bool)

func (f ResolverFunc) Damageable(e ecs.Entity) (component.Damageable, bool) {
	return f(e)
}

// Sweeper is implemented by every Magazine.
type Sweeper interface {
	Sweep(dt float64, sys *System)
	Reset()
	Active() int
}

// maxHitsPerSweep bounds how many colliders one round can touch in a step.
const maxHitsPerSweep = 8

// System advances all magazines at the fixed physics step.
type System struct {
	space     Raycaster
	resolver  Resolver
	events    ecs.Emitter
	magazines []Sweeper
}

func NewSystem(space Raycaster, resolver Resolver, events ecs.Emitter) *System {
	return &System{space: space, resolver: resolver, events: events}
}

func (s *System) Add(m Sweeper) {
	if m == nil {
		return
	}
	s.magazines = append(s.magazines, m)
}

func (s *System) PhysicsUpdate(dt float64) {
	if s == nil || dt <= 0 {
		return
	}
	for _, m := range s.magazines {
		m.Sweep(dt, s)
	}
}

// Reset returns every round in every magazine to its pool.
func (s *System) Reset() {
	for _, m := range s.magazines {
		m.Reset()
	}
}

// Active returns the number of rounds in flight.
func (s *System) Active() int {
	n := 0
	for _, m := range s.magazines {
		n += m.Active()
	}
	return n
}

// sweep moves round along its velocity for dt and reports whether it is spent.
func (s *System) sweep(round Round, dt float64) bool {
	p := round.Core()
	from := p.Position
	to := from.Add(p.Velocity.Mult(dt))
	if s.space == nil {
		p.Position = to
		return false
	}

	for i := 0; i < maxHitsPerSweep; i++ {
		hit, ok := s.space.RaycastExcept(from, to, p.Mask, round.Ignore())
		if !ok {
			break
		}

		damaged := false
		var dealt float32
		if s.resolver != nil && hit.Owner.Valid() {
			if target, ok := s.resolver.Damageable(hit.Owner); ok && target.IsAlive() {
				target.TakeDamage(p.Damage)
				damaged = true
				dealt = p.Damage
			}
		}
		if s.events != nil {
			s.events.Emit(ecs.ProjectileHit{Shooter: p.Owner, Target: hit.Owner, Damage: dealt, Point: hit.Point})
		}

		if round.OnHit(hit, damaged) {
			p.Position = hit.Point
			return true
		}
		from = hit.Point
	}

	p.Position = to
	return false
}
