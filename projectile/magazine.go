package projectile

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/pool"
)

// Magazine owns the pool for one round variant.
type Magazine[T Round] struct {
	Name  string
	Stats Stats

	pool *pool.Pool[Spawn, T]
}

func NewMagazine[T Round](name string, stats Stats, cfg pool.Config, factory pool.Factory[T]) (*Magazine[T], error) {
	p, err := pool.New[Spawn, T](factory, cfg)
	if err != nil {
		return nil, fmt.Errorf("projectile: magazine %s: %w", name, err)
	}
	return &Magazine[T]{Name: name, Stats: stats, pool: p}, nil
}

// Load claims a round and launches it from origin along angle degrees.
func (m *Magazine[T]) Load(owner ecs.Entity, origin cp.Vector, angle float64) (pool.Handle, T, error) {
	return m.pool.Get(Spawn{Owner: owner, Origin: origin, Angle: angle, Stats: m.Stats})
}

func (m *Magazine[T]) Release(h pool.Handle) bool {
	return m.pool.Release(h)
}

func (m *Magazine[T]) Active() int {
	return m.pool.Active()
}

func (m *Magazine[T]) Len() int {
	return m.pool.Len()
}

// Pool exposes the backing pool, e.g. to hook OnRecycle.
func (m *Magazine[T]) Pool() *pool.Pool[Spawn, T] {
	return m.pool
}

// Reset returns every round to the pool.
func (m *Magazine[T]) Reset() {
	m.pool.Reset()
}

// Each calls fn with every round in flight.
func (m *Magazine[T]) Each(fn func(p *Projectile)) {
	m.pool.EachActive(func(_ pool.Handle, round T) {
		fn(round.Core())
	})
}

// Sweep moves every round in flight by dt, resolving hits through sys.
func (m *Magazine[T]) Sweep(dt float64, sys *System) {
	m.pool.EachActive(func(h pool.Handle, round T) {
		core := round.Core()
		spent := sys.sweep(round, dt)
		core.Age += dt
		if spent || core.Expired() {
			m.pool.Release(h)
		}
	})
}

// Launcher fires rounds from a magazine on behalf of one shooter.
type Launcher[T Round] struct {
	Magazine *Magazine[T]
	Shooter  ecs.Entity
	Events   ecs.Emitter
}

func NewLauncher[T Round](m *Magazine[T], shooter ecs.Entity, events ecs.Emitter) *Launcher[T] {
	return &Launcher[T]{Magazine: m, Shooter: shooter, Events: events}
}

// Fire launches one round from origin along angle degrees.
func (l *Launcher[T]) Fire(origin cp.Vector, angle float64) error {
	if l == nil || l.Magazine == nil {
		return fmt.Errorf("projectile: fire: no magazine")
	}
	if _, _, err := l.Magazine.Load(l.Shooter, origin, angle); err != nil {
		return fmt.Errorf("projectile: fire %s: %w", l.Magazine.Name, err)
	}
	if l.Events != nil {
		l.Events.Emit(ecs.ShotFired{Shooter: l.Shooter, Ammo: l.Magazine.Name, Origin: origin, Angle: angle})
	}
	return nil
}

// Ammo names the magazine the launcher draws from.
func (l *Launcher[T]) Ammo() string {
	if l == nil || l.Magazine == nil {
		return ""
	}
	return l.Magazine.Name
}
