package projectile

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/common"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/physics"
)

// Stats are the per-variant tuning values loaded from a projectile prefab.
type Stats struct {
	Damage   float32
	Speed    float64
	Lifetime float64
	Radius   float64
	Mask     physics.Layer
	// Pierce is how many damageable targets an armor piercing round passes
	// through before it stops.
	Pierce int
}

// Spawn carries everything a round needs when it leaves the muzzle.
type Spawn struct {
	Owner  ecs.Entity
	Origin cp.Vector
	// Angle is the heading in degrees, counter-clockwise from +X.
	Angle float64
	Stats Stats
}

// Projectile is the state shared by every round variant.
type Projectile struct {
	Owner    ecs.Entity
	Position cp.Vector
	Velocity cp.Vector
	Angle    float64
	Damage   float32
	Lifetime float64
	Age      float64
	Radius   float64
	Mask     physics.Layer
	Active   bool
}

func (p *Projectile) reset(sp Spawn) {
	p.Owner = sp.Owner
	p.Position = sp.Origin
	p.Angle = sp.Angle
	p.Velocity = cp.ForAngle(sp.Angle * common.Deg2Rad).Mult(sp.Stats.Speed)
	p.Damage = sp.Stats.Damage
	p.Lifetime = sp.Stats.Lifetime
	p.Age = 0
	p.Radius = sp.Stats.Radius
	p.Mask = sp.Stats.Mask
	p.Active = true
}

func (p *Projectile) clear() {
	p.Active = false
	p.Velocity = cp.Vector{}
	p.Age = 0
	p.Owner = 0
}

// Expired reports whether the round has outlived its lifetime.
func (p *Projectile) Expired() bool {
	return p.Lifetime > 0 && p.Age >= p.Lifetime
}

func (p *Projectile) Core() *Projectile {
	return p
}

// Round is a pooled projectile variant.
type Round interface {
	Activate(sp Spawn)
	Deactivate()
	Core() *Projectile
	// Ignore is the entity the next sweep must pass through.
	Ignore() ecs.Entity
	// OnHit reports whether the round is spent after hitting hit. damaged is
	// true when the hit landed on a live damageable target.
	OnHit(hit physics.Hit, damaged bool) bool
}

// Standard stops on the first thing it hits.
type Standard struct {
	Projectile
}

func NewStandard() *Standard {
	return &Standard{}
}

func (s *Standard) Activate(sp Spawn) {
	s.reset(sp)
}

func (s *Standard) Deactivate() {
	s.clear()
}

func (s *Standard) Ignore() ecs.Entity {
	return s.Owner
}

func (s *Standard) OnHit(hit physics.Hit, damaged bool) bool {
	return true
}

// ArmorPiercing passes through up to Pierce damageable targets. Obstacles
// always stop it.
type ArmorPiercing struct {
	Projectile
	Pierce    int
	remaining int
	lastHit   ecs.Entity
}

func NewArmorPiercing() *ArmorPiercing {
	return &ArmorPiercing{}
}

func (a *ArmorPiercing) Activate(sp Spawn) {
	a.reset(sp)
	a.Pierce = sp.Stats.Pierce
	a.remaining = sp.Stats.Pierce
	a.lastHit = 0
}

func (a *ArmorPiercing) Deactivate() {
	a.clear()
	a.remaining = 0
	a.lastHit = 0
}

func (a *ArmorPiercing) Ignore() ecs.Entity {
	if a.lastHit.Valid() {
		return a.lastHit
	}
	return a.Owner
}

func (a *ArmorPiercing) OnHit(hit physics.Hit, damaged bool) bool {
	if !damaged {
		return true
	}
	a.lastHit = hit.Owner
	if a.remaining <= 0 {
		return true
	}
	a.remaining--
	return false
}

// Remaining returns how many more targets the round can pass through.
func (a *ArmorPiercing) Remaining() int {
	return a.remaining
}
