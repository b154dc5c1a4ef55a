package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/common"
	"github.com/milk9111/sentry/component"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/enemy"
	"github.com/milk9111/sentry/physics"
	"github.com/milk9111/sentry/prefabs"
)

// Player is the turrets' target: a circle steered by input that stops
// moving once it dies or the arena is cleared.
type Player struct {
	id     ecs.Entity
	pos    cp.Vector
	Speed  float64
	Radius float64
	Layer  physics.Layer
	Health *component.Health
	Active bool

	input    cp.Vector
	bounds   cp.BB
	weapon   enemy.Weapon
	cooldown enemy.Cooldown
	space    *physics.Space
	events   ecs.Emitter
}

func NewPlayer(id ecs.Entity, pos cp.Vector, spec *prefabs.PlayerSpec, bounds cp.BB, space *physics.Space, events ecs.Emitter) *Player {
	p := &Player{
		id:     id,
		pos:    pos,
		Speed:  160,
		Radius: 10,
		Layer:  physics.LayerPlayer,
		Health: component.NewHealth(100),
		Active: true,
		bounds: bounds,
		space:  space,
		events: events,
	}
	if spec != nil {
		if spec.MoveSpeed > 0 {
			p.Speed = spec.MoveSpeed
		}
		if spec.Radius > 0 {
			p.Radius = spec.Radius
		}
		if spec.Layer != 0 {
			p.Layer = spec.Layer
		}
		if spec.Health > 0 {
			p.Health = component.NewHealth(spec.Health)
		}
		p.cooldown.Duration = spec.ReloadTime
	}
	p.Health.OnDamage = func(h *component.Health, _ float32) {
		p.emit(ecs.HealthChanged{Entity: p.id, Current: h.Current, Max: h.Max})
	}
	p.Health.OnDeath = func(*component.Health) {
		p.Deactivate()
		p.emit(ecs.PlayerDied{Entity: p.id})
	}
	if space != nil {
		space.AddCircle(id, pos, p.Radius, p.Layer)
	}
	return p
}

func (p *Player) Entity() ecs.Entity {
	return p.id
}

func (p *Player) Position() cp.Vector {
	return p.pos
}

// SetInput sets the steering direction; it is normalized when longer than 1.
func (p *Player) SetInput(dir cp.Vector) {
	if dir.LengthSq() > 1 {
		dir = dir.Normalize()
	}
	p.input = dir
}

// PhysicsUpdate moves the player, refusing steps that would enter an
// obstacle or leave the arena.
func (p *Player) PhysicsUpdate(dt float64) {
	if !p.Active || dt <= 0 || p.input.LengthSq() == 0 {
		return
	}
	next := p.pos.Add(p.input.Mult(p.Speed * dt))
	next.X = math.Max(p.bounds.L+p.Radius, math.Min(next.X, p.bounds.R-p.Radius))
	next.Y = math.Max(p.bounds.B+p.Radius, math.Min(next.Y, p.bounds.T-p.Radius))
	if p.space != nil && len(p.space.OverlapCircle(next, p.Radius, physics.LayerObstacle)) > 0 {
		return
	}
	p.pos = next
	p.space.SetPosition(p.id, next)
}

func (p *Player) SetWeapon(w enemy.Weapon) {
	p.weapon = w
}

// LogicUpdate ticks the reload.
func (p *Player) LogicUpdate(dt float64) {
	p.cooldown.Tick(dt)
}

// FireAt launches a round towards target. It reports whether a round left
// the barrel.
func (p *Player) FireAt(target cp.Vector) bool {
	if !p.Active || p.weapon == nil || !p.cooldown.Ready() {
		return false
	}
	d := target.Sub(p.pos)
	if d.LengthSq() == 0 {
		return false
	}
	p.cooldown.Start()
	angle := math.Atan2(d.Y, d.X) * common.Rad2Deg
	if err := p.weapon.Fire(p.pos, angle); err != nil {
		log.Printf("system: player fire: %v", err)
		return false
	}
	return true
}

func (p *Player) ReloadProgress() float64 {
	return p.cooldown.Progress()
}

// TakeDamage is ignored once the player is inactive.
func (p *Player) TakeDamage(amount float32) {
	if !p.Active {
		return
	}
	p.Health.ApplyDamage(amount)
}

func (p *Player) emit(evt ecs.Event) {
	if p.events != nil {
		p.events.Emit(evt)
	}
}

func (p *Player) IsAlive() bool {
	return p.Health.IsAlive()
}

func (p *Player) CurrentHP() float32 {
	return p.Health.CurrentHP()
}

func (p *Player) MaxHP() float32 {
	return p.Health.MaxHP()
}

// Deactivate freezes the player in place.
func (p *Player) Deactivate() {
	if !p.Active {
		return
	}
	p.Active = false
	p.input = cp.Vector{}
	log.Printf("system: player %s deactivated", p.id)
}
