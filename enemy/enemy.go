package enemy

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ai"
	"github.com/milk9111/sentry/common"
	"github.com/milk9111/sentry/component"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/physics"
)

// SpatialQuery is the sensing surface an enemy needs from the physics space.
type SpatialQuery interface {
	OverlapCircle(center cp.Vector, radius float64, mask physics.Layer) []ecs.Entity
	Raycast(from, to cp.Vector, mask physics.Layer) (physics.Hit, bool)
}

// Target is what an enemy hunts.
type Target interface {
	Entity() ecs.Entity
	Position() cp.Vector
}

// Weapon launches one projectile from origin along angle degrees.
type Weapon interface {
	Fire(origin cp.Vector, angle float64) error
}

// Config holds the tuning values shared by all enemies.
type Config struct {
	MaxHealth         float32
	DetectionDistance float64
	ReloadTime        float64
	ExplosionTime     float64
	Radius            float64
	PlayerLayer       physics.Layer
	ObstacleLayer     physics.Layer

	TowerRotationSpeed          float64
	RotationInterpolationFactor float64
	RotationThreshold           float64
	// ForwardOffset corrects the sprite's forward axis, in degrees.
	ForwardOffset float64
}

func DefaultConfig() Config {
	return Config{
		MaxHealth:                   100,
		DetectionDistance:           240,
		ReloadTime:                  1,
		ExplosionTime:               0.6,
		Radius:                      12,
		PlayerLayer:                 physics.LayerPlayer,
		ObstacleLayer:               physics.LayerObstacle,
		TowerRotationSpeed:          100,
		RotationInterpolationFactor: 0.05,
		RotationThreshold:           10,
		ForwardOffset:               -90,
	}
}

// Deps are the collaborators an enemy borrows from the world.
type Deps struct {
	Spatial SpatialQuery
	Target  Target
	Weapon  Weapon
	Events  ecs.Emitter
}

// Enemy is the shared core of every hostile entity: health, sensors, a
// reload cooldown and the state machine that drives it.
type Enemy struct {
	ID       ecs.Entity
	Config   Config
	Position cp.Vector
	Health   *component.Health
	Machine  *ai.StateMachine

	spatial SpatialQuery
	target  Target
	weapon  Weapon
	events  ecs.Emitter

	cooldown  Cooldown
	exploding bool
	explosion float64

	// muzzle supplies the origin and heading for Shoot.
	muzzle func() (cp.Vector, float64)
}

func newEnemy(id ecs.Entity, pos cp.Vector, cfg Config, deps Deps) *Enemy {
	e := &Enemy{
		ID:       id,
		Config:   cfg,
		Position: pos,
		Health:   component.NewHealth(cfg.MaxHealth),
		Machine:  ai.NewStateMachine(),
		spatial:  deps.Spatial,
		target:   deps.Target,
		weapon:   deps.Weapon,
		events:   deps.Events,
		cooldown: Cooldown{Duration: cfg.ReloadTime},
	}
	e.Machine.OnChange = func(from, to ai.StateID) {
		e.emit(ecs.StateChanged{Entity: e.ID, From: string(from), To: string(to)})
	}
	e.Health.OnDamage = func(h *component.Health, _ float32) {
		e.emit(ecs.HealthChanged{Entity: e.ID, Current: h.Current, Max: h.Max})
	}
	e.Health.OnDeath = func(*component.Health) {
		e.exploding = true
		e.explosion = 0
		e.emit(ecs.EntityDestroyed{Entity: e.ID})
	}
	return e
}

func (e *Enemy) emit(evt ecs.Event) {
	if e.events != nil {
		e.events.Emit(evt)
	}
}

// PlayerDetected reports whether the target is inside the detection circle.
func (e *Enemy) PlayerDetected() bool {
	if e.spatial == nil || e.target == nil {
		return false
	}
	want := e.target.Entity()
	for _, id := range e.spatial.OverlapCircle(e.Position, e.Config.DetectionDistance, e.Config.PlayerLayer) {
		if id == want {
			return true
		}
	}
	return false
}

// ObstacleBetween reports whether an obstacle collider blocks the straight
// line to the target.
func (e *Enemy) ObstacleBetween() bool {
	if e.spatial == nil || e.target == nil {
		return false
	}
	to := e.target.Position()
	if to == e.Position {
		return false
	}
	_, hit := e.spatial.Raycast(e.Position, to, e.Config.ObstacleLayer)
	return hit
}

// DistanceToTarget returns the distance to the target, or +Inf without one.
func (e *Enemy) DistanceToTarget() float64 {
	if e.target == nil {
		return math.Inf(1)
	}
	return e.Position.Distance(e.target.Position())
}

func (e *Enemy) CanShoot() bool {
	return !e.exploding && e.cooldown.Ready()
}

// ReloadProgress returns the reload fraction for HUDs.
func (e *Enemy) ReloadProgress() float64 {
	return e.cooldown.Progress()
}

// Shoot fires the weapon and starts the reload. It does nothing while
// exploding or reloading. A weapon failure still costs the reload. The
// result reports whether a projectile left the muzzle.
func (e *Enemy) Shoot() bool {
	if e.exploding {
		log.Printf("enemy: %s shoot after destruction ignored", e.ID)
		return false
	}
	if !e.cooldown.Ready() {
		return false
	}
	e.cooldown.Start()
	if e.weapon == nil {
		return false
	}

	origin, angle := e.Position, e.aimAngle()
	if e.muzzle != nil {
		origin, angle = e.muzzle()
	}
	if err := e.weapon.Fire(origin, angle); err != nil {
		log.Printf("enemy: %s shoot: %v", e.ID, err)
		return false
	}
	return true
}

func (e *Enemy) aimAngle() float64 {
	if e.target == nil {
		return 0
	}
	d := e.target.Position().Sub(e.Position)
	return math.Atan2(d.Y, d.X) * common.Rad2Deg
}

// TakeDamage subtracts amount. The health hooks emit HealthChanged on every
// hit, and on the first hit that takes health to zero they start the
// explosion and emit EntityDestroyed.
func (e *Enemy) TakeDamage(amount float32) {
	e.Health.ApplyDamage(amount)
}

func (e *Enemy) IsAlive() bool {
	return !e.exploding && e.Health.IsAlive()
}

func (e *Enemy) CurrentHP() float32 {
	return e.Health.CurrentHP()
}

func (e *Enemy) MaxHP() float32 {
	return e.Health.MaxHP()
}

func (e *Enemy) IsExploding() bool {
	return e.exploding
}

// Removed reports whether the explosion has finished and the entity can be
// despawned.
func (e *Enemy) Removed() bool {
	return e.exploding && e.explosion >= e.Config.ExplosionTime
}

// ExplosionProgress runs from 0 at destruction to 1 at removal.
func (e *Enemy) ExplosionProgress() float64 {
	if !e.exploding {
		return 0
	}
	if e.Config.ExplosionTime <= 0 {
		return 1
	}
	return common.Clamp01(e.explosion / e.Config.ExplosionTime)
}

// LogicUpdate ticks the reload then the current state. Once exploding only
// the explosion timer advances.
func (e *Enemy) LogicUpdate(dt float64) {
	if e.exploding {
		e.explosion += dt
		return
	}
	e.cooldown.Tick(dt)
	e.Machine.LogicUpdate(dt)
}

// PhysicsUpdate forwards to the current state unless exploding.
func (e *Enemy) PhysicsUpdate(dt float64) {
	if e.exploding {
		return
	}
	e.Machine.PhysicsUpdate(dt)
}

// State returns the current state id.
func (e *Enemy) State() ai.StateID {
	return e.Machine.CurrentID()
}
