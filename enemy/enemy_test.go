package enemy

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ai"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/physics"
)

type fakeSpatial struct {
	inRange  bool
	blocked  bool
	player   ecs.Entity
	overlaps int
	rays     int
}

func (f *fakeSpatial) OverlapCircle(center cp.Vector, radius float64, mask physics.Layer) []ecs.Entity {
	f.overlaps++
	if !f.inRange {
		return nil
	}
	return []ecs.Entity{ecs.Entity(77), f.player}
}

func (f *fakeSpatial) Raycast(from, to cp.Vector, mask physics.Layer) (physics.Hit, bool) {
	f.rays++
	if f.blocked {
		return physics.Hit{Alpha: 0.5}, true
	}
	return physics.Hit{}, false
}

type fakeTarget struct {
	id  ecs.Entity
	pos cp.Vector
}

func (t *fakeTarget) Entity() ecs.Entity  { return t.id }
func (t *fakeTarget) Position() cp.Vector { return t.pos }

type fakeWeapon struct {
	shots  int
	angles []float64
	err    error
}

func (w *fakeWeapon) Fire(origin cp.Vector, angle float64) error {
	if w.err != nil {
		return w.err
	}
	w.shots++
	w.angles = append(w.angles, angle)
	return nil
}

type recorder struct {
	events []ecs.Event
}

func (r *recorder) Emit(evt ecs.Event) {
	r.events = append(r.events, evt)
}

func (r *recorder) count(t ecs.EventType) int {
	n := 0
	for _, evt := range r.events {
		if evt.Type() == t {
			n++
		}
	}
	return n
}

type rig struct {
	spatial *fakeSpatial
	target  *fakeTarget
	weapon  *fakeWeapon
	events  *recorder
	turret  *Turret
}

func newRig(t *testing.T, mutate func(cfg *TurretConfig)) *rig {
	t.Helper()
	r := &rig{
		spatial: &fakeSpatial{player: 1},
		target:  &fakeTarget{id: 1, pos: cp.Vector{X: 0, Y: 100}},
		weapon:  &fakeWeapon{},
		events:  &recorder{},
	}
	cfg := DefaultTurretConfig()
	cfg.ReloadTime = 1
	cfg.TowerRotationSpeed = 100
	cfg.RotationInterpolationFactor = 0.05
	if mutate != nil {
		mutate(&cfg)
	}
	turret, err := NewTurret(2, cp.Vector{}, cfg, Deps{
		Spatial: r.spatial,
		Target:  r.target,
		Weapon:  r.weapon,
		Events:  r.events,
	})
	if err != nil {
		t.Fatalf("new turret: %v", err)
	}
	r.turret = turret
	return r
}

func TestSensors(t *testing.T) {
	tests := []struct {
		name         string
		inRange      bool
		blocked      bool
		wantDetected bool
		wantObstacle bool
	}{
		{name: "visible", inRange: true, wantDetected: true},
		{name: "behind wall", inRange: true, blocked: true, wantDetected: true, wantObstacle: true},
		{name: "out of range", inRange: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, nil)
			r.spatial.inRange = tc.inRange
			r.spatial.blocked = tc.blocked
			if got := r.turret.PlayerDetected(); got != tc.wantDetected {
				t.Fatalf("PlayerDetected: expected %v, got %v", tc.wantDetected, got)
			}
			if got := r.turret.ObstacleBetween(); got != tc.wantObstacle {
				t.Fatalf("ObstacleBetween: expected %v, got %v", tc.wantObstacle, got)
			}
		})
	}
}

func TestSensorsWithoutCollaborators(t *testing.T) {
	e := newEnemy(3, cp.Vector{}, DefaultConfig(), Deps{})
	if e.PlayerDetected() || e.ObstacleBetween() {
		t.Fatalf("sensors should report nothing without a space or target")
	}
	if !math.IsInf(e.DistanceToTarget(), 1) {
		t.Fatalf("distance without target should be +Inf")
	}
}

func TestSensorsIgnoreOtherEntities(t *testing.T) {
	r := newRig(t, nil)
	r.spatial.inRange = true
	r.spatial.player = 99
	if r.turret.PlayerDetected() {
		t.Fatalf("only the tracked target counts as detected")
	}
}

func TestIdleAttackRoundTrip(t *testing.T) {
	r := newRig(t, nil)
	if r.turret.State() != StateIdle {
		t.Fatalf("turret should start idle, got %q", r.turret.State())
	}

	r.spatial.inRange = true
	r.turret.LogicUpdate(0.02)
	if r.turret.State() != StateAttack {
		t.Fatalf("expected attack after detection, got %q", r.turret.State())
	}

	r.spatial.blocked = true
	r.turret.LogicUpdate(0.02)
	if r.turret.State() != StateIdle {
		t.Fatalf("expected idle once blocked, got %q", r.turret.State())
	}

	var changes []ecs.StateChanged
	for _, evt := range r.events.events {
		if sc, ok := evt.(ecs.StateChanged); ok {
			changes = append(changes, sc)
		}
	}
	want := []ecs.StateChanged{
		{Entity: 2, From: "", To: "idle"},
		{Entity: 2, From: "idle", To: "attack"},
		{Entity: 2, From: "attack", To: "idle"},
	}
	if len(changes) != len(want) {
		t.Fatalf("expected %v, got %v", want, changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d: expected %v, got %v", i, want[i], changes[i])
		}
	}
}

func TestIdleStaysWhenBlocked(t *testing.T) {
	r := newRig(t, nil)
	r.spatial.inRange = true
	r.spatial.blocked = true
	for i := 0; i < 5; i++ {
		r.turret.LogicUpdate(0.1)
	}
	if r.turret.State() != StateIdle {
		t.Fatalf("blocked target must not trigger attack")
	}
}

func TestAttackFiresBeforeLeaving(t *testing.T) {
	r := newRig(t, nil)
	r.spatial.inRange = true
	r.turret.LogicUpdate(0.02)
	if r.turret.State() != StateAttack {
		t.Fatalf("expected attack")
	}

	// Target straight up: goal tower angle is 0, which the tower already has.
	r.spatial.inRange = false
	r.turret.LogicUpdate(0.02)
	if r.weapon.shots != 1 {
		t.Fatalf("expected a shot on the tick the target was lost, got %d", r.weapon.shots)
	}
	if r.turret.State() != StateIdle {
		t.Fatalf("expected idle after losing the target")
	}
	if math.Abs(r.weapon.angles[0]-90) > 1e-9 {
		t.Fatalf("expected heading 90, got %v", r.weapon.angles[0])
	}
}

func TestAttackHoldsFireWhileRotating(t *testing.T) {
	r := newRig(t, nil)
	r.target.pos = cp.Vector{X: 100, Y: 0}
	r.spatial.inRange = true
	r.turret.LogicUpdate(0.02)

	// goal is -90; each tick covers 5% of the remaining arc at dt=0.01.
	r.turret.LogicUpdate(0.01)
	if !r.turret.IsRotatingTower() {
		t.Fatalf("tower should still be rotating")
	}
	if r.weapon.shots != 0 {
		t.Fatalf("must not fire while rotating")
	}
}

func TestRotateTowerTowardsPlayer(t *testing.T) {
	tests := []struct {
		name         string
		target       cp.Vector
		start        float64
		dt           float64
		wantTower    float64
		wantRotating bool
	}{
		{name: "already aimed", target: cp.Vector{X: 0, Y: 50}, start: 0, dt: 0.1, wantTower: 0, wantRotating: false},
		{name: "half step", target: cp.Vector{X: 50, Y: 0}, start: 0, dt: 0.1, wantTower: -45, wantRotating: true},
		{name: "snap with large dt", target: cp.Vector{X: 50, Y: 0}, start: 0, dt: 1, wantTower: -90, wantRotating: false},
		{name: "shortest arc across 180", target: cp.Vector{X: 0, Y: -50}, start: 170, dt: 0.1, wantTower: 175, wantRotating: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, func(cfg *TurretConfig) {
				cfg.InitialTower = tc.start
			})
			r.target.pos = tc.target
			r.turret.RotateTowerTowardsPlayer(tc.dt)
			if math.Abs(r.turret.Tower-tc.wantTower) > 1e-9 {
				t.Fatalf("expected tower %v, got %v", tc.wantTower, r.turret.Tower)
			}
			if r.turret.IsRotatingTower() != tc.wantRotating {
				t.Fatalf("expected rotating=%v", tc.wantRotating)
			}
		})
	}
}

func TestShootCooldown(t *testing.T) {
	r := newRig(t, nil)
	if !r.turret.CanShoot() {
		t.Fatalf("fresh turret should be able to shoot")
	}
	if !r.turret.Shoot() {
		t.Fatalf("first shot should fire")
	}
	if r.turret.CanShoot() || r.turret.Shoot() {
		t.Fatalf("shoot during reload must be a no-op")
	}

	elapsed := 0.0
	for i := 0; i < 3; i++ {
		r.turret.LogicUpdate(0.25)
		elapsed += 0.25
		if r.turret.CanShoot() {
			t.Fatalf("reloaded early after %.2fs", elapsed)
		}
	}
	if p := r.turret.ReloadProgress(); math.Abs(p-0.75) > 1e-9 {
		t.Fatalf("expected progress 0.75, got %v", p)
	}
	r.turret.LogicUpdate(0.25)
	if !r.turret.CanShoot() {
		t.Fatalf("should be able to shoot after the reload time")
	}
	if r.weapon.shots != 1 {
		t.Fatalf("expected exactly one shot, got %d", r.weapon.shots)
	}
}

func TestShootWeaponErrorStillReloads(t *testing.T) {
	r := newRig(t, nil)
	r.weapon.err = errors.New("pool: exhausted")
	if r.turret.Shoot() {
		t.Fatalf("failed weapon should report no shot")
	}
	if r.turret.CanShoot() {
		t.Fatalf("reload should start even when the weapon fails")
	}
}

func TestTakeDamageScenario(t *testing.T) {
	r := newRig(t, nil)
	steps := []struct {
		amount        float32
		wantCurrent   float32
		wantDestroyed int
	}{
		{amount: 40, wantCurrent: 60, wantDestroyed: 0},
		{amount: 70, wantCurrent: -10, wantDestroyed: 1},
		{amount: 5, wantCurrent: -15, wantDestroyed: 1},
	}
	for i, step := range steps {
		r.turret.TakeDamage(step.amount)
		if r.turret.CurrentHP() != step.wantCurrent {
			t.Fatalf("step %d: expected hp %v, got %v", i, step.wantCurrent, r.turret.CurrentHP())
		}
		last := r.events.events[len(r.events.events)-1]
		if step.wantDestroyed > 0 && i == 1 {
			last = r.events.events[len(r.events.events)-2]
		}
		hc, ok := last.(ecs.HealthChanged)
		if !ok || hc.Current != step.wantCurrent || hc.Max != 100 {
			t.Fatalf("step %d: expected HealthChanged(%v,100), got %#v", i, step.wantCurrent, last)
		}
		if got := r.events.count(ecs.EventEntityDestroyed); got != step.wantDestroyed {
			t.Fatalf("step %d: expected %d destroyed events, got %d", i, step.wantDestroyed, got)
		}
	}
	if r.turret.IsAlive() || !r.turret.IsExploding() {
		t.Fatalf("turret should be exploding")
	}
}

func TestExplodingIgnoresTicks(t *testing.T) {
	r := newRig(t, func(cfg *TurretConfig) { cfg.ExplosionTime = 0.5 })
	r.spatial.inRange = true
	r.turret.TakeDamage(200)

	before := r.spatial.overlaps
	r.turret.LogicUpdate(0.25)
	r.turret.PhysicsUpdate(0.02)
	if r.spatial.overlaps != before {
		t.Fatalf("exploding turret must not run its states")
	}
	if r.turret.State() != StateIdle {
		t.Fatalf("state must not change while exploding")
	}
	if r.turret.Shoot() || r.weapon.shots != 0 {
		t.Fatalf("shoot after destruction must be a no-op")
	}
	if r.turret.Removed() {
		t.Fatalf("explosion should not be finished yet")
	}
	r.turret.LogicUpdate(0.25)
	if !r.turret.Removed() {
		t.Fatalf("turret should be removable after the explosion time")
	}
}

const sweepIdle = `
on_enter := func(engine, state) {
	state.sweeps = 0
}

do_checks := func(engine, state) {
	state.engage = engine.player_detected() && !engine.obstacle_between()
}

update := func(engine, state, dt) {
	engine.set_tower_angle(engine.tower_angle() + 90 * dt)
	state.sweeps = state.sweeps + 1
	if state.engage {
		engine.transition("attack")
	}
}

physics := func(engine, state, dt) {}

on_exit := func(engine, state) {}
`

func TestScriptedIdleOverridesBuiltin(t *testing.T) {
	r := newRig(t, func(cfg *TurretConfig) {
		cfg.Scripts = map[ai.StateID][]byte{StateIdle: []byte(sweepIdle)}
	})
	if _, ok := r.turret.Machine.Current().(*ai.ScriptedState); !ok {
		t.Fatalf("idle should be the scripted state")
	}

	r.turret.LogicUpdate(0.5)
	if math.Abs(r.turret.Tower-45) > 1e-9 {
		t.Fatalf("scripted idle should sweep the tower, got %v", r.turret.Tower)
	}

	r.spatial.inRange = true
	r.turret.LogicUpdate(0.1)
	if r.turret.State() != StateAttack {
		t.Fatalf("scripted idle should hand over to attack, got %q", r.turret.State())
	}
}

func TestNewTurretRejectsBadScript(t *testing.T) {
	cfg := DefaultTurretConfig()
	cfg.Scripts = map[ai.StateID][]byte{"patrol": []byte("update := func(")}
	if _, err := NewTurret(4, cp.Vector{}, cfg, Deps{}); err == nil {
		t.Fatalf("expected compile error")
	}

	cfg = DefaultTurretConfig()
	cfg.InitialState = "missing"
	if _, err := NewTurret(5, cp.Vector{}, cfg, Deps{}); !errors.Is(err, ai.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMuzzleFollowsTower(t *testing.T) {
	r := newRig(t, func(cfg *TurretConfig) {
		cfg.BulletSpawn = cp.Vector{X: 0, Y: 10}
		cfg.InitialTower = -90
	})
	m := r.turret.Muzzle()
	if math.Abs(m.X-10) > 1e-9 || math.Abs(m.Y) > 1e-9 {
		t.Fatalf("expected muzzle at (10,0), got %v", m)
	}
	if math.Abs(r.turret.Heading()) > 1e-9 {
		t.Fatalf("expected heading 0, got %v", r.turret.Heading())
	}
}
