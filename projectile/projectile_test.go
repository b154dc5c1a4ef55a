package projectile

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/component"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/physics"
	"github.com/milk9111/sentry/pool"
)

type target struct {
	hp    float32
	taken []float32
}

func (t *target) TakeDamage(amount float32) {
	t.hp -= amount
	t.taken = append(t.taken, amount)
}

func (t *target) IsAlive() bool {
	return t.hp > 0
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

type arena struct {
	space   *physics.Space
	targets map[ecs.Entity]*target
	events  *recorder
	sys     *System
}

func newArena() *arena {
	a := &arena{
		space:   physics.NewSpace(),
		targets: make(map[ecs.Entity]*target),
		events:  &recorder{},
	}
	a.sys = NewSystem(a.space, ResolverFunc(func(e ecs.Entity) (component.Damageable, bool) {
		t, ok := a.targets[e]
		return t, ok
	}), a.events)
	return a
}

func (a *arena) addTarget(e ecs.Entity, x float64, hp float32) *target {
	a.space.AddCircle(e, cp.Vector{X: x}, 5, physics.LayerPlayer)
	t := &target{hp: hp}
	a.targets[e] = t
	return t
}

var testStats = Stats{
	Damage:   10,
	Speed:    100,
	Lifetime: 2,
	Radius:   2,
	Mask:     physics.LayerPlayer | physics.LayerObstacle,
}

func TestSpawnSetsVelocityFromAngle(t *testing.T) {
	s := NewStandard()
	s.Activate(Spawn{Owner: 1, Origin: cp.Vector{X: 3, Y: 4}, Angle: 90, Stats: testStats})
	if !s.Active || s.Position != (cp.Vector{X: 3, Y: 4}) {
		t.Fatalf("spawn not applied: %+v", s.Projectile)
	}
	if math.Abs(s.Velocity.X) > 1e-9 || math.Abs(s.Velocity.Y-100) > 1e-9 {
		t.Fatalf("expected velocity (0,100), got %v", s.Velocity)
	}
	s.Deactivate()
	if s.Active || s.Velocity != (cp.Vector{}) {
		t.Fatalf("deactivate should clear motion")
	}
}

func TestStandardStopsOnFirstHit(t *testing.T) {
	a := newArena()
	first := a.addTarget(10, 50, 100)
	second := a.addTarget(11, 70, 100)

	mag, err := NewMagazine[*Standard]("standard", testStats, pool.Config{Size: 4}, pool.FactoryFunc[*Standard](NewStandard))
	if err != nil {
		t.Fatalf("magazine: %v", err)
	}
	a.sys.Add(mag)

	launcher := NewLauncher(mag, 1, a.events)
	if err := launcher.Fire(cp.Vector{}, 0); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if a.events.count(ecs.EventShotFired) != 1 {
		t.Fatalf("expected ShotFired")
	}

	a.sys.PhysicsUpdate(1)
	if len(first.taken) != 1 || first.hp != 90 {
		t.Fatalf("first target should take one hit, got %v", first.taken)
	}
	if len(second.taken) != 0 {
		t.Fatalf("standard round should not reach the second target")
	}
	if mag.Active() != 0 {
		t.Fatalf("spent round should return to the pool")
	}
	if a.events.count(ecs.EventProjectileHit) != 1 {
		t.Fatalf("expected one ProjectileHit event")
	}
}

func TestArmorPiercingPassesThroughTargets(t *testing.T) {
	a := newArena()
	first := a.addTarget(10, 30, 100)
	second := a.addTarget(11, 50, 100)
	third := a.addTarget(12, 70, 100)

	stats := testStats
	stats.Pierce = 1
	mag, err := NewMagazine[*ArmorPiercing]("armor_piercing", stats, pool.Config{Size: 2}, pool.FactoryFunc[*ArmorPiercing](NewArmorPiercing))
	if err != nil {
		t.Fatalf("magazine: %v", err)
	}
	a.sys.Add(mag)
	if _, _, err := mag.Load(1, cp.Vector{}, 0); err != nil {
		t.Fatalf("load: %v", err)
	}

	a.sys.PhysicsUpdate(1)
	if len(first.taken) != 1 || len(second.taken) != 1 {
		t.Fatalf("expected first two targets hit once, got %v %v", first.taken, second.taken)
	}
	if len(third.taken) != 0 {
		t.Fatalf("round should stop after its pierce budget")
	}
	if mag.Active() != 0 {
		t.Fatalf("spent round should return to the pool")
	}
}

func TestArmorPiercingStopsAtObstacle(t *testing.T) {
	a := newArena()
	a.space.AddBox(0, cp.BB{L: 20, B: -10, R: 25, T: 10}, physics.LayerObstacle)
	behind := a.addTarget(10, 50, 100)

	stats := testStats
	stats.Pierce = 3
	mag, _ := NewMagazine[*ArmorPiercing]("armor_piercing", stats, pool.Config{Size: 1}, pool.FactoryFunc[*ArmorPiercing](NewArmorPiercing))
	a.sys.Add(mag)
	_, _, _ = mag.Load(1, cp.Vector{}, 0)

	a.sys.PhysicsUpdate(1)
	if len(behind.taken) != 0 {
		t.Fatalf("obstacle should stop armor piercing rounds")
	}
	if mag.Active() != 0 {
		t.Fatalf("round should be spent on the obstacle")
	}
}

func TestRoundsExpire(t *testing.T) {
	a := newArena()
	mag, _ := NewMagazine[*Standard]("standard", testStats, pool.Config{Size: 1}, pool.FactoryFunc[*Standard](NewStandard))
	a.sys.Add(mag)
	_, round, _ := mag.Load(1, cp.Vector{}, 0)

	a.sys.PhysicsUpdate(1)
	if mag.Active() != 1 {
		t.Fatalf("round should still be flying")
	}
	if math.Abs(round.Position.X-100) > 1e-9 {
		t.Fatalf("expected round at x=100, got %v", round.Position)
	}
	a.sys.PhysicsUpdate(1)
	if mag.Active() != 0 || a.sys.Active() != 0 {
		t.Fatalf("round should expire after its lifetime")
	}
}

func TestLauncherReportsExhaustion(t *testing.T) {
	a := newArena()
	mag, _ := NewMagazine[*Standard]("standard", testStats, pool.Config{Size: 1, Policy: pool.ExhaustFail}, pool.FactoryFunc[*Standard](NewStandard))
	launcher := NewLauncher(mag, 1, a.events)
	if err := launcher.Fire(cp.Vector{}, 0); err != nil {
		t.Fatalf("first fire: %v", err)
	}
	err := launcher.Fire(cp.Vector{}, 0)
	if !errors.Is(err, pool.ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if a.events.count(ecs.EventShotFired) != 1 {
		t.Fatalf("failed fire must not emit ShotFired")
	}
}

func TestMagazineRejectsInvalidConfig(t *testing.T) {
	_, err := NewMagazine[*Standard]("standard", testStats, pool.Config{}, pool.FactoryFunc[*Standard](NewStandard))
	if !errors.Is(err, pool.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}
