package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/component"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/enemy"
	"github.com/milk9111/sentry/levels"
	"github.com/milk9111/sentry/physics"
	"github.com/milk9111/sentry/prefabs"
	"github.com/milk9111/sentry/projectile"
)

// wallThickness is the radius of the arena boundary segments.
const wallThickness = 2.0

// Outcome is the state of the encounter.
type Outcome int

const (
	OutcomePlaying Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "playing"
	}
}

// World owns level loading, the simulation services and spawn logic.
type World struct {
	Level       *levels.Level
	Registry    *ecs.Registry
	Events      *ecs.EventBus
	Space       *physics.Space
	Scheduler   *ecs.Scheduler
	Player      *Player
	Turrets     []*enemy.Turret
	Enemies     *EnemiesController
	Projectiles *projectile.System
	Outcome     Outcome

	levelPath string
	armory    *armory
	targets   map[ecs.Entity]component.Damageable
	obstacles []ecs.Entity
	wall      ecs.Entity
	elapsed   float64
}

// NewWorld creates a new world and loads the requested level.
func NewWorld(levelPath string) (*World, error) {
	w := &World{}
	if err := w.Load(levelPath); err != nil {
		return nil, err
	}
	return w, nil
}

// Load builds a fresh simulation for a level and spawns its entities. On
// error the world keeps the simulation it had before the call.
func (w *World) Load(levelPath string) (err error) {
	if w == nil {
		return fmt.Errorf("world is nil")
	}
	prev := *w
	defer func() {
		if err != nil {
			*w = prev
		}
	}()

	lvl, err := loadLevel(levelPath)
	if err != nil {
		return err
	}
	playerSpec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return fmt.Errorf("load player prefab: %w", err)
	}

	w.Level = lvl
	w.levelPath = levelPath
	w.Registry = ecs.NewRegistry()
	w.Events = ecs.NewEventBus()
	w.Space = physics.NewSpace()
	w.Scheduler = ecs.NewScheduler(ecs.DefaultFixedStep, ecs.DefaultMaxSteps)
	w.Turrets = nil
	w.Outcome = OutcomePlaying
	w.targets = make(map[ecs.Entity]component.Damageable)
	w.obstacles = nil
	w.elapsed = 0

	w.wall = w.Registry.Create()
	w.Space.AddBounds(w.wall, lvl.Width, lvl.Height, wallThickness, physics.LayerObstacle)
	for _, o := range lvl.Obstacles {
		id := w.Registry.Create()
		w.Space.AddBox(id, cp.BB{L: o.X, B: o.Y, R: o.X + o.W, T: o.Y + o.H}, physics.LayerObstacle)
		w.obstacles = append(w.obstacles, id)
	}

	w.Enemies = NewEnemiesController(w.Events)
	w.Projectiles = projectile.NewSystem(w.Space, projectile.ResolverFunc(w.damageable), w.Events)
	w.armory = newArmory(w.Projectiles)

	bounds := cp.BB{L: wallThickness, B: wallThickness, R: lvl.Width - wallThickness, T: lvl.Height - wallThickness}
	w.Player = NewPlayer(w.Registry.Create(), cp.Vector{X: lvl.Player.X, Y: lvl.Player.Y}, playerSpec, bounds, w.Space, w.Events)
	w.targets[w.Player.Entity()] = w.Player
	if playerSpec.Ammo != "" {
		weapon, werr := w.armory.launcher(playerSpec.Ammo, w.Player.Entity(), w.Events)
		if werr != nil {
			return fmt.Errorf("player weapon: %w", werr)
		}
		w.Player.SetWeapon(weapon)
	}

	w.Events.Subscribe(ecs.EventAllEnemiesDefeated, func(ecs.Event) {
		w.Player.Deactivate()
		if w.Outcome == OutcomePlaying {
			w.Outcome = OutcomeWon
			log.Printf("system: all enemies defeated in %.2fs", w.elapsed)
		}
	})
	w.Events.Subscribe(ecs.EventPlayerDied, func(ecs.Event) {
		w.Space.Remove(w.Player.Entity())
		if w.Outcome == OutcomePlaying {
			w.Outcome = OutcomeLost
			log.Printf("system: player died after %.2fs", w.elapsed)
		}
	})

	w.Scheduler.AddPhysics(w.Player)
	w.Scheduler.AddPhysics(physicsFunc(w.turretPhysics))
	w.Scheduler.AddPhysics(w.Space)
	w.Scheduler.AddPhysics(w.Projectiles)
	w.Scheduler.AddLogic(w.Player)
	w.Scheduler.AddLogic(logicFunc(w.turretLogic))

	return w.SpawnEntities()
}

// Reset reloads the current level from scratch.
func (w *World) Reset() error {
	if w == nil {
		return fmt.Errorf("world is nil")
	}
	return w.Load(w.levelPath)
}

// SpawnEntities spawns turrets from level entities. Entities of unknown type
// are left on the level untouched. A level that spawns no enemies is
// announced as defeated straight away.
func (w *World) SpawnEntities() error {
	if w == nil || w.Level == nil {
		return nil
	}
	turrets, remaining, err := w.spawnTurretsFromEntities(w.Level.Entities)
	if err != nil {
		return err
	}
	w.Turrets = append(w.Turrets, turrets...)
	for _, e := range remaining {
		log.Printf("system: skipping unknown entity type %q at (%g,%g)", e.Type, e.X, e.Y)
	}
	if w.Enemies != nil {
		w.Enemies.AnnounceIfClear()
	}
	return nil
}

// Update advances the simulation by one frame and returns the number of
// physics steps that ran.
func (w *World) Update(frameDt float64) int {
	if w == nil || w.Scheduler == nil {
		return 0
	}
	steps := w.Scheduler.Advance(frameDt)
	w.elapsed += frameDt
	w.Events.Flush()
	w.despawn()
	return steps
}

func (w *World) Elapsed() float64 {
	return w.elapsed
}

func (w *World) turretLogic(dt float64) {
	for _, t := range w.Turrets {
		t.LogicUpdate(dt)
	}
}

func (w *World) turretPhysics(dt float64) {
	for _, t := range w.Turrets {
		t.PhysicsUpdate(dt)
	}
}

// despawn drops turrets whose explosion has finished.
func (w *World) despawn() {
	kept := w.Turrets[:0]
	for _, t := range w.Turrets {
		if !t.Removed() {
			kept = append(kept, t)
			continue
		}
		w.Space.Remove(t.ID)
		w.Registry.Destroy(t.ID)
		delete(w.targets, t.ID)
	}
	for i := len(kept); i < len(w.Turrets); i++ {
		w.Turrets[i] = nil
	}
	w.Turrets = kept
}

// Turret returns the live turret with the given id.
func (w *World) Turret(id ecs.Entity) (*enemy.Turret, bool) {
	for _, t := range w.Turrets {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Status renders a plain-text summary of the encounter.
func (w *World) Status() string {
	if w == nil || w.Level == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "level %s t=%.2fs outcome=%s\n", w.Level.Name, w.elapsed, w.Outcome)
	p := w.Player
	fmt.Fprintf(&b, "player %s hp=%.0f/%.0f pos=(%.1f,%.1f) active=%t\n",
		p.Entity(), p.CurrentHP(), p.MaxHP(), p.Position().X, p.Position().Y, p.Active)
	for _, t := range w.Turrets {
		fmt.Fprintf(&b, "turret %s state=%s hp=%.0f/%.0f tower=%.1f reload=%.2f",
			t.ID, t.State(), t.CurrentHP(), t.MaxHP(), t.Tower, t.ReloadProgress())
		if t.IsExploding() {
			b.WriteString(" exploding")
		}
		b.WriteByte('\n')
	}
	for _, name := range w.armory.names() {
		fmt.Fprintf(&b, "ammo %s active=%d/%d\n", name, w.armory.active(name), w.armory.capacity(name))
	}
	return b.String()
}

// loadLevel tries disk first, then the embedded levels.
func loadLevel(levelPath string) (*levels.Level, error) {
	if levelPath == "" {
		return nil, fmt.Errorf("level path is empty")
	}
	lvl, err := levels.Load(levelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %s: %w", levelPath, err)
	}
	return lvl, nil
}

type logicFunc func(dt float64)

func (f logicFunc) LogicUpdate(dt float64) { f(dt) }

type physicsFunc func(dt float64)

func (f physicsFunc) PhysicsUpdate(dt float64) { f(dt) }

// EachProjectile visits every live projectile across all magazines.
func (w *World) EachProjectile(fn func(ammo string, p *projectile.Projectile)) {
	for _, name := range w.armory.names() {
		if m, ok := w.armory.standard[name]; ok {
			m.Each(func(p *projectile.Projectile) { fn(name, p) })
		}
		if m, ok := w.armory.piercing[name]; ok {
			m.Each(func(p *projectile.Projectile) { fn(name, p) })
		}
	}
}
