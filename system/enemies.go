package system

import "github.com/milk9111/sentry/ecs"

// EnemiesController counts live enemies and announces AllEnemiesDefeated
// once, when the last tracked enemy is destroyed.
type EnemiesController struct {
	alive     map[ecs.Entity]struct{}
	events    ecs.Emitter
	announced bool
}

// NewEnemiesController subscribes to destroyed events on bus.
func NewEnemiesController(bus *ecs.EventBus) *EnemiesController {
	c := &EnemiesController{alive: make(map[ecs.Entity]struct{}), events: bus}
	bus.Subscribe(ecs.EventEntityDestroyed, func(evt ecs.Event) {
		c.destroyed(evt.(ecs.EntityDestroyed).Entity)
	})
	return c
}

func (c *EnemiesController) Track(e ecs.Entity) {
	c.alive[e] = struct{}{}
}

func (c *EnemiesController) Remaining() int {
	return len(c.alive)
}

func (c *EnemiesController) Defeated() bool {
	return c.announced
}

func (c *EnemiesController) destroyed(e ecs.Entity) {
	if _, ok := c.alive[e]; !ok {
		return
	}
	delete(c.alive, e)
	c.AnnounceIfClear()
}

// AnnounceIfClear emits AllEnemiesDefeated when nothing is left alive and it
// has not been announced yet.
func (c *EnemiesController) AnnounceIfClear() {
	if len(c.alive) > 0 || c.announced {
		return
	}
	c.announced = true
	if c.events != nil {
		c.events.Emit(ecs.AllEnemiesDefeated{})
	}
}
