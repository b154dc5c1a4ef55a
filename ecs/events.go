package ecs

import "github.com/jakecoffman/cp"

// EventType identifies a simulation event.
type EventType string

const (
	EventHealthChanged      EventType = "health_changed"
	EventEntityDestroyed    EventType = "entity_destroyed"
	EventAllEnemiesDefeated EventType = "all_enemies_defeated"
	EventStateChanged       EventType = "state_changed"
	EventShotFired          EventType = "shot_fired"
	EventProjectileHit      EventType = "projectile_hit"
	EventPlayerDied         EventType = "player_died"
)

// Event is a typed simulation event payload.
type Event interface {
	Type() EventType
}

// HealthChanged is emitted whenever damage or healing changes an entity's health.
type HealthChanged struct {
	Entity  Entity
	Current float32
	Max     float32
}

func (HealthChanged) Type() EventType { return EventHealthChanged }

// EntityDestroyed is emitted once when an entity's health first reaches zero.
type EntityDestroyed struct {
	Entity Entity
}

func (EntityDestroyed) Type() EventType { return EventEntityDestroyed }

// AllEnemiesDefeated is emitted once when the last tracked enemy is destroyed.
type AllEnemiesDefeated struct{}

func (AllEnemiesDefeated) Type() EventType { return EventAllEnemiesDefeated }

// StateChanged is emitted after an AI state machine completes a transition.
type StateChanged struct {
	Entity Entity
	From   string
	To     string
}

func (StateChanged) Type() EventType { return EventStateChanged }

// ShotFired is emitted when a weapon hands out a projectile.
type ShotFired struct {
	Shooter Entity
	Ammo    string
	Origin  cp.Vector
	Angle   float64
}

func (ShotFired) Type() EventType { return EventShotFired }

// ProjectileHit is emitted when a projectile connects with a collider.
type ProjectileHit struct {
	Shooter Entity
	Target  Entity
	Damage  float32
	Point   cp.Vector
}

func (ProjectileHit) Type() EventType { return EventProjectileHit }

// PlayerDied is emitted once when the player's health first reaches zero.
type PlayerDied struct {
	Entity Entity
}

func (PlayerDied) Type() EventType { return EventPlayerDied }

// Emitter accepts events. Entities only ever see this side of the bus.
type Emitter interface {
	Emit(evt Event)
}

// Handler receives dispatched events.
type Handler func(evt Event)

type subscriber struct {
	id int
	fn Handler
}

// maxFlushPasses bounds handler chains that keep emitting new events.
const maxFlushPasses = 64

// EventBus is a FIFO queue with typed subscribers. Events are queued by Emit
// and delivered in order by Flush, normally once at the end of a tick.
type EventBus struct {
	items    []Event
	handlers map[EventType][]subscriber
	nextID   int
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[EventType][]subscriber)}
}

// Emit queues an event for the next Flush.
func (b *EventBus) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.items = append(b.items, evt)
}

// Subscribe registers fn for events of type t and returns a function that
// removes the subscription.
func (b *EventBus) Subscribe(t EventType, fn Handler) (unsubscribe func()) {
	if b == nil || fn == nil {
		return func() {}
	}
	if b.handlers == nil {
		b.handlers = make(map[EventType][]subscriber)
	}
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscriber{id: id, fn: fn})
	return func() {
		subs := b.handlers[t]
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Pending returns the number of queued events.
func (b *EventBus) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Flush delivers queued events to subscribers, including events emitted by
// handlers during the flush. It returns the number of events delivered.
func (b *EventBus) Flush() int {
	if b == nil {
		return 0
	}
	delivered := 0
	for pass := 0; pass < maxFlushPasses && len(b.items) > 0; pass++ {
		batch := b.items
		b.items = nil
		for _, evt := range batch {
			for _, s := range b.handlers[evt.Type()] {
				s.fn(evt)
			}
			delivered++
		}
	}
	return delivered
}
