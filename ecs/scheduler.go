package ecs

import "math"

// LogicSystem runs once per frame with the frame delta.
type LogicSystem interface {
	LogicUpdate(dt float64)
}

// PhysicsSystem runs at the scheduler's fixed step.
type PhysicsSystem interface {
	PhysicsUpdate(dt float64)
}

const (
	DefaultFixedStep = 1.0 / 50.0
	DefaultMaxSteps  = 5
)

// Scheduler drives logic at frame cadence and physics at a fixed cadence
// from an accumulator. Physics catch-up runs before the frame's logic pass.
type Scheduler struct {
	logic   []LogicSystem
	physics []PhysicsSystem

	fixedStep   float64
	maxSteps    int
	accumulator float64

	frames       uint64
	physicsTicks uint64
}

func NewScheduler(fixedStep float64, maxSteps int) *Scheduler {
	if fixedStep <= 0 {
		fixedStep = DefaultFixedStep
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Scheduler{fixedStep: fixedStep, maxSteps: maxSteps}
}

func (s *Scheduler) AddLogic(system LogicSystem) {
	if system == nil {
		return
	}
	s.logic = append(s.logic, system)
}

func (s *Scheduler) AddPhysics(system PhysicsSystem) {
	if system == nil {
		return
	}
	s.physics = append(s.physics, system)
}

// Advance consumes one frame of dt seconds and returns how many physics steps
// ran. Backlog beyond maxSteps is dropped rather than carried forward.
func (s *Scheduler) Advance(dt float64) int {
	if s == nil || dt < 0 || math.IsNaN(dt) {
		return 0
	}
	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.fixedStep && steps < s.maxSteps {
		for _, system := range s.physics {
			system.PhysicsUpdate(s.fixedStep)
		}
		s.accumulator -= s.fixedStep
		s.physicsTicks++
		steps++
	}
	if s.accumulator >= s.fixedStep {
		s.accumulator = math.Mod(s.accumulator, s.fixedStep)
	}

	for _, system := range s.logic {
		system.LogicUpdate(dt)
	}
	s.frames++
	return steps
}

func (s *Scheduler) FixedStep() float64 {
	return s.fixedStep
}

// Frames returns how many logic passes have run.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// PhysicsTicks returns how many fixed physics steps have run.
func (s *Scheduler) PhysicsTicks() uint64 {
	return s.physicsTicks
}
