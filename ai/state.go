package ai

// StateID identifies a registered AI state.
type StateID string

// State is one behavioral mode of an entity. Hooks are only ever invoked by
// the owning StateMachine, and only while the state is current.
type State interface {
	Enter()
	Exit()
	// DoChecks refreshes the sensor-derived flags used for transition
	// decisions. States call it at the top of LogicUpdate.
	DoChecks()
	LogicUpdate(dt float64)
	PhysicsUpdate(dt float64)
}

// BaseState provides no-op hooks and time-in-state bookkeeping. Concrete
// states embed it and override what they need.
type BaseState struct {
	elapsed float64
}

// Enter resets the time-in-state clock.
func (s *BaseState) Enter() {
	s.elapsed = 0
}

func (s *BaseState) Exit() {}

func (s *BaseState) DoChecks() {}

// LogicUpdate advances the time-in-state clock.
func (s *BaseState) LogicUpdate(dt float64) {
	s.Tick(dt)
}

func (s *BaseState) PhysicsUpdate(dt float64) {}

// Tick advances the time-in-state clock by dt seconds.
func (s *BaseState) Tick(dt float64) {
	if dt > 0 {
		s.elapsed += dt
	}
}

// TimeInState returns seconds of logic time since the last Enter.
func (s *BaseState) TimeInState() float64 {
	return s.elapsed
}
