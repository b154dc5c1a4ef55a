package ai

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidTransition  = errors.New("ai: invalid transition")
	ErrNilState           = errors.New("ai: state is nil")
	ErrDuplicateState     = errors.New("ai: state already registered")
	ErrAlreadyInitialized = errors.New("ai: state machine already initialized")
)

// StateMachine holds exactly one current state once initialized. States are
// registered up front and reused across transitions.
type StateMachine struct {
	states    map[StateID]State
	current   State
	currentID StateID

	// transitioning is set while Exit/Enter hooks run so a hook cannot start
	// a nested transition.
	transitioning bool

	// OnChange runs after a transition has completed.
	OnChange func(from, to StateID)
}

func NewStateMachine() *StateMachine {
	return &StateMachine{states: make(map[StateID]State)}
}

// Register adds a state under id.
func (m *StateMachine) Register(id StateID, s State) error {
	if s == nil {
		return fmt.Errorf("%w: %q", ErrNilState, id)
	}
	if m.states == nil {
		m.states = make(map[StateID]State)
	}
	if _, ok := m.states[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateState, id)
	}
	m.states[id] = s
	return nil
}

// Initialize sets the first current state and enters it.
func (m *StateMachine) Initialize(id StateID) error {
	if m.current != nil {
		return ErrAlreadyInitialized
	}
	next, ok := m.states[id]
	if !ok {
		return fmt.Errorf("%w: %q is not registered", ErrInvalidTransition, id)
	}
	m.transitioning = true
	m.current = next
	m.currentID = id
	next.Enter()
	m.transitioning = false
	if m.OnChange != nil {
		m.OnChange("", id)
	}
	return nil
}

// ChangeState exits the current state, switches to id and enters it. Exit
// always completes before Enter starts. It is safe to call from the current
// state's LogicUpdate; the new state's LogicUpdate first runs on the next
// tick.
//
// Changing to an unregistered state, before Initialize, or from inside an
// Enter/Exit hook is a programming error and panics with an error wrapping
// ErrInvalidTransition.
func (m *StateMachine) ChangeState(id StateID) {
	if m.current == nil {
		panic(fmt.Errorf("%w: change to %q before Initialize", ErrInvalidTransition, id))
	}
	if m.transitioning {
		panic(fmt.Errorf("%w: change to %q during %q transition", ErrInvalidTransition, id, m.currentID))
	}
	next, ok := m.states[id]
	if !ok {
		panic(fmt.Errorf("%w: %q is not registered", ErrInvalidTransition, id))
	}

	from := m.currentID
	m.transitioning = true
	m.current.Exit()
	m.current = next
	m.currentID = id
	next.Enter()
	m.transitioning = false

	if m.OnChange != nil {
		m.OnChange(from, id)
	}
}

// LogicUpdate runs the current state's logic hook.
func (m *StateMachine) LogicUpdate(dt float64) {
	if m == nil || m.current == nil {
		return
	}
	m.current.LogicUpdate(dt)
}

// PhysicsUpdate runs the current state's physics hook.
func (m *StateMachine) PhysicsUpdate(dt float64) {
	if m == nil || m.current == nil {
		return
	}
	m.current.PhysicsUpdate(dt)
}

func (m *StateMachine) Current() State {
	if m == nil {
		return nil
	}
	return m.current
}

func (m *StateMachine) CurrentID() StateID {
	if m == nil {
		return ""
	}
	return m.currentID
}

func (m *StateMachine) Has(id StateID) bool {
	if m == nil {
		return false
	}
	_, ok := m.states[id]
	return ok
}

// States returns the registered ids in sorted order.
func (m *StateMachine) States() []StateID {
	if m == nil {
		return nil
	}
	out := make([]StateID, 0, len(m.states))
	for id := range m.states {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
