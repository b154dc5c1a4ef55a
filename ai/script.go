package ai

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptHost supplies the functions a scripted state can reach through its
// engine map, e.g. sensors and actuators of the owning entity.
type ScriptHost interface {
	ScriptFuncs() map[string]tengo.CallableFunc
}

// Scripts define any of these hooks; phases without one are skipped:
//
//	on_enter := func(engine, state) {}
//	do_checks := func(engine, state) {}
//	update := func(engine, state, dt) {}
//	physics := func(engine, state, dt) {}
//	on_exit := func(engine, state) {}
//
// state is a map that survives across ticks; engine.transition(id) requests a
// transition that is applied at the end of the current LogicUpdate.
var scriptHooks = []struct {
	phase string
	fn    string
	args  string
}{
	{"enter", "on_enter", "__engine, __state"},
	{"checks", "do_checks", "__engine, __state"},
	{"update", "update", "__engine, __state, __dt"},
	{"physics", "physics", "__engine, __state, __dt"},
	{"exit", "on_exit", "__engine, __state"},
}

// scriptDispatch routes __phase to the hooks in defined.
func scriptDispatch(defined map[string]bool) string {
	var b strings.Builder
	for _, h := range scriptHooks {
		if !defined[h.phase] {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" else ")
		}
		fmt.Fprintf(&b, "if __phase == %q {\n\t%s(%s)\n}", h.phase, h.fn, h.args)
	}
	b.WriteString("\n")
	return b.String()
}

// ScriptedState is a State whose hooks run tengo code.
type ScriptedState struct {
	BaseState

	id       StateID
	machine  *StateMachine
	compiled *tengo.Compiled
	hooks    map[string]bool
	data     *tengo.Map
	engine   *tengo.ImmutableMap
	pending  StateID
}

// NewScriptedState compiles src for the state id. The machine is a borrowed
// reference used to apply script-requested transitions.
func NewScriptedState(id StateID, machine *StateMachine, src []byte, host ScriptHost) (*ScriptedState, error) {
	if machine == nil {
		return nil, fmt.Errorf("ai: scripted state %q: nil state machine", id)
	}

	hooks, err := definedHooks(src)
	if err != nil {
		return nil, fmt.Errorf("ai: compile scripted state %q: %w", id, err)
	}
	compiled, err := compileScript(string(src) + "\n" + scriptDispatch(hooks))
	if err != nil {
		return nil, fmt.Errorf("ai: compile scripted state %q: %w", id, err)
	}

	s := &ScriptedState{
		id:       id,
		machine:  machine,
		compiled: compiled,
		hooks:    hooks,
		data:     &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.engine = s.buildEngine(host)
	return s, nil
}

func compileScript(src string) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return script.Compile()
}

// definedHooks runs the bare source once and reports which phases have a
// hook defined.
func definedHooks(src []byte) (map[string]bool, error) {
	compiled, err := compileScript(string(src))
	if err != nil {
		return nil, err
	}
	if err := compiled.Run(); err != nil {
		return nil, err
	}
	hooks := make(map[string]bool, len(scriptHooks))
	for _, h := range scriptHooks {
		if compiled.IsDefined(h.fn) {
			hooks[h.phase] = true
		}
	}
	return hooks, nil
}

// ID returns the id the state was compiled for.
func (s *ScriptedState) ID() StateID {
	return s.id
}

// Data exposes the script's persistent state map.
func (s *ScriptedState) Data() map[string]any {
	out := make(map[string]any, len(s.data.Value))
	for k, v := range s.data.Value {
		out[k] = tengo.ToInterface(v)
	}
	return out
}

func (s *ScriptedState) Enter() {
	s.BaseState.Enter()
	s.run("enter", 0)
}

func (s *ScriptedState) Exit() {
	s.run("exit", 0)
	s.pending = ""
}

func (s *ScriptedState) DoChecks() {
	s.run("checks", 0)
}

func (s *ScriptedState) LogicUpdate(dt float64) {
	s.Tick(dt)
	s.DoChecks()
	s.run("update", dt)

	next := s.pending
	s.pending = ""
	if next == "" {
		return
	}
	if !s.machine.Has(next) {
		log.Printf("ai: scripted state %q requested unknown state %q", s.id, next)
		return
	}
	s.machine.ChangeState(next)
}

func (s *ScriptedState) PhysicsUpdate(dt float64) {
	s.run("physics", dt)
}

func (s *ScriptedState) run(phase string, dt float64) {
	if !s.hooks[phase] {
		return
	}
	if err := s.runPhase(phase, dt); err != nil {
		log.Printf("ai: scripted state %q %s error: %v", s.id, phase, err)
	}
}

func (s *ScriptedState) runPhase(phase string, dt float64) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.data); err != nil {
		return err
	}
	if err := s.compiled.Set("__dt", dt); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *ScriptedState) buildEngine(host ScriptHost) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	if host != nil {
		for name, fn := range host.ScriptFuncs() {
			values[name] = &tengo.UserFunction{Name: name, Value: fn}
		}
	}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		s.pending = StateID(name)
		return tengo.TrueValue, nil
	}}

	values["time_in_state"] = &tengo.UserFunction{Name: "time_in_state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.TimeInState()}, nil
	}}

	values["state_id"] = &tengo.UserFunction{Name: "state_id", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: string(s.id)}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// Bool converts a Go bool into a tengo value for host functions.
func Bool(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// Float converts a float64 into a tengo value for host functions.
func Float(v float64) tengo.Object {
	return &tengo.Float{Value: v}
}

// ArgFloat reads args[i] as a number, defaulting to 0.
func ArgFloat(args []tengo.Object, i int) float64 {
	if i < 0 || i >= len(args) {
		return 0
	}
	switch v := args[i].(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}
