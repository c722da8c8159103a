package engine

import (
	"time"

	"github.com/slowtec/msr/value"
)

// SystemState is the full state of a controlled system between ticks (spec
// section 3, "System state"). The zero value has nil maps and is not usable;
// construct one with NewSystemState.
type SystemState struct {
	Inputs  map[string]value.Value
	Outputs map[string]value.Value
	Memory  map[string]value.Value

	Setpoints     map[string]value.Value
	Controllers   map[string]ControllerState
	InactiveLoops map[string]struct{}
	StateMachines map[string]string
	Rules         map[string]bool
	Timeouts      map[string]time.Duration
}

// NewSystemState returns an empty, ready-to-use SystemState.
func NewSystemState() SystemState {
	return SystemState{
		Inputs:        map[string]value.Value{},
		Outputs:       map[string]value.Value{},
		Memory:        map[string]value.Value{},
		Setpoints:     map[string]value.Value{},
		Controllers:   map[string]ControllerState{},
		InactiveLoops: map[string]struct{}{},
		StateMachines: map[string]string{},
		Rules:         map[string]bool{},
		Timeouts:      map[string]time.Duration{},
	}
}

// Clone returns a deep copy, so a caller may hold onto the pre-tick state
// (orig) while Next mutates a separate next state.
func (s SystemState) Clone() SystemState {
	out := SystemState{
		Inputs:        make(map[string]value.Value, len(s.Inputs)),
		Outputs:       make(map[string]value.Value, len(s.Outputs)),
		Memory:        make(map[string]value.Value, len(s.Memory)),
		Setpoints:     make(map[string]value.Value, len(s.Setpoints)),
		Controllers:   make(map[string]ControllerState, len(s.Controllers)),
		InactiveLoops: make(map[string]struct{}, len(s.InactiveLoops)),
		StateMachines: make(map[string]string, len(s.StateMachines)),
		Rules:         make(map[string]bool, len(s.Rules)),
		Timeouts:      make(map[string]time.Duration, len(s.Timeouts)),
	}
	for k, v := range s.Inputs {
		out.Inputs[k] = v
	}
	for k, v := range s.Outputs {
		out.Outputs[k] = v
	}
	for k, v := range s.Memory {
		out.Memory[k] = v
	}
	for k, v := range s.Setpoints {
		out.Setpoints[k] = v
	}
	for k, v := range s.Controllers {
		out.Controllers[k] = v
	}
	for k := range s.InactiveLoops {
		out.InactiveLoops[k] = struct{}{}
	}
	for k, v := range s.StateMachines {
		out.StateMachines[k] = v
	}
	for k, v := range s.Rules {
		out.Rules[k] = v
	}
	for k, v := range s.Timeouts {
		out.Timeouts[k] = v
	}
	return out
}
