package engine

import (
	"fmt"

	"github.com/slowtec/msr/msrerr"
	"github.com/slowtec/msr/value"
)

// SourceKind identifies where a Source reads its value from.
type SourceKind int

const (
	SourceInput SourceKind = iota
	SourceOutput
	SourceMemory
	SourceSetpoint
	SourceTimeout
	SourceConst
)

// Source names a value a rule, action, or transition condition reads from a
// SystemState, or a constant embedded in the configuration itself.
type Source struct {
	Kind  SourceKind
	Name  string
	Const value.Value
}

// In references a named input.
func In(name string) Source { return Source{Kind: SourceInput, Name: name} }

// Out references a named output.
func Out(name string) Source { return Source{Kind: SourceOutput, Name: name} }

// Mem references a named memory value.
func Mem(name string) Source { return Source{Kind: SourceMemory, Name: name} }

// Setpoint references a named loop's setpoint.
func Setpoint(name string) Source { return Source{Kind: SourceSetpoint, Name: name} }

// TimeoutRef references a named timeout's remaining duration.
func TimeoutRef(name string) Source { return Source{Kind: SourceTimeout, Name: name} }

// Const embeds a literal value as a Source.
func Const(v value.Value) Source { return Source{Kind: SourceConst, Const: v} }

// Resolve reads the Source's value out of state. A missing name reports
// LookupMissingError (spec section 4.5, step 4).
func (s Source) Resolve(state *SystemState) (value.Value, error) {
	switch s.Kind {
	case SourceInput:
		if v, ok := state.Inputs[s.Name]; ok {
			return v, nil
		}
		return value.Value{}, missing("input", s.Name)
	case SourceOutput:
		if v, ok := state.Outputs[s.Name]; ok {
			return v, nil
		}
		return value.Value{}, missing("output", s.Name)
	case SourceMemory:
		if v, ok := state.Memory[s.Name]; ok {
			return v, nil
		}
		return value.Value{}, missing("memory", s.Name)
	case SourceSetpoint:
		if v, ok := state.Setpoints[s.Name]; ok {
			return v, nil
		}
		return value.Value{}, missing("setpoint", s.Name)
	case SourceTimeout:
		if d, ok := state.Timeouts[s.Name]; ok {
			return value.Duration(d), nil
		}
		return value.Value{}, missing("timeout", s.Name)
	case SourceConst:
		return s.Const, nil
	default:
		return value.Value{}, &msrerr.StateInvalidError{Message: "engine: source has no kind"}
	}
}

func missing(category, name string) error {
	return &msrerr.LookupMissingError{
		Name:    name,
		Message: fmt.Sprintf("%s %q does not exist", category, name),
	}
}
