package value

import (
	"fmt"
	"time"

	"github.com/slowtec/msr/msrerr"
)

// RegisterIndex identifies a single register within a group.
type RegisterIndex uint64

// RegisterSpec is one (index, type) pair within a RegisterGroup. Gate, if
// set, conditions the raw reading before it becomes an observed Value -
// only meaningful when Type is KindFloat32 or KindFloat64.
type RegisterSpec struct {
	Index RegisterIndex
	Type  Kind
	Gate  *IoGate
}

// RegisterGroup is a named ordered list of register specs. Registers appear
// at most once in a group; use NewRegisterGroup to construct a validated
// group.
type RegisterGroup struct {
	Name     string
	Registers []RegisterSpec
}

// NewRegisterGroup validates that no register index repeats and returns the
// constructed group.
func NewRegisterGroup(name string, registers []RegisterSpec) (RegisterGroup, error) {
	seen := make(map[RegisterIndex]struct{}, len(registers))
	for _, r := range registers {
		if _, dup := seen[r.Index]; dup {
			return RegisterGroup{}, &msrerr.ConfigInvalidError{
				Message: fmt.Sprintf("register group %q: duplicate register index %d", name, r.Index),
			}
		}
		seen[r.Index] = struct{}{}
	}
	cp := make([]RegisterSpec, len(registers))
	copy(cp, registers)
	return RegisterGroup{Name: name, Registers: cp}, nil
}

// Len returns the number of registers configured in the group.
func (g RegisterGroup) Len() int { return len(g.Registers) }

// ObservedRegisterValues is a single observation: a wall-clock timestamp
// plus a sequence of optional values aligned positionally with a
// RegisterGroup.
type ObservedRegisterValues struct {
	ObservedAt time.Time
	Values     []Option
}

// Option models an optional Value (present/absent), avoiding a pointer per
// slot in the common case of absence.
type Option struct {
	Value   Value
	Present bool
}

// Some constructs a present Option.
func Some(v Value) Option { return Option{Value: v, Present: true} }

// None constructs an absent Option.
func None() Option { return Option{} }

// ApplyGates returns a copy of obs with each present float-valued slot
// passed through its RegisterSpec's IoGate, if one is configured. Non-float
// slots and slots without a configured Gate pass through unchanged. obs must
// already satisfy group's cardinality (see Validate); ApplyGates does not
// re-check it.
func (g RegisterGroup) ApplyGates(obs ObservedRegisterValues) ObservedRegisterValues {
	out := ObservedRegisterValues{
		ObservedAt: obs.ObservedAt,
		Values:     make([]Option, len(obs.Values)),
	}
	copy(out.Values, obs.Values)

	for i, spec := range g.Registers {
		if i >= len(out.Values) || spec.Gate == nil {
			continue
		}
		opt := out.Values[i]
		if !opt.Present {
			continue
		}
		switch opt.Value.Kind() {
		case KindFloat64:
			f, _ := opt.Value.Float64()
			out.Values[i] = Some(Float64(ApplyGate(*spec.Gate, f)))
		case KindFloat32:
			f, _ := opt.Value.Float64()
			out.Values[i] = Some(Float32(float32(ApplyGate(*spec.Gate, f))))
		}
	}
	return out
}

// Validate checks that obs matches group in both cardinality and, for
// present values, scalar type. Mismatch fails fast with ConfigInvalidError.
func (obs ObservedRegisterValues) Validate(group RegisterGroup) error {
	if len(obs.Values) != len(group.Registers) {
		return &msrerr.ConfigInvalidError{
			Message: fmt.Sprintf(
				"observation has %d values, group %q configures %d registers",
				len(obs.Values), group.Name, len(group.Registers),
			),
		}
	}
	for i, spec := range group.Registers {
		opt := obs.Values[i]
		if !opt.Present {
			continue
		}
		if opt.Value.Kind() != spec.Type {
			return &msrerr.ConfigInvalidError{
				Message: fmt.Sprintf(
					"observation register %d (index %d): expected type %s, got %s",
					i, spec.Index, spec.Type, opt.Value.Kind(),
				),
			}
		}
	}
	return nil
}
