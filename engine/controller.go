package engine

import "time"

// ControllerKind tags a ControllerState/ControllerConfig variant (spec
// section 9, "Generic controller state" — a tagged-variant tree, dispatch by
// match rather than dynamic calls).
type ControllerKind int

const (
	ControllerPid ControllerKind = iota
	ControllerBangBang
)

// PidState is a PID controller's internal state between ticks.
type PidState struct {
	Target    float64
	PrevValue *float64 // nil means "no previous sample yet"
	P, I, D   float64
}

// PidConfig is a PID controller's fixed coefficients and limits.
type PidConfig struct {
	KP, KI, KD   float64
	DefaultTarget float64
	Min, Max     *float64
	PMin, PMax   *float64
	IMin, IMax   *float64
}

// BangBangState is a bang-bang controller's internal state between ticks.
type BangBangState struct {
	Current   bool
	Threshold float64
}

// BangBangConfig is a bang-bang controller's fixed configuration.
type BangBangConfig struct {
	DefaultThreshold float64
	Hysteresis       float64
}

// ControllerState is the tagged union of a loop's controller state (spec
// section 3, "controllers").
type ControllerState struct {
	Kind    ControllerKind
	Pid     PidState
	BangBang BangBangState
}

// ControllerConfig is the tagged union of a loop's controller configuration.
type ControllerConfig struct {
	Kind    ControllerKind
	Pid     PidConfig
	BangBang BangBangConfig
}

// defaultState materializes the controller's initial state from its
// configured defaults (spec section 4.5, step 2a).
func (c ControllerConfig) defaultState() ControllerState {
	switch c.Kind {
	case ControllerBangBang:
		return ControllerState{Kind: ControllerBangBang, BangBang: BangBangState{Threshold: c.BangBang.DefaultThreshold}}
	default:
		return ControllerState{Kind: ControllerPid, Pid: PidState{Target: c.Pid.DefaultTarget}}
	}
}

func limit(min, max *float64, v float64) float64 {
	if max != nil && v > *max {
		v = *max
	}
	if min != nil && v < *min {
		v = *min
	}
	return v
}

// stepPid computes one PID tick (spec section 4.5, step 2d).
func stepPid(cfg PidConfig, state PidState, actual float64, dt time.Duration) (PidState, float64) {
	errP := state.Target - actual
	state.P = limit(cfg.PMin, cfg.PMax, cfg.KP*errP)

	deltaT := dt.Seconds()
	state.I = limit(cfg.IMin, cfg.IMax, state.I+cfg.KI*errP*deltaT)

	if deltaT == 0 {
		state.D = 0
	} else if state.PrevValue != nil {
		state.D = cfg.KD * (*state.PrevValue - actual) / deltaT
	} else {
		state.D = 0
	}

	prev := actual
	state.PrevValue = &prev

	y := limit(cfg.Min, cfg.Max, state.P+state.I+state.D)
	return state, y
}

// stepBangBang computes one bang-bang tick (spec section 4.5, step 2d). A
// NaN actual leaves Current untouched.
func stepBangBang(cfg BangBangConfig, state BangBangState, actual float64) BangBangState {
	if actual != actual { // NaN
		return state
	}
	if actual > state.Threshold+cfg.Hysteresis {
		state.Current = true
	} else if actual < state.Threshold-cfg.Hysteresis {
		state.Current = false
	}
	return state
}
