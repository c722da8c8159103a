package engine

import "time"

// Loop continuously steps one controller against one input/output pair
// (spec section 4.5, step 2).
type Loop struct {
	ID         string
	Inputs     []string
	Outputs    []string
	Controller ControllerConfig
}

// Rule connects a boolean condition to a list of action ids (spec section
// 4.5, step 4).
type Rule struct {
	ID        string
	Condition BoolExpr
	Actions   []string
}

// ControllerAction optionally resets a controller's state and/or starts or
// stops its loop (spec section 4.5, step 5).
type ControllerAction struct {
	Reset  bool
	Active *bool // nil leaves the loop's active/inactive status untouched
}

// Action modifies outputs, memory, setpoints, controllers, and timeouts when
// triggered by an active rule or a firing FSM transition (spec section 4.5,
// steps 5 and 7). Output/memory/setpoint sources are resolved against the
// tick's original (pre-tick) state; timeout durations are literal values.
type Action struct {
	ID          string
	Outputs     map[string]Source
	Memory      map[string]Source
	Setpoints   map[string]Source
	Controllers map[string]ControllerAction
	// Timeouts maps a timeout id to the duration to create it with (only if
	// not already present) or nil to cancel it.
	Timeouts map[string]*time.Duration
}

// Interval is a periodic duration entity, for a host driver (e.g. the
// worker) to schedule recurring events against. The engine tick itself does
// not consume Intervals.
type Interval struct {
	ID       string
	Duration time.Duration
}
