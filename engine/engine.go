package engine

import (
	"sort"
	"time"

	"github.com/slowtec/msr/msrerr"
	"github.com/slowtec/msr/value"
)

// Runtime is the static configuration driving one Next tick: the loops,
// rules, actions, and state machines of a controlled system. Runtime itself
// holds no mutable state — that lives entirely in SystemState.
type Runtime struct {
	Loops         []Loop
	Rules         []Rule
	Actions       []Action
	StateMachines map[string]StateMachine
}

// Next computes one tick: apply setpoints, step loops, decrement timeouts,
// evaluate rules, apply rule actions, step state machines, apply transition
// actions, in that order (spec section 4.5). A failing loop or rule is
// accumulated into the returned error rather than aborting the tick; a
// transition condition that fails to evaluate counts as not firing and is
// not accumulated. The returned state is always the full next state.
func (rt *Runtime) Next(orig SystemState, dt time.Duration) (SystemState, error) {
	next := orig.Clone()
	agg := &msrerr.Aggregate{}

	rt.applySetpoints(orig, next)
	rt.stepLoops(next, dt, agg)
	decrementTimeouts(orig, next, dt)
	rt.evaluateRules(next, agg)

	for _, r := range rt.Rules {
		if next.Rules[r.ID] {
			rt.applyActions(r.Actions, orig, next)
		}
	}

	fsmActions := rt.stepStateMachines(next)
	for _, actions := range fsmActions {
		rt.applyActions(actions, orig, next)
	}

	return next, agg.ErrOrNil()
}

// applySetpoints updates a configured loop's controller target/threshold
// from state.setpoints, for loops whose controller was already materialized
// before this tick (spec section 4.5, step 1).
func (rt *Runtime) applySetpoints(orig, next SystemState) {
	for id, sp := range orig.Setpoints {
		if !rt.hasLoop(id) {
			continue
		}
		c, ok := orig.Controllers[id]
		if !ok {
			continue
		}
		f, ok := sp.Float64()
		if !ok {
			continue
		}
		switch c.Kind {
		case ControllerPid:
			c.Pid.Target = f
		case ControllerBangBang:
			c.BangBang.Threshold = f
		}
		next.Controllers[id] = c
	}
}

func (rt *Runtime) stepLoops(next SystemState, dt time.Duration, agg *msrerr.Aggregate) {
	for _, l := range rt.Loops {
		if _, inactive := next.InactiveLoops[l.ID]; inactive {
			continue
		}
		if _, ok := next.Controllers[l.ID]; !ok {
			next.Controllers[l.ID] = l.Controller.defaultState()
		}
		if len(l.Inputs) != 1 || len(l.Outputs) != 1 {
			agg.Add(&msrerr.StateInvalidError{Message: "engine: loop " + l.ID + " has invalid length of inputs/outputs"})
			continue
		}

		in, ok := next.Inputs[l.Inputs[0]]
		if !ok {
			agg.Add(missing("input", l.Inputs[0]))
			continue
		}
		actual, ok := in.Float64()
		if !ok {
			agg.Add(&msrerr.StateInvalidError{Message: "engine: loop " + l.ID + " requires a decimal input"})
			continue
		}

		controller := next.Controllers[l.ID]
		switch l.Controller.Kind {
		case ControllerPid:
			state, y := stepPid(l.Controller.Pid, controller.Pid, actual, dt)
			next.Controllers[l.ID] = ControllerState{Kind: ControllerPid, Pid: state}
			next.Outputs[l.Outputs[0]] = value.Float64(y)
		case ControllerBangBang:
			state := stepBangBang(l.Controller.BangBang, controller.BangBang, actual)
			next.Controllers[l.ID] = ControllerState{Kind: ControllerBangBang, BangBang: state}
			next.Outputs[l.Outputs[0]] = value.Bool(state.Current)
		}
	}
}

// decrementTimeouts applies saturating subtraction of dt to every timeout,
// clamping at zero (spec section 4.5, step 3).
func decrementTimeouts(orig, next SystemState, dt time.Duration) {
	for id, d := range orig.Timeouts {
		d -= dt
		if d < 0 {
			d = 0
		}
		next.Timeouts[id] = d
	}
}

// evaluateRules evaluates every rule's condition against the post-step
// state, accumulating lookup errors and marking a failing rule inactive for
// this tick (spec section 4.5, step 4).
func (rt *Runtime) evaluateRules(next SystemState, agg *msrerr.Aggregate) {
	for _, r := range rt.Rules {
		active, err := r.Condition.Eval(&next)
		if err != nil {
			agg.Add(err)
			next.Rules[r.ID] = false
			continue
		}
		next.Rules[r.ID] = active
	}
}

// stepStateMachines advances each state machine by at most one transition,
// in a deterministic (sorted by id) order, returning the action lists of
// every transition that fired. A transition whose condition fails to
// evaluate is treated as not firing, matching the reference runtime — FSM
// condition errors are not accumulated into the tick's error list.
func (rt *Runtime) stepStateMachines(next SystemState) [][]string {
	ids := make([]string, 0, len(rt.StateMachines))
	for id := range rt.StateMachines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var fired [][]string
	for _, id := range ids {
		sm := rt.StateMachines[id]
		current, ok := next.StateMachines[id]
		if !ok {
			current = sm.Initial
		}
		for _, t := range sm.Transitions {
			if t.From != current {
				continue
			}
			active, err := t.Condition.Eval(&next)
			if err != nil || !active {
				continue
			}
			next.StateMachines[id] = t.To
			fired = append(fired, t.Actions)
			break
		}
	}
	return fired
}

// applyActions resolves every named action's outputs/memory/setpoints
// against orig, and applies controller resets/start-stop and timeout
// create/cancel to next (spec section 4.5, steps 5 and 7). A Source that
// fails to resolve is silently skipped, matching the reference runtime.
func (rt *Runtime) applyActions(actionIDs []string, orig, next SystemState) {
	for _, id := range actionIDs {
		a, ok := rt.findAction(id)
		if !ok {
			continue
		}
		for k, src := range a.Outputs {
			if v, err := src.Resolve(&orig); err == nil {
				next.Outputs[k] = v
			}
		}
		for k, src := range a.Memory {
			if v, err := src.Resolve(&orig); err == nil {
				next.Memory[k] = v
			}
		}
		for k, src := range a.Setpoints {
			if v, err := src.Resolve(&orig); err == nil {
				next.Setpoints[k] = v
			}
		}
		for loopID, ctl := range a.Controllers {
			if ctl.Reset {
				delete(next.Controllers, loopID)
				if l, ok := rt.findLoop(loopID); ok {
					next.Controllers[loopID] = l.Controller.defaultState()
				}
			}
			if ctl.Active != nil {
				if *ctl.Active {
					delete(next.InactiveLoops, loopID)
				} else {
					next.InactiveLoops[loopID] = struct{}{}
				}
			}
		}
		for timeoutID, d := range a.Timeouts {
			if d == nil {
				delete(next.Timeouts, timeoutID)
				continue
			}
			if _, exists := next.Timeouts[timeoutID]; !exists {
				next.Timeouts[timeoutID] = *d
			}
		}
	}
}

func (rt *Runtime) hasLoop(id string) bool {
	_, ok := rt.findLoop(id)
	return ok
}

func (rt *Runtime) findLoop(id string) (Loop, bool) {
	for _, l := range rt.Loops {
		if l.ID == id {
			return l, true
		}
	}
	return Loop{}, false
}

func (rt *Runtime) findAction(id string) (Action, bool) {
	for _, a := range rt.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}
