// Package engine implements the runtime engine: a pure transition over a
// system of control loops, rules, actions, and finite state machines.
//
// Next computes one tick deterministically from an owned SystemState and a
// time step, returning the next state plus any accumulated errors — a
// failing loop, rule, or transition never aborts the rest of the tick.
//
// Grounded on the reference runtime's SyncRuntime (msr-legacy/src/runtime.rs
// and src/runtime.rs): apply setpoints, step loops, decrement timeouts,
// evaluate rules, apply rule actions, step state machines, apply transition
// actions, in that order.
package engine
