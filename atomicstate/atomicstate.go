// Package atomicstate implements a lock-free, cache-line-padded finite
// state machine with accept/ignore/reject transition semantics.
//
// It is grounded on the teacher's eventloop.FastState
// (github.com/joeycumines/go-utilpkg, eventloop/state.go): an atomic.Uint64
// wrapped with relaxed peek/acquire load and release-ordering CAS/swap, plus
// cache-line padding to avoid false sharing between the real-time worker
// core and any non-real-time sender cores. Unlike FastState (whose
// TryTransition is a bare CAS returning only a bool), Machine distinguishes
// Accepted/Ignored/Rejected so callers layering domain rules on top (see
// package handshake) can tell "already in desired state" apart from "the
// machine refused the move".
package atomicstate

import "sync/atomic"

// State is any finite, comparable, cheaply-copyable state tag.
type State interface {
	comparable
}

// Outcome is the result of a transition attempt.
type Outcome[S State] struct {
	// Kind distinguishes Accepted, Ignored, and Rejected.
	Kind OutcomeKind
	// Prev is valid when Kind == Accepted: the state immediately before.
	Prev S
	// Current is valid when Kind == Rejected: the state observed at the
	// CAS instant, which caused the rejection.
	Current S
}

// OutcomeKind enumerates the three transition results.
type OutcomeKind uint8

const (
	// Accepted means the transition was applied; Outcome.Prev holds the
	// state immediately prior.
	Accepted OutcomeKind = iota
	// Ignored means the state already equalled the desired value; no
	// change was made, and no notification (see package handshake) fires.
	Ignored
	// Rejected means a conditional transition's expected value did not
	// match the observed state; Outcome.Current holds what was observed.
	Rejected
)

// Machine is a lock-free state machine over S, holding a single atomic
// word. The zero Machine is not usable; construct with New.
//
// Machine is cache-line padded on both sides of the stored value, matching
// the teacher's FastState layout, to prevent false sharing when a
// real-time worker core polls Peek/Load while other cores mutate the state
// via Switch*.
type Machine[S State] struct {
	_     [64]byte
	v     atomic.Uint64
	_     [56]byte
	toU64 func(S) uint64
	toS   func(uint64) S
}

// New constructs a Machine starting in initial, using toU64/toS to map the
// state type to/from the single atomic word. Most callers will use a small
// enum backed by an integer kind, making toU64/toS trivial casts.
func New[S State](initial S, toU64 func(S) uint64, toS func(uint64) S) *Machine[S] {
	m := &Machine[S]{toU64: toU64, toS: toS}
	m.v.Store(toU64(initial))
	return m
}

// Peek performs a relaxed-ordering read, suitable for a real-time hot path
// that does not need to synchronize with writes performed by a sender
// before the transition.
func (m *Machine[S]) Peek() S {
	return m.toS(m.v.Load())
}

// Load performs an acquire-ordering read: observing a new state here
// guarantees visibility of any writes the sender performed before
// requesting the transition (those writes used release ordering).
func (m *Machine[S]) Load() S {
	// sync/atomic.Uint64.Load already provides acquire semantics on all
	// supported architectures; Peek and Load share an implementation, the
	// distinction is about caller intent (documented ordering contract),
	// consistent with how the teacher's FastState.Load is specified.
	return m.toS(m.v.Load())
}

// SwitchToDesired unconditionally replaces the state with desired, using
// release ordering so callers observing Accepted and then synchronizing
// (e.g. via a handshake's relay) see this store's writes. Returns Ignored
// when the prior value already equalled desired.
func (m *Machine[S]) SwitchToDesired(desired S) Outcome[S] {
	d := m.toU64(desired)
	for {
		prev := m.v.Load()
		if prev == d {
			return Outcome[S]{Kind: Ignored}
		}
		if m.v.CompareAndSwap(prev, d) {
			return Outcome[S]{Kind: Accepted, Prev: m.toS(prev)}
		}
	}
}

// SwitchFromExpectedToDesired performs a CAS: if the observed state equals
// expected and differs from desired, it becomes desired (Accepted). If the
// observed state already equals desired, nothing changes (Ignored). Any
// other observed state yields Rejected with Current set to what was seen.
func (m *Machine[S]) SwitchFromExpectedToDesired(expected, desired S) Outcome[S] {
	e := m.toU64(expected)
	d := m.toU64(desired)
	current := m.v.Load()
	if current == d {
		return Outcome[S]{Kind: Ignored}
	}
	if current != e {
		return Outcome[S]{Kind: Rejected, Current: m.toS(current)}
	}
	if m.v.CompareAndSwap(e, d) {
		return Outcome[S]{Kind: Accepted, Prev: expected}
	}
	// Lost the race between the load above and the CAS; re-read to report
	// an accurate Current/Ignored outcome rather than spinning, since
	// callers treat a single call as a single attempt (see spec section 8:
	// "a call returns ... iff immediately before the call state == e").
	current = m.v.Load()
	if current == d {
		return Outcome[S]{Kind: Ignored}
	}
	return Outcome[S]{Kind: Rejected, Current: m.toS(current)}
}
