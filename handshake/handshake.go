// Package handshake implements the progress-hint handshake: a single
// logical channel from 0..N non-real-time sender handles to exactly one
// real-time receiver handle, carrying a three-valued hint (Continue,
// Suspend, Finish) plus coalesced wake-up notifications.
//
// The atomic state is built on package atomicstate (C1). The notification
// "relay" is grounded on the teacher's eventloop wakeup/relay machinery
// (github.com/joeycumines/go-utilpkg eventloop package): a mutex-guarded
// one-slot buffer plus a sync.Cond, with a strict None->Some edge trigger
// to avoid spurious wakeups on rapid updates. Per spec design note 9, this
// uses a condition variable rather than a channel-based relay: blocking a
// worker for millisecond-scale suspensions has lower jitter with a condvar
// than routing through a goroutine scheduler wakeup.
package handshake

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/slowtec/msr/atomicstate"
	"github.com/slowtec/msr/msrerr"
)

// Hint is the three-valued directive exchanged between senders and the
// receiver.
type Hint uint64

const (
	Continue Hint = iota
	Suspend
	Finish
)

func (h Hint) String() string {
	switch h {
	case Continue:
		return "Continue"
	case Suspend:
		return "Suspend"
	case Finish:
		return "Finish"
	default:
		return "Unknown"
	}
}

func hintToU64(h Hint) uint64 { return uint64(h) }
func u64ToHint(u uint64) Hint { return Hint(u) }

// SwitchOutcome mirrors the spec's switch-progress-hint outcomes as
// surfaced through the sender API: Accepted, Ignored, Rejected, or
// Detached (the receiver has been dropped).
type SwitchOutcomeKind uint8

const (
	SwitchAccepted SwitchOutcomeKind = iota
	SwitchIgnored
	SwitchRejected
	SwitchDetached
)

// SwitchOutcome is returned by every sender-facing mutation.
type SwitchOutcome struct {
	Kind     SwitchOutcomeKind
	Previous Hint // valid when Kind == SwitchAccepted
	Current  Hint // valid when Kind == SwitchRejected
}

// relay is a one-slot, condition-variable-backed buffer carrying a
// coalesced wake-up. The slot's content is always (), only its presence
// matters; accumulating multiple accepted transitions while the receiver
// is busy collapses to at most one pending notification (at-least-once
// handover), while the latest state is always independently readable via
// Handshake.Load.
type relay struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending bool
}

func newRelay() *relay {
	r := &relay{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// replaceNotifyOne sets the slot to present, returning whether it was
// already present, and notifies exactly one waiter on the None->Some edge.
func (r *relay) replaceNotifyOne() (previouslyPending bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previouslyPending = r.pending
	r.pending = true
	if !previouslyPending {
		r.cond.Signal()
	}
	return previouslyPending
}

// wait blocks until the slot is present and takes it. It loops internally
// to absorb spurious wakeups.
func (r *relay) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for !r.pending {
		r.cond.Wait()
	}
	r.pending = false
}

// waitUntil blocks until the slot is present (taking it, returning true)
// or the deadline passes (returning false). This is the primitive; waitFor
// delegates to it. sync.Cond has no native deadline support, so a helper
// goroutine performs the wake on timeout - this is the one place the
// package spends a goroutine, and only for the bounded-wait call forms.
func (r *relay) waitUntil(deadline time.Time) bool {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-timer.C:
			r.mu.Lock()
			r.cond.Broadcast()
			r.mu.Unlock()
		case <-done:
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()
	for !r.pending {
		if !time.Now().Before(deadline) {
			return false
		}
		r.cond.Wait()
	}
	r.pending = false
	return true
}

// waitFor blocks until the slot is present or timeout elapses.
func (r *relay) waitFor(timeout time.Duration) bool {
	return r.waitUntil(time.Now().Add(timeout))
}

// reset unconditionally clears the notification slot (receiver-only).
func (r *relay) reset() {
	r.mu.Lock()
	r.pending = false
	r.mu.Unlock()
}

// core is the shared state behind a Handshake generation: the atomic hint
// plus its relay. Senders hold a weak reference (via generation indirection
// in Handshake), the receiver holds the sole strong reference.
type core struct {
	state    *atomicstate.Machine[Hint]
	relay    *relay
	detached atomic.Bool
}

func newCore() *core {
	return &core{
		state: atomicstate.New(Continue, hintToU64, u64ToHint),
		relay: newRelay(),
	}
}

// Handshake is the receiver's handle: the sole strong reference to the
// current generation's core. Detach() atomically swaps in a fresh
// generation, invalidating every Sender created from the old one.
type Handshake struct {
	mu  sync.Mutex
	gen *core
}

// New constructs a Handshake in the Continue state.
func New() *Handshake {
	return &Handshake{gen: newCore()}
}

func (h *Handshake) current() *core {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen
}

// Sender returns a new sender handle bound to the current generation. The
// handle is a weak reference: once Detach is called, it reports Detached
// on every subsequent call.
func (h *Handshake) Sender() *Sender {
	return &Sender{gen: h.current()}
}

// Load reads the current hint with acquire ordering (see atomicstate.Load).
func (h *Handshake) Load() Hint {
	return h.current().state.Load()
}

// Peek reads the current hint with relaxed ordering, suitable for the
// real-time worker's hot path.
func (h *Handshake) Peek() Hint {
	return h.current().state.Peek()
}

// TrySuspending performs a silent CAS Continue->Suspend, raising no
// notification, and reports whether the handshake now reads Suspend
// (either because this call just moved it there, or because a concurrent
// sender already had via Sender.Suspend()). Used by the worker itself to
// park without racing an external wake. Returns false only when the
// current state is Finish, which cannot transition to Suspend.
func (h *Handshake) TrySuspending() bool {
	out := h.current().state.SwitchFromExpectedToDesired(Continue, Suspend)
	return out.Kind == atomicstate.Accepted || out.Kind == atomicstate.Ignored
}

// TryFinishing unconditionally swaps the handshake to Finish, without
// notification, and always reports true. It never races a concurrent
// Suspend/Resume: unlike TrySuspending, there is no expected-value CAS to
// lose, so the worker's own loop never needs to retry this call.
func (h *Handshake) TryFinishing() bool {
	h.current().state.SwitchToDesired(Finish)
	return true
}

// WaitWhileSuspending blocks on the relay, re-reading the hint each time it
// wakes, until the hint is no longer Suspend or the generation has been
// detached. This is the worker's only
// intentional blocking point while inside the real-time scope, and is only
// reached after the worker itself accepted its own suspension via
// TrySuspending.
func (h *Handshake) WaitWhileSuspending() {
	c := h.current()
	for c.state.Load() == Suspend && !c.detached.Load() {
		c.relay.wait()
	}
}

// Reset unconditionally returns the hint to Continue and clears any
// pending notification. Receiver-only.
func (h *Handshake) Reset() {
	c := h.current()
	c.state.SwitchToDesired(Continue)
	c.relay.reset()
}

// Detach invalidates every existing Sender by swapping in a fresh
// generation, starting at Continue with no pending notification. Any
// Sender obtained before this call observes Detached on its next attempt.
func (h *Handshake) Detach() {
	h.mu.Lock()
	old := h.gen
	h.gen = newCore()
	h.mu.Unlock()
	old.detached.Store(true)
	// wake anyone parked on the old relay so they observe detachment
	// instead of blocking forever on a generation nobody will notify again.
	old.relay.replaceNotifyOne()
}

// Sender is a freely cloneable, weak handle to a Handshake's current
// generation at the time it was obtained.
type Sender struct {
	gen *core
}

// Load mirrors Handshake.Load from the sender's perspective. It reads the
// hint of the generation the sender was bound to; after Detach that hint no
// longer changes and Load does not report detachment. Use a mutating call's
// SwitchOutcome to detect detachment explicitly.
func (s *Sender) Load() Hint { return s.gen.state.Load() }

// Suspend requests Suspend via CAS from Continue. Rejected from Finish.
func (s *Sender) Suspend() SwitchOutcome {
	return s.switchDomain(Continue, Suspend)
}

// Resume requests Continue via CAS from Suspend. Rejected from Finish.
func (s *Sender) Resume() SwitchOutcome {
	return s.switchDomain(Suspend, Continue)
}

// Finish unconditionally swaps to Finish; never rejected (unless the
// receiver has already been dropped, which reports Detached instead).
func (s *Sender) Finish() SwitchOutcome {
	if s.gen.detached.Load() {
		return SwitchOutcome{Kind: SwitchDetached}
	}
	out := s.gen.state.SwitchToDesired(Finish)
	return s.publish(out)
}

func (s *Sender) switchDomain(expected, desired Hint) SwitchOutcome {
	if s.gen.detached.Load() {
		return SwitchOutcome{Kind: SwitchDetached}
	}
	out := s.gen.state.SwitchFromExpectedToDesired(expected, desired)
	return s.publish(out)
}

func (s *Sender) publish(out atomicstate.Outcome[Hint]) SwitchOutcome {
	switch out.Kind {
	case atomicstate.Accepted:
		s.gen.relay.replaceNotifyOne()
		return SwitchOutcome{Kind: SwitchAccepted, Previous: out.Prev}
	case atomicstate.Ignored:
		return SwitchOutcome{Kind: SwitchIgnored}
	default:
		return SwitchOutcome{Kind: SwitchRejected, Current: out.Current}
	}
}

// Err converts a non-accepted SwitchOutcome into a msrerr.StateInvalidError,
// or nil if the outcome was Accepted or Ignored (both are non-error
// results per spec section 8).
func (o SwitchOutcome) Err() error {
	switch o.Kind {
	case SwitchRejected:
		return &msrerr.StateInvalidError{
			Message: "progress hint transition rejected: current state is " + o.Current.String(),
		}
	case SwitchDetached:
		return &msrerr.StateInvalidError{Message: "progress hint handshake: receiver has been dropped"}
	default:
		return nil
	}
}
