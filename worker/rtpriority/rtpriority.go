// Package rtpriority elevates the calling OS thread to a real-time
// scheduling policy for the duration of a scope, restoring the prior
// policy/priority unconditionally on exit (including on panic/unwind).
//
// This mirrors the teacher's per-OS file split (eventloop/wakeup_linux.go,
// wakeup_darwin.go, wakeup_windows.go): Enter is implemented per platform,
// backed by golang.org/x/sys/unix on Linux where SCHED_FIFO is available;
// everywhere else it is a documented no-op, matching spec section 4.3's
// "failure to raise priority is logged but not fatal".
package rtpriority

// Scope is returned by Enter; calling Leave restores the thread's prior
// scheduling policy and priority. Leave is idempotent.
type Scope struct {
	leave func()
	done  bool
}

// Leave restores the thread's previous scheduling state. Safe to call more
// than once and safe to call via defer even when Enter failed to elevate
// (in which case it is a no-op).
func (s *Scope) Leave() {
	if s == nil || s.done {
		return
	}
	s.done = true
	if s.leave != nil {
		s.leave()
	}
}
