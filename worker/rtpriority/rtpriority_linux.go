//go:build linux

package rtpriority

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Enter locks the calling goroutine to its current OS thread (real-time
// priority is a thread, not goroutine, property) and attempts to switch it
// to SCHED_FIFO at the given priority (1-99; higher runs sooner). It
// returns a Scope whose Leave restores SCHED_OTHER and unlocks the thread,
// and a non-nil error if the elevation itself failed (the caller is
// expected to log, not abort: see spec section 4.3).
func Enter(priority int) (*Scope, error) {
	runtime.LockOSThread()

	prevPolicy, prevErr := unix.SchedGetscheduler(0)

	param := &unix.SchedParam{Priority: int32(priority)}
	err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param)

	scope := &Scope{leave: func() {
		if prevErr == nil {
			_ = unix.SchedSetscheduler(0, prevPolicy, &unix.SchedParam{})
		}
		runtime.UnlockOSThread()
	}}

	if err != nil {
		return scope, fmt.Errorf("rtpriority: sched_setscheduler(SCHED_FIFO, %d): %w", priority, err)
	}
	return scope, nil
}
