//go:build !linux

package rtpriority

import (
	"fmt"
	"runtime"
)

// Enter on non-Linux platforms only pins the goroutine to its OS thread;
// there is no portable real-time scheduling policy to request, so it
// reports an error for the caller to log (never fatal, per spec section
// 4.3) while still returning a usable Scope.
func Enter(priority int) (*Scope, error) {
	runtime.LockOSThread()
	scope := &Scope{leave: runtime.UnlockOSThread}
	return scope, fmt.Errorf("rtpriority: real-time scheduling policy is not supported on %s", runtime.GOOS)
}
