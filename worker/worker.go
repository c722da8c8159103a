// Package worker hosts a real-time worker's start/perform/finish lifecycle
// on a dedicated OS thread, driving the progress-hint handshake (package
// handshake) and emitting lifecycle events.
//
// The phase loop (Starting -> Running -> Suspending/Finishing -> Stopping)
// and the "parameters travel into the thread and come back out on join"
// ownership model are grounded on the teacher's microbatch.Batcher
// lifecycle (github.com/joeycumines/go-utilpkg microbatch/microbatch.go:
// context+cancel+done/stopped channels, sync.Once-guarded shutdown) and
// eventloop's FastState-driven run loop (eventloop/loop.go), adapted here
// to a single dedicated goroutine pinned to an OS thread via
// worker/rtpriority rather than an event-loop poller, per spec design
// note "Coroutines vs. threads".
package worker

import (
	"fmt"

	"github.com/slowtec/msr/handshake"
	"github.com/slowtec/msr/internal/logging"
	"github.com/slowtec/msr/worker/rtpriority"
)

// Phase is one of the five lifecycle phases emitted as Events.
type Phase uint8

const (
	Starting Phase = iota
	Running
	Suspending
	Finishing
	Stopping
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Suspending:
		return "Suspending"
	case Finishing:
		return "Finishing"
	case Stopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// Decision is what PerformUnit returns to tell the loop whether to
// continue, suspend, or finish.
type Decision uint8

const (
	ContinueRunning Decision = iota
	RequestSuspending
	RequestFinishing
)

// Worker is a user-supplied object polymorphic over an environment type
// Env, implementing the three lifecycle methods the spec requires. All
// three may return an error; perform_unit additionally signals
// suspend/finish requests via Decision.
type Worker[Env any] interface {
	StartTask(env *Env) error
	PerformUnit(env *Env, rx *handshake.Handshake) (Decision, error)
	FinishTask(env *Env) error
}

// EventSink receives one Phase event per phase per cycle. Implementations
// must not block significantly; they run on the worker's dedicated thread,
// inside the real-time scope for Running/Suspending.
type EventSink interface {
	Emit(Phase)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Phase)

func (f EventSinkFunc) Emit(p Phase) { f(p) }

// Params are the values moved into the worker's dedicated thread at Spawn
// (the four handles below plus an optional Logger), and moved back out
// (unchanged in identity) via Terminated on join.
type Params[Env any] struct {
	Env      *Env
	Worker   Worker[Env]
	Receiver *handshake.Handshake
	Events   EventSink
	// Logger receives lifecycle diagnostics (rtpriority failures, task
	// errors). A nil Logger is treated as logging.Nop().
	Logger logging.Logger
}

// Priority is the SCHED_FIFO priority requested for the real-time scope
// (see worker/rtpriority). Workers that don't care can leave it zero;
// rtpriority clamps nothing, the OS will reject out-of-range values and
// that failure is logged, not fatal.
type Priority int

// JoinResult is returned by Join: either Terminated (clean exit, params
// recovered for reuse) or a panic recovered from the worker's thread (no
// partial recovery of params, by design: a panicking worker's env may be
// left in an inconsistent state).
type JoinResult[Env any] struct {
	Terminated *Terminated[Env]
	PanicValue any // non-nil iff the thread panicked instead of returning
}

// Terminated carries the worker's outcome plus the spawn parameters,
// handed back so the caller can inspect or reuse them.
type Terminated[Env any] struct {
	Err    error
	Params Params[Env]
}

// Handle is returned by Spawn; Join blocks until the worker thread exits.
type Handle[Env any] struct {
	done chan JoinResult[Env]
}

// Join blocks until the worker thread has fully exited and returns its
// result. Safe to call exactly once per Handle.
func (h *Handle[Env]) Join() JoinResult[Env] {
	return <-h.done
}

// Spawn transfers ownership of params into a dedicated OS thread and
// starts the phase loop described in spec section 4.3. priority is passed
// to rtpriority.Enter for the real-time scope that wraps Running and
// Suspending (never Stopping, and never Finishing's post-drain work).
func Spawn[Env any](params Params[Env], priority Priority) *Handle[Env] {
	h := &Handle[Env]{done: make(chan JoinResult[Env], 1)}
	go h.run(params, priority)
	return h
}

func (h *Handle[Env]) run(params Params[Env], priority Priority) {
	defer func() {
		if r := recover(); r != nil {
			h.done <- JoinResult[Env]{PanicValue: r}
		}
	}()
	h.done <- JoinResult[Env]{Terminated: runLoop(params, priority)}
}

func runLoop[Env any](params Params[Env], priority Priority) *Terminated[Env] {
	log := params.Logger
	if log == nil {
		log = logging.Nop()
	}

	emit := func(p Phase) {
		log.Debug().Str("phase", p.String()).Log("worker: phase transition")
		if params.Events != nil {
			params.Events.Emit(p)
		}
	}

	emit(Starting)
	if err := params.Worker.StartTask(params.Env); err != nil {
		log.Err().Err(err).Log("worker: start_task failed")
		emit(Stopping)
		return &Terminated[Env]{Err: fmt.Errorf("worker: start_task: %w", err), Params: params}
	}

	scope, rtErr := rtpriority.Enter(int(priority))
	if rtErr != nil {
		// Not fatal per spec 4.3: the worker continues at its inherited
		// priority.
		log.Warning().Err(rtErr).Int("priority", int(priority)).Log("worker: rtpriority.Enter failed")
	}
	defer scope.Leave() // also restores priority if a worker method panics

	var finalErr error

runLoop:
	for {
		emit(Running)
		decision, err := params.Worker.PerformUnit(params.Env, params.Receiver)
		if err != nil {
			log.Err().Err(err).Log("worker: perform_unit failed")
			finalErr = fmt.Errorf("worker: perform_unit: %w", err)
			break runLoop
		}

		hint := params.Receiver.Load()
		if hint == handshake.Finish {
			decision = RequestFinishing
		}

		switch decision {
		case ContinueRunning:
			continue runLoop

		case RequestSuspending:
			if params.Receiver.TrySuspending() {
				emit(Suspending)
				params.Receiver.WaitWhileSuspending()
			}
			continue runLoop

		case RequestFinishing:
			if params.Receiver.TryFinishing() {
				scope.Leave()
				emit(Finishing)
				if err := params.Worker.FinishTask(params.Env); err != nil {
					log.Err().Err(err).Log("worker: finish_task failed")
					finalErr = fmt.Errorf("worker: finish_task: %w", err)
				}
				break runLoop
			}
			continue runLoop
		}
	}

	if finalErr != nil {
		// finish_task is reserved for the clean Finishing exit (spec 4.3:
		// "A perform_unit returning an error does not call finish_task").
		// The scope guard still restores priority on every exit path.
		scope.Leave()
	}

	emit(Stopping)
	return &Terminated[Env]{Err: finalErr, Params: params}
}
