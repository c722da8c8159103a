package handshake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuspendResumeFinish(t *testing.T) {
	h := New()
	s := h.Sender()

	out := s.Suspend()
	require.Equal(t, SwitchAccepted, out.Kind)
	assert.Equal(t, Continue, out.Previous)
	assert.Equal(t, Suspend, h.Load())

	out = s.Suspend()
	assert.Equal(t, SwitchIgnored, out.Kind)

	out = s.Resume()
	require.Equal(t, SwitchAccepted, out.Kind)
	assert.Equal(t, Suspend, out.Previous)

	out = s.Finish()
	require.Equal(t, SwitchAccepted, out.Kind)
	assert.Equal(t, Finish, h.Load())

	out = s.Suspend()
	require.Equal(t, SwitchRejected, out.Kind)
	assert.Equal(t, Finish, out.Current)

	out = s.Resume()
	require.Equal(t, SwitchRejected, out.Kind)
	assert.Equal(t, Finish, out.Current)
}

func TestDetach(t *testing.T) {
	h := New()
	s := h.Sender()
	h.Detach()

	assert.Equal(t, SwitchDetached, s.Suspend().Kind)
	assert.Equal(t, SwitchDetached, s.Resume().Kind)
	assert.Equal(t, SwitchDetached, s.Finish().Kind)

	// a sender obtained after Detach works normally against the new generation
	s2 := h.Sender()
	assert.Equal(t, SwitchAccepted, s2.Suspend().Kind)
}

func TestCoalescedNotification(t *testing.T) {
	h := New()
	s := h.Sender()

	require.Equal(t, SwitchAccepted, s.Suspend().Kind)
	require.Equal(t, SwitchAccepted, s.Resume().Kind)

	// two accepted transitions without an intervening wait coalesce into
	// at most one pending notification.
	got := h.current().relay.waitUntil(time.Now())
	assert.True(t, got)
	got = h.current().relay.waitUntil(time.Now())
	assert.False(t, got)

	// the state read afterwards is the latest, not stale from the first
	// accepted transition.
	assert.Equal(t, Continue, h.Load())
}

func TestTrySuspendingNoNotification(t *testing.T) {
	h := New()
	ok := h.TrySuspending()
	require.True(t, ok)
	assert.Equal(t, Suspend, h.Load())

	got := h.current().relay.waitUntil(time.Now())
	assert.False(t, got, "try_suspending must not raise a notification")
}

func TestTrySuspendingAlreadySuspendedBySender(t *testing.T) {
	h := New()
	s := h.Sender()
	require.Equal(t, SwitchAccepted, s.Suspend().Kind)

	// the worker's own try_suspending observes the sender already moved the
	// state to Suspend and reports success without raising a notification.
	ok := h.TrySuspending()
	require.True(t, ok)
	assert.Equal(t, Suspend, h.Load())

	got := h.current().relay.waitUntil(time.Now())
	assert.False(t, got, "try_suspending must not raise a notification even when the state was already Suspend")
}

func TestTrySuspendingRejectedFromFinish(t *testing.T) {
	h := New()
	s := h.Sender()
	require.Equal(t, SwitchAccepted, s.Finish().Kind)

	ok := h.TrySuspending()
	assert.False(t, ok, "try_suspending must fail once the state is Finish")
	assert.Equal(t, Finish, h.Load())
}

func TestTryFinishing(t *testing.T) {
	h := New()
	require.True(t, h.TryFinishing())
	assert.Equal(t, Finish, h.Load())
	// idempotent: already Finish still reports true (nothing left to do).
	assert.True(t, h.TryFinishing())

	got := h.current().relay.waitUntil(time.Now())
	assert.False(t, got, "try_finishing must not raise a notification")
}

func TestTryFinishingUnconditionalAgainstConcurrentSuspend(t *testing.T) {
	h := New()
	s := h.Sender()
	require.Equal(t, SwitchAccepted, s.Suspend().Kind)

	// a concurrent Suspend landing between a read and a CAS must not cause
	// TryFinishing to report false: it's an unconditional swap, not a CAS.
	ok := h.TryFinishing()
	assert.True(t, ok)
	assert.Equal(t, Finish, h.Load())
}

func TestWaitWhileSuspending(t *testing.T) {
	h := New()
	s := h.Sender()
	require.Equal(t, SwitchAccepted, s.Suspend().Kind)

	done := make(chan struct{})
	go func() {
		h.WaitWhileSuspending()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitWhileSuspending returned before resume")
	case <-time.After(20 * time.Millisecond):
	}

	require.Equal(t, SwitchAccepted, s.Resume().Kind)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitWhileSuspending did not return after resume")
	}
}

func TestReset(t *testing.T) {
	h := New()
	s := h.Sender()
	require.Equal(t, SwitchAccepted, s.Suspend().Kind)
	h.Reset()
	assert.Equal(t, Continue, h.Load())
}
