// Package isleep implements a time-bounded wait that can be unblocked from
// another goroutine. The processor worker loop (pkg proc) uses it for its
// try_again backoff; the FIFO (pkg fifo) waits on its own channels instead.
package isleep

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/mediaprocessors/core/status"
)

// Sleeper is an interruptible, re-usable sleep primitive built over a
// mockable clock.Clock so tests never depend on wall-clock time.
type Sleeper struct {
	clk clock.Clock

	mu      sync.Mutex
	exit    bool
	version uint64 // bumped on Unblock and recorded per waiter; not otherwise consulted
	waiters []waiter
}

// New returns a Sleeper driven by clk. Pass clock.WallClock in production.
func New(clk clock.Clock) *Sleeper {
	return &Sleeper{clk: clk}
}

// Sleep blocks for d or until Unblock is called, whichever happens first.
// It returns status.Success on normal expiry and status.Interrupted if
// Unblock fired first. Calling Sleep after Unblock has been called returns
// status.Interrupted immediately.
func (s *Sleeper) Sleep(d time.Duration) status.Code {
	s.mu.Lock()
	if s.exit {
		s.mu.Unlock()
		return status.Interrupted
	}
	unblockCh := make(chan struct{})
	myVersion := s.version
	s.waiters = append(s.waiters, waiter{ch: unblockCh, version: myVersion})
	s.mu.Unlock()

	select {
	case <-s.clk.After(d):
		return status.Success
	case <-unblockCh:
		return status.Interrupted
	}
}

type waiter struct {
	ch      chan struct{}
	version uint64
}

// Unblock causes every Sleep call currently in flight to return
// status.Interrupted, and every future Sleep call to return it immediately
// until Reset is called.
func (s *Sleeper) Unblock() {
	s.mu.Lock()
	s.exit = true
	s.version++
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, w := range waiters {
		close(w.ch)
	}
}

// Reset clears the exit flag so the Sleeper can be reused (mirrors the
// clear-exit-flag step of the processor reset-on-new-settings protocol).
func (s *Sleeper) Reset() {
	s.mu.Lock()
	s.exit = false
	s.mu.Unlock()
}
