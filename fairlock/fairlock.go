// Package fairlock implements a ticket-ordered mutex. Unlike sync.Mutex,
// which makes no fairness guarantee between contending goroutines, a
// FairLock serves Acquire calls in the exact order they were submitted.
package fairlock

import "sync"

// FairLock is a ticket lock: one mutex plus one condition variable guarding
// a pair of monotonically increasing counters.
type FairLock struct {
	mu   sync.Mutex
	cond *sync.Cond
	head uint64
	tail uint64
}

// New returns a ready-to-use FairLock.
func New() *FairLock {
	fl := &FairLock{}
	fl.cond = sync.NewCond(&fl.mu)
	return fl
}

// Acquire reserves the next ticket and blocks until it is this caller's
// turn, i.e. until every Acquire that happened-before this one has been
// matched by a Release.
func (fl *FairLock) Acquire() {
	fl.mu.Lock()
	ticket := fl.tail
	fl.tail++
	for fl.head != ticket {
		fl.cond.Wait()
	}
	fl.mu.Unlock()
}

// Release lets the next ticket holder, if any, proceed.
func (fl *FairLock) Release() {
	fl.mu.Lock()
	fl.head++
	fl.mu.Unlock()
	fl.cond.Broadcast()
}

// WithLock runs fn while holding the fair lock, releasing it unconditionally
// on return.
func (fl *FairLock) WithLock(fn func()) {
	fl.Acquire()
	defer fl.Release()
	fn()
}
