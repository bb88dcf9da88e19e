// Package fifo implements a bounded, generic FIFO queue with blocking and
// non-blocking modes and optional monotonic-clock timeouts. It backs both
// the processor instance's input/output queues (see package proc) and any
// other producer/consumer pairing inside the runtime.
//
// For the process-shared variant described in spec section 4.1, see package
// shmfifo: a shared-memory FIFO cannot carry arbitrary Go values (pointers
// are not portable across address spaces), so it is a distinct, byte-only
// type rather than an instantiation of this generic one.
package fifo

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/mediaprocessors/core/status"
)

// DupFunc duplicates an element for PushDup. ReleaseFunc disposes of an
// element discarded by Empty or Close. Both are optional; a nil DupFunc
// makes PushDup behave like Push (the element is moved, not copied), and a
// nil ReleaseFunc makes disposal a no-op and leaves collection to the
// garbage collector.
type DupFunc[T any] func(T) T
type ReleaseFunc[T any] func(T)

// Options configures Open.
type Options[T any] struct {
	// SlotsMax is the maximum number of queued elements. Must be > 0.
	SlotsMax int
	// ChunkSizeMax caps the reported size of a single element. Zero means
	// unlimited.
	ChunkSizeMax int
	// NonBlocking starts the FIFO in non-blocking mode.
	NonBlocking bool
	// Dup and Release are the optional element callbacks from spec 4.1.
	Dup     DupFunc[T]
	Release ReleaseFunc[T]
	// Clock is the monotonic clock used for timed Pull/Show. Defaults to
	// clock.WallClock when nil.
	Clock clock.Clock
}

type slot[T any] struct {
	elem T
	size int
	used bool
}

// broadcaster is a close-and-replace channel used to wake every goroutine
// waiting on a condition without the per-waiter bookkeeping sync.Cond would
// need to compose with select-based timeouts.
type broadcaster struct {
	ch chan struct{}
}

func newBroadcaster() *broadcaster { return &broadcaster{ch: make(chan struct{})} }

func (b *broadcaster) wait() <-chan struct{} { return b.ch }

// fire closes the broadcaster's channel and replaces it with a fresh one.
// Callers must hold f.mu while calling fire, the same way wait's result is
// only ever read while f.mu is held — otherwise two concurrent firers can
// both close the same channel (panic: close of closed channel) and a
// concurrent wait can read b.ch mid-replace.
func (b *broadcaster) fire() {
	close(b.ch)
	b.ch = make(chan struct{})
}

// FIFO is a bounded circular buffer of elements of type T.
type FIFO[T any] struct {
	mu sync.Mutex

	slotsMax     int
	chunkSizeMax int
	nonBlocking  bool
	dup          DupFunc[T]
	release      ReleaseFunc[T]
	clk          clock.Clock

	elems      []slot[T]
	inputIdx   int
	outputIdx  int
	slotsUsed  int
	bufLevel   int
	closed     bool

	putSig *broadcaster // fired when an element is enqueued
	getSig *broadcaster // fired when a slot frees up, or mode/close changes
}

// Open creates a new FIFO per the given options.
func Open[T any](opts Options[T]) (*FIFO[T], error) {
	if opts.SlotsMax <= 0 {
		return nil, status.New(status.InvalidArgument, "slots_max must be > 0")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	return &FIFO[T]{
		slotsMax:     opts.SlotsMax,
		chunkSizeMax: opts.ChunkSizeMax,
		nonBlocking:  opts.NonBlocking,
		dup:          opts.Dup,
		release:      opts.Release,
		clk:          clk,
		elems:        make([]slot[T], opts.SlotsMax),
		putSig:       newBroadcaster(),
		getSig:       newBroadcaster(),
	}, nil
}

func (f *FIFO[T]) checkSize(size int) error {
	if f.chunkSizeMax > 0 && size > f.chunkSizeMax {
		return status.New(status.InvalidArgument, "payload size %d exceeds chunk_size_max %d", size, f.chunkSizeMax)
	}
	return nil
}

// Push takes ownership of elem and enqueues it, blocking while the FIFO is
// full unless the FIFO is in non-blocking mode.
func (f *FIFO[T]) Push(elem T, size int) status.Code {
	if err := f.checkSize(size); err != nil {
		return status.InvalidArgument
	}
	f.mu.Lock()
	for {
		if f.closed {
			f.mu.Unlock()
			return status.EndOfFile
		}
		if f.slotsUsed < f.slotsMax {
			f.enqueueLocked(elem, size)
			f.putSig.fire()
			f.mu.Unlock()
			return status.Success
		}
		if f.nonBlocking {
			f.mu.Unlock()
			return status.NoMemory
		}
		wait := f.getSig.wait()
		f.mu.Unlock()
		<-wait
		f.mu.Lock()
	}
}

// PushDup duplicates elem via the registered Dup callback (or moves it, if
// none was registered) and enqueues the duplicate.
func (f *FIFO[T]) PushDup(elem T, size int) status.Code {
	if f.dup != nil {
		elem = f.dup(elem)
	}
	return f.Push(elem, size)
}

func (f *FIFO[T]) enqueueLocked(elem T, size int) {
	f.elems[f.inputIdx] = slot[T]{elem: elem, size: size, used: true}
	f.inputIdx = (f.inputIdx + 1) % f.slotsMax
	f.slotsUsed++
	f.bufLevel += size
}

// Pull dequeues the oldest element. timeout < 0 blocks indefinitely,
// timeout == 0 returns immediately, timeout > 0 waits up to that duration.
// In non-blocking mode an empty FIFO returns status.TryAgain regardless of
// timeout.
func (f *FIFO[T]) Pull(timeout time.Duration) (T, int, status.Code) {
	return f.dequeue(timeout, true)
}

// Show behaves like Pull but does not remove the element (a peek).
func (f *FIFO[T]) Show(timeout time.Duration) (T, int, status.Code) {
	return f.dequeue(timeout, false)
}

func (f *FIFO[T]) dequeue(timeout time.Duration, flush bool) (T, int, status.Code) {
	var zero T
	deadline := time.Time{}
	hasDeadline := timeout >= 0
	if hasDeadline {
		deadline = f.clk.Now().Add(timeout)
	}

	f.mu.Lock()
	for {
		if f.slotsUsed > 0 {
			s := f.elems[f.outputIdx]
			if flush {
				f.elems[f.outputIdx] = slot[T]{}
				f.outputIdx = (f.outputIdx + 1) % f.slotsMax
				f.slotsUsed--
				f.bufLevel -= s.size
				f.getSig.fire()
			}
			f.mu.Unlock()
			return s.elem, s.size, status.Success
		}
		if f.closed {
			f.mu.Unlock()
			return zero, 0, status.EndOfFile
		}
		if f.nonBlocking {
			f.mu.Unlock()
			return zero, 0, status.TryAgain
		}
		wait := f.putSig.wait()
		f.mu.Unlock()

		if !hasDeadline {
			<-wait
		} else {
			remaining := deadline.Sub(f.clk.Now())
			if remaining <= 0 {
				return zero, 0, status.TimedOut
			}
			select {
			case <-wait:
			case <-f.clk.After(remaining):
				return zero, 0, status.TimedOut
			}
		}
		f.mu.Lock()
	}
}

// SetBlocking toggles non-blocking mode and wakes every blocked caller so it
// can re-evaluate against the new mode.
func (f *FIFO[T]) SetBlocking(blocking bool) {
	f.mu.Lock()
	f.nonBlocking = !blocking
	f.putSig.fire()
	f.getSig.fire()
	f.mu.Unlock()
}

// Empty discards every queued element (invoking Release on each, if set)
// and resets all counters and indices, without closing the FIFO.
func (f *FIFO[T]) Empty() {
	f.mu.Lock()
	pending := f.drainLocked()
	f.getSig.fire()
	f.mu.Unlock()
	for _, s := range pending {
		if f.release != nil {
			f.release(s.elem)
		}
	}
}

func (f *FIFO[T]) drainLocked() []slot[T] {
	pending := make([]slot[T], 0, f.slotsUsed)
	idx := f.outputIdx
	for i := 0; i < f.slotsUsed; i++ {
		pending = append(pending, f.elems[idx])
		f.elems[idx] = slot[T]{}
		idx = (idx + 1) % f.slotsMax
	}
	f.inputIdx, f.outputIdx, f.slotsUsed, f.bufLevel = 0, 0, 0, 0
	return pending
}

// Close shuts the FIFO down: it sets the exit flag, wakes every blocked
// caller so in-flight operations unwind with status.EndOfFile, releases all
// queued elements and resets the queue.
func (f *FIFO[T]) Close() {
	f.mu.Lock()
	f.closed = true
	f.putSig.fire()
	f.getSig.fire()
	f.mu.Unlock()
	f.Empty()
}

// Level returns the total payload byte count of every currently enqueued
// element (buf_level in spec terms).
func (f *FIFO[T]) Level() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bufLevel
}

// SlotsUsed returns the number of occupied slots.
func (f *FIFO[T]) SlotsUsed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slotsUsed
}

// Traverse walks up to n elements (or all, if n <= 0) starting from the most
// recently enqueued one and moving backwards, invoking visit for each. It
// stops early if visit returns false.
func (f *FIFO[T]) Traverse(n int, visit func(elem T, size int) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := f.slotsUsed
	if n > 0 && n < count {
		count = n
	}
	idx := (f.inputIdx - 1 + f.slotsMax) % f.slotsMax
	for i := 0; i < count; i++ {
		s := f.elems[idx]
		if !visit(s.elem, s.size) {
			return
		}
		idx = (idx - 1 + f.slotsMax) % f.slotsMax
	}
}
