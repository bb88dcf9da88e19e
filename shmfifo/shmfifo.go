// Package shmfifo implements the process-shared variant of the bounded FIFO
// (spec section 4.1/5): a byte-only queue backed by a single named POSIX
// shared-memory segment, mapped identically into every attached process.
//
// The design notes are explicit that shared-memory data must be
// position-independent: every reference into the pool is stored as an
// offset from the segment's base address, never as an absolute pointer, so
// a second process attaching via AttachExisting can recompute its own view
// from the same offsets after mapping the segment at a (possibly
// different) address.
//
// Because pointer-valued elements cannot cross an address-space boundary,
// shared FIFOs only ever carry plain bytes, and duplication on push is
// always an in-pool byte copy rather than a caller-supplied callback (the
// external Dup/Release hooks that package fifo allows are rejected here by
// construction, since there is no callback parameter at all).
package shmfifo

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/juju/clock"
	"github.com/mediaprocessors/core/status"
)

// header is laid out at the start of the shared segment. All fields are
// fixed-size so every attaching process agrees on the layout regardless of
// its own pointer width or struct padding rules. Lock is the cross-process
// spinlock word: every process that mutates InputIdx/OutputIdx/SlotsUsed/
// BufLevel/Closed acquires it first via atomic.CompareAndSwapUint32 against
// the mapped memory, so mutual exclusion holds across process boundaries,
// not just within one process's goroutines.
type header struct {
	Magic        uint32
	SlotsMax     uint32
	ChunkSizeMax uint32
	InputIdx     uint32
	OutputIdx    uint32
	SlotsUsed    uint32
	BufLevel     uint32
	Closed       uint32
	Lock         uint32
}

const (
	magic      = 0x4d504653 // "MPFS"
	headerSize = 36         // sizeof(header), fixed regardless of Go struct padding
	slotHeader = 8          // uint32 size + uint32 used-flag, per slot

	spinBackoff = 50 * time.Microsecond
)

// FIFO is a process-shared, byte-only bounded FIFO.
type FIFO struct {
	name    string
	creator bool
	file    *os.File
	data    []byte // mmap'd region: header, slot directory, byte pool
	clk     clock.Clock

	// localNonBlocking mirrors this process's view of blocking mode. It is
	// intentionally process-local rather than a shared header bit: only the
	// owning process ever calls SetBlocking in this runtime's usage
	// (control-plane resets happen in the owning process, per spec 4.6 step
	// 2/7), so there is no cross-process writer to race against. Reads and
	// writes of it still happen while the shared spinlock is held (Level
	// and SlotsUsed, by contrast, read the header without taking it).
	localNonBlocking bool
}

// lockWord returns a pointer into the mapped segment's Lock field, usable
// with the sync/atomic primitives from any process that has this segment
// mapped.
func (f *FIFO) lockWord() *uint32 {
	return (*uint32)(unsafe.Pointer(&f.data[unsafe.Offsetof(header{}.Lock)]))
}

// lock spins until it acquires the shared segment's lock word. Spinning
// with a short sleep backoff, rather than a futex or named POSIX semaphore,
// matches this runtime's preference elsewhere for explicit, inspectable
// synchronization (see package fairlock) over kernel-assisted primitives
// the rest of this pack does not use.
func (f *FIFO) lock() {
	word := f.lockWord()
	for !atomic.CompareAndSwapUint32(word, 0, 1) {
		time.Sleep(spinBackoff)
	}
}

func (f *FIFO) unlock() {
	atomic.StoreUint32(f.lockWord(), 0)
}

func slotOffset(i int) int { return headerSize + i*slotHeader }

// Open creates a new named shared-memory FIFO. It fails if a segment with
// this name already exists.
func Open(name string, slotsMax, chunkSizeMax int, nonBlocking bool) (*FIFO, error) {
	if slotsMax <= 0 || chunkSizeMax <= 0 {
		return nil, status.New(status.InvalidArgument, "slots_max and chunk_size_max must be > 0 for a shared FIFO")
	}
	path := shmPath(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, status.New(status.InvalidArgument, "shared FIFO %q already exists", name)
		}
		return nil, status.New(status.Error, "create shared FIFO: %v", err)
	}

	size := headerSize + slotsMax*slotHeader + slotsMax*chunkSizeMax
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, status.New(status.Error, "size shared FIFO: %v", err)
	}

	data, err := mmap(f, size)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, status.New(status.Error, "mmap shared FIFO: %v", err)
	}

	fifo := &FIFO{
		name:    name,
		creator: true,
		file:    f,
		data:    data,
		clk:     clock.WallClock,
	}
	h := fifo.header()
	*h = header{Magic: magic, SlotsMax: uint32(slotsMax), ChunkSizeMax: uint32(chunkSizeMax)}
	if nonBlocking {
		fifo.setNonBlockingFlag(true)
	}
	return fifo, nil
}

// AttachExisting attaches to a pre-existing named shared FIFO (shm_exec_open
// in spec terms). The attaching process recomputes every offset-based
// reference against its own mapping base; no absolute pointer crosses the
// boundary.
func AttachExisting(name string) (*FIFO, error) {
	path := shmPath(name)
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, status.New(status.NotFound, "shared FIFO %q not found: %v", name, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, status.New(status.Error, "stat shared FIFO: %v", err)
	}
	data, err := mmap(f, int(st.Size()))
	if err != nil {
		f.Close()
		return nil, status.New(status.Error, "mmap shared FIFO: %v", err)
	}
	fifo := &FIFO{
		name: name,
		file: f,
		data: data,
		clk:  clock.WallClock,
	}
	h := fifo.header()
	if h.Magic != magic {
		fifo.Close()
		return nil, status.New(status.InvalidArgument, "shared FIFO %q has an invalid header", name)
	}
	return fifo, nil
}

func (f *FIFO) header() *header {
	return (*header)(unsafe.Pointer(&f.data[0]))
}

// Push copies payload into the next free pool slot. It blocks while full
// (polling, since shared-memory waiters across processes cannot share a Go
// channel) unless the FIFO was opened non-blocking.
func (f *FIFO) Push(payload []byte) status.Code {
	h := f.header()
	if int(h.ChunkSizeMax) > 0 && len(payload) > int(h.ChunkSizeMax) {
		return status.InvalidArgument
	}
	for {
		f.lock()
		if h.Closed != 0 {
			f.unlock()
			return status.EndOfFile
		}
		if int(h.SlotsUsed) < int(h.SlotsMax) {
			f.enqueueLocked(payload)
			f.unlock()
			return status.Success
		}
		nonBlocking := f.nonBlockingLocked()
		f.unlock()
		if nonBlocking {
			return status.NoMemory
		}
		time.Sleep(time.Millisecond)
	}
}

// Pull dequeues the oldest payload, copying it out of the pool. timeout < 0
// blocks indefinitely; timeout >= 0 bounds the wait.
func (f *FIFO) Pull(timeout time.Duration) ([]byte, status.Code) {
	h := f.header()
	deadline := time.Time{}
	hasDeadline := timeout >= 0
	if hasDeadline {
		deadline = f.clk.Now().Add(timeout)
	}
	for {
		f.lock()
		if int(h.SlotsUsed) > 0 {
			payload := f.dequeueLocked()
			f.unlock()
			return payload, status.Success
		}
		if h.Closed != 0 {
			f.unlock()
			return nil, status.EndOfFile
		}
		nonBlocking := f.nonBlockingLocked()
		f.unlock()
		if nonBlocking {
			return nil, status.TryAgain
		}
		if hasDeadline && !f.clk.Now().Before(deadline) {
			return nil, status.TimedOut
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *FIFO) enqueueLocked(payload []byte) {
	h := f.header()
	slotsMax := int(h.SlotsMax)
	chunkMax := int(h.ChunkSizeMax)
	idx := int(h.InputIdx)

	dirOff := slotOffset(idx)
	binary.LittleEndian.PutUint32(f.data[dirOff:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(f.data[dirOff+4:], 1)

	poolOff := headerSize + slotsMax*slotHeader + idx*chunkMax
	copy(f.data[poolOff:poolOff+chunkMax], payload)

	h.InputIdx = uint32((idx + 1) % slotsMax)
	h.SlotsUsed++
	h.BufLevel += uint32(len(payload))
}

func (f *FIFO) dequeueLocked() []byte {
	h := f.header()
	slotsMax := int(h.SlotsMax)
	chunkMax := int(h.ChunkSizeMax)
	idx := int(h.OutputIdx)

	dirOff := slotOffset(idx)
	size := binary.LittleEndian.Uint32(f.data[dirOff:])
	binary.LittleEndian.PutUint32(f.data[dirOff+4:], 0)

	poolOff := headerSize + slotsMax*slotHeader + idx*chunkMax
	out := make([]byte, size)
	copy(out, f.data[poolOff:poolOff+int(size)])

	h.OutputIdx = uint32((idx + 1) % slotsMax)
	h.SlotsUsed--
	h.BufLevel -= size
	return out
}

func (f *FIFO) nonBlockingLocked() bool {
	return f.localNonBlocking
}

func (f *FIFO) setNonBlockingFlag(v bool) {
	f.lock()
	f.localNonBlocking = v
	f.unlock()
}

// SetBlocking toggles non-blocking mode for this process's view of the FIFO.
func (f *FIFO) SetBlocking(blocking bool) { f.setNonBlockingFlag(!blocking) }

// Level returns the current buf_level (sum of enqueued payload sizes). Per
// SPEC_FULL.md's Open Question decision, pool fragmentation from released
// slots is never counted here.
func (f *FIFO) Level() int {
	return int(f.header().BufLevel)
}

// SlotsUsed returns the number of occupied slots.
func (f *FIFO) SlotsUsed() int {
	return int(f.header().SlotsUsed)
}

// Close marks the FIFO closed. The creator also unlinks the backing segment;
// a process that only attached via AttachExisting merely unmaps it.
func (f *FIFO) Close() error {
	f.lock()
	f.header().Closed = 1
	f.unlock()

	err := munmap(f.data)
	f.file.Close()
	if f.creator {
		if rmErr := os.Remove(shmPath(f.name)); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

func shmPath(name string) string {
	return fmt.Sprintf("/dev/shm/mediaprocessors-%s", sanitize(name))
}

func sanitize(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b == '/' || b == 0 {
			out = append(out, '_')
			continue
		}
		out = append(out, b)
	}
	return string(out)
}

func mmap(f *os.File, size int) ([]byte, error) {
	return syscall.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
}

func munmap(data []byte) error {
	return syscall.Munmap(data)
}
