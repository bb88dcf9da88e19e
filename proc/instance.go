// Package proc implements PROC, the generic processor instance: one worker
// goroutine, bounded input/output FIFOs each guarded by its own fair lock,
// and the reset-on-new-settings protocol described in spec section 4.6.
//
// A concrete media transform is supplied entirely through procif.ProcIF and
// the procif.BackendState it opens; this package never knows about codecs,
// only about running one backend's worker loop safely alongside concurrent
// SendFrame/RecvFrame/PutSettings callers.
package proc

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"github.com/mediaprocessors/core/fairlock"
	"github.com/mediaprocessors/core/fifo"
	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/isleep"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/status"
	"github.com/sirupsen/logrus"
)

// pullTimeout is the "long timeout" spec 4.6 expects the worker loop to
// block on the input FIFO with, so an idle processor does not spin.
const pullTimeout = 2 * time.Second

// tryAgainBackoff is the Open Question #3 decision recorded in
// SPEC_FULL.md: a try_again result backs off briefly rather than spinning
// or running another full blocking pull immediately.
const tryAgainBackoff = 5 * time.Millisecond

// IOStats is a point-in-time snapshot of an instance's I/O counters.
type IOStats struct {
	BytesIn, BytesOut   uint64
	FramesIn, FramesOut uint64
}

// LatencyStats is a point-in-time snapshot of an instance's end-to-end
// latency accumulator.
type LatencyStats struct {
	Count        uint64
	Sum, Min, Max time.Duration
}

// Instance is one running processor: descriptor + backend state + worker.
type Instance struct {
	ID   int
	Desc procif.ProcIF

	backend procif.BackendState

	inputFIFO  *fifo.FIFO[*frame.Frame]
	outputFIFO *fifo.FIFO[*frame.Frame]
	inputLock  *fairlock.FairLock
	outputLock *fairlock.FairLock

	exitFlag atomic.Bool
	dead     atomic.Bool // true once a failed reset leaves the instance unusable
	wg       sync.WaitGroup
	sleeper  *isleep.Sleeper

	log     *logrus.Entry
	metrics *Metrics

	statsMu   sync.Mutex
	io        IOStats
	latency   LatencyStats
	ptsStart  map[int64]time.Time

	resetMu sync.Mutex // serializes concurrent PutSettings/Close calls
}

// Open allocates an instance for descriptor desc, applies initialSettings,
// and starts the worker thread. fifoSlots bounds both the input and output
// FIFO.
func Open(desc procif.ProcIF, id int, initialSettings string, fifoSlots int, log *logrus.Entry, metrics *Metrics) (*Instance, error) {
	if desc.Open == nil {
		return nil, status.New(status.InvalidArgument, "descriptor %q has no Open callback", desc.Name)
	}
	backend, err := desc.Open(initialSettings)
	if err != nil {
		return nil, status.New(status.InvalidArgument, "open %q: %v", desc.Name, err)
	}

	inFIFO, err := fifo.Open(fifo.Options[*frame.Frame]{SlotsMax: fifoSlots})
	if err != nil {
		return nil, err
	}
	outFIFO, err := fifo.Open(fifo.Options[*frame.Frame]{SlotsMax: fifoSlots})
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		ID:         id,
		Desc:       desc,
		backend:    backend,
		inputFIFO:  inFIFO,
		outputFIFO: outFIFO,
		inputLock:  fairlock.New(),
		outputLock: fairlock.New(),
		sleeper:    isleep.New(clock.WallClock),
		log:        log.WithField("proc_id", id).WithField("type", desc.Name),
		metrics:    metrics,
		ptsStart:   make(map[int64]time.Time),
	}
	inst.wg.Add(1)
	go inst.run()
	return inst, nil
}

// Close shuts the instance down per spec 4.6: it sets the exit flag, makes
// both FIFOs non-blocking so any in-flight operation unwinds, acquires both
// fair locks to exclude concurrent producers/consumers, joins the worker,
// empties both FIFOs, and finally calls the backend's Close.
func (i *Instance) Close() error {
	i.resetMu.Lock()
	defer i.resetMu.Unlock()

	if i.dead.Load() {
		return nil
	}
	i.exitFlag.Store(true)
	i.inputFIFO.SetBlocking(false)
	i.outputFIFO.SetBlocking(false)
	i.inputLock.Acquire()
	i.outputLock.Acquire()
	i.wg.Wait()
	i.inputFIFO.Empty()
	i.outputFIFO.Empty()
	err := i.backend.Close()
	i.dead.Store(true)
	i.outputLock.Release()
	i.inputLock.Release()
	return err
}

// SendFrame enqueues f under the input-side fair lock, updating input
// counters and (if the descriptor tracks input PTS and reports latency)
// starting this frame's latency timer. The frame is enqueued as-is; no
// descriptor-specific conversion is applied.
func (i *Instance) SendFrame(f *frame.Frame) status.Code {
	if !i.Desc.Features.Has(procif.AcceptsWrites) {
		return status.InvalidArgument
	}
	i.inputLock.Acquire()
	defer i.inputLock.Release()

	if i.dead.Load() {
		return status.EndOfFile
	}
	code := i.inputFIFO.Push(f, f.PayloadSize())
	if code != status.Success {
		return code
	}

	i.statsMu.Lock()
	i.io.BytesIn += uint64(f.PayloadSize())
	i.io.FramesIn++
	if i.Desc.Features.Has(procif.TracksInputPTS) && i.Desc.Features.Has(procif.ReportsLatencyStats) {
		i.ptsStart[f.PTS] = time.Now()
	}
	i.statsMu.Unlock()

	if i.metrics != nil {
		labels := i.labels()
		i.metrics.FramesIn.With(labels).Inc()
		i.metrics.BytesIn.With(labels).Add(float64(f.PayloadSize()))
		i.metrics.FIFODepth.With(i.sideLabels("in")).Set(float64(i.inputFIFO.Level()))
	}
	return status.Success
}

// RecvFrame dequeues the next output frame under the output-side fair lock,
// updating output counters and, if latency tracking is enabled, folding the
// end-to-end delta into the running accumulator. The frame is returned
// as-is; no descriptor-specific conversion is applied.
func (i *Instance) RecvFrame() (*frame.Frame, status.Code) {
	if !i.Desc.Features.Has(procif.AcceptsReads) {
		return nil, status.InvalidArgument
	}
	i.outputLock.Acquire()
	defer i.outputLock.Release()

	if i.dead.Load() {
		return nil, status.EndOfFile
	}
	f, _, code := i.outputFIFO.Pull(-1)
	if code != status.Success {
		return nil, code
	}

	i.statsMu.Lock()
	i.io.BytesOut += uint64(f.PayloadSize())
	i.io.FramesOut++
	var delta time.Duration
	haveDelta := false
	if i.Desc.Features.Has(procif.ReportsLatencyStats) {
		if start, ok := i.ptsStart[f.PTS]; ok {
			delta = time.Since(start)
			delete(i.ptsStart, f.PTS)
			haveDelta = true
			i.latency.Count++
			i.latency.Sum += delta
			if i.latency.Count == 1 || delta < i.latency.Min {
				i.latency.Min = delta
			}
			if delta > i.latency.Max {
				i.latency.Max = delta
			}
		}
	}
	i.statsMu.Unlock()

	if i.metrics != nil {
		labels := i.labels()
		i.metrics.FramesOut.With(labels).Inc()
		i.metrics.BytesOut.With(labels).Add(float64(f.PayloadSize()))
		i.metrics.FIFODepth.With(i.sideLabels("out")).Set(float64(i.outputFIFO.Level()))
		if haveDelta {
			i.metrics.LatencySecs.With(labels).Observe(delta.Seconds())
		}
	}
	return f, status.Success
}

// PutSettings delegates to the backend and, if the backend needs a restart
// to pick up the new settings, runs the reset-on-new-settings protocol.
func (i *Instance) PutSettings(text string) status.Code {
	if i.dead.Load() {
		return status.EndOfFile
	}
	if err := i.backend.PutSettings(text); err != nil {
		if se, ok := err.(*status.Err); ok {
			return se.Code
		}
		return status.InvalidArgument
	}
	if !i.backend.NeedsReset() {
		return status.Success
	}
	if err := i.resetOnNewSettings(); err != nil {
		i.log.WithField("err", err).Error("reset-on-new-settings failed; instance left closed")
		i.dead.Store(true)
		return status.Error
	}
	return status.Success
}

// GetSettings delegates to the backend.
func (i *Instance) GetSettings() (interface{}, status.Code) {
	if i.dead.Load() {
		return nil, status.EndOfFile
	}
	return i.backend.GetSettings(), status.Success
}

// IOSnapshot returns a copy of the current I/O counters.
func (i *Instance) IOSnapshot() IOStats {
	i.statsMu.Lock()
	defer i.statsMu.Unlock()
	return i.io
}

// LatencySnapshot returns a copy of the current latency accumulator.
func (i *Instance) LatencySnapshot() LatencyStats {
	i.statsMu.Lock()
	defer i.statsMu.Unlock()
	return i.latency
}

// resetOnNewSettings implements the nine-step protocol from spec 4.6.
func (i *Instance) resetOnNewSettings() error {
	i.resetMu.Lock()
	defer i.resetMu.Unlock()

	i.exitFlag.Store(true)               // 1
	i.inputFIFO.SetBlocking(false)       // 2
	i.outputFIFO.SetBlocking(false)      // 2
	i.inputLock.Acquire()                // 3
	i.outputLock.Acquire()               // 3
	defer i.outputLock.Release()         // 9
	defer i.inputLock.Release()          // 9
	i.wg.Wait()                          // 4
	i.inputFIFO.Empty()                  // 5
	i.outputFIFO.Empty()                 // 5

	if err := i.backend.Close(); err != nil { // 6 (deinit)
		return err
	}
	if err := i.backend.Reopen(); err != nil { // 6 (re-init from settings already applied by PutSettings)
		return err
	}

	i.inputFIFO.SetBlocking(true)  // 7
	i.outputFIFO.SetBlocking(true) // 7
	i.exitFlag.Store(false)        // 8
	i.wg.Add(1)
	go i.run() // 8 (restart worker)
	return nil
}

func (i *Instance) run() {
	defer i.wg.Done()
	for {
		if i.exitFlag.Load() {
			return
		}

		var code status.Code
		if i.Desc.Features.Has(procif.AcceptsWrites) {
			f, _, pullCode := i.inputFIFO.Pull(pullTimeout)
			switch pullCode {
			case status.Success:
				code = i.backend.ProcessFrame(f, i.pushOutput)
			case status.EndOfFile:
				return
			case status.TimedOut:
				continue
			default:
				i.log.WithField("status", pullCode).Warn("unexpected input FIFO status")
				continue
			}
		} else {
			code = i.backend.ProcessFrame(nil, i.pushOutput)
		}

		switch code {
		case status.Success:
		case status.TryAgain:
			if i.sleeper.Sleep(tryAgainBackoff) == status.Interrupted {
				return
			}
		case status.EndOfFile:
			return
		default:
			i.log.WithField("status", code).Warn("process_frame returned an error; continuing")
		}
	}
}

func (i *Instance) pushOutput(f *frame.Frame) status.Code {
	return i.outputFIFO.Push(f, f.PayloadSize())
}

func (i *Instance) labels() map[string]string {
	return map[string]string{"type": i.Desc.Name, "proc_id": strconv.Itoa(i.ID)}
}

func (i *Instance) sideLabels(side string) map[string]string {
	l := i.labels()
	l["side"] = side
	return l
}
