// Package procs implements PROCS, the process-wide registry of processor
// descriptors and live instances (spec section 4.7). It is the entry point
// the control surface (package control) sits on top of.
package procs

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/proc"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/settings"
	"github.com/mediaprocessors/core/status"
	"github.com/sirupsen/logrus"
)

// Registry is the process-wide directory of registered processor families
// and the instances posted against them.
//
// Lock ordering: the registry's guard is always acquired before any
// instance-level fair lock (registry -> instance), never the reverse, so
// a caller that holds an instance lock must never attempt to take the
// registry guard.
type Registry struct {
	guard sync.RWMutex
	types map[string]procif.ProcIF

	instancesMu sync.RWMutex
	instances   map[int]*proc.Instance
	nextID      int

	fifoSlots int
	log       *logrus.Entry
	metrics   *proc.Metrics
}

// Open creates an empty registry. fifoSlots bounds every instance's
// input/output FIFOs.
func Open(fifoSlots int, log *logrus.Entry, metrics *proc.Metrics) *Registry {
	return &Registry{
		types:     make(map[string]procif.ProcIF),
		instances: make(map[int]*proc.Instance),
		fifoSlots: fifoSlots,
		log:       log,
		metrics:   metrics,
	}
}

// Close waits for, and then deletes, every live instance, and aggregates
// any teardown errors via multierror rather than stopping at the first
// failure.
func (r *Registry) Close() error {
	r.instancesMu.Lock()
	ids := make([]int, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	r.instancesMu.Unlock()

	var errs *multierror.Error
	for _, id := range ids {
		if code := r.Delete(id); code != status.Success && code != status.NotFound {
			errs = multierror.Append(errs, status.New(code, "closing proc %d", id))
		}
	}
	return errs.ErrorOrNil()
}

// RegisterType duplicates desc into the registry, failing with
// status.Conflict if the name is already registered.
func (r *Registry) RegisterType(desc procif.ProcIF) status.Code {
	r.guard.Lock()
	defer r.guard.Unlock()
	if _, exists := r.types[desc.Name]; exists {
		return status.Conflict
	}
	r.types[desc.Name] = desc.Duplicate()
	return status.Success
}

// UnregisterType removes a descriptor; subsequent Post calls for that name
// fail with status.NotFound.
func (r *Registry) UnregisterType(name string) status.Code {
	r.guard.Lock()
	defer r.guard.Unlock()
	if _, exists := r.types[name]; !exists {
		return status.NotFound
	}
	delete(r.types, name)
	return status.Success
}

// Types lists every currently registered descriptor name.
func (r *Registry) Types() []string {
	r.guard.RLock()
	defer r.guard.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// IDs lists every currently live instance id.
func (r *Registry) IDs() []int {
	r.instancesMu.RLock()
	defer r.instancesMu.RUnlock()
	ids := make([]int, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	return ids
}

// Post looks up name under the registry's read guard, opens a new instance
// against its descriptor, assigns the next integer id, and inserts it into
// the id map.
func (r *Registry) Post(name, initialSettings string) (int, status.Code) {
	r.guard.RLock()
	desc, ok := r.types[name]
	r.guard.RUnlock()
	if !ok {
		return 0, status.NotFound
	}

	inst, err := proc.Open(desc, 0, initialSettings, r.fifoSlots, r.log, r.metrics)
	if err != nil {
		return 0, status.CodeOf(err)
	}

	r.instancesMu.Lock()
	id := r.nextID
	r.nextID++
	inst.ID = id
	r.instances[id] = inst
	r.instancesMu.Unlock()
	return id, status.Success
}

// Delete pops id from the id map before closing the instance, so that no
// new caller can find it while the close is in flight.
func (r *Registry) Delete(id int) status.Code {
	r.instancesMu.Lock()
	inst, ok := r.instances[id]
	if ok {
		delete(r.instances, id)
	}
	r.instancesMu.Unlock()
	if !ok {
		return status.NotFound
	}
	if err := inst.Close(); err != nil {
		return status.CodeOf(err)
	}
	return status.Success
}

func (r *Registry) lookup(id int) (*proc.Instance, bool) {
	r.instancesMu.RLock()
	defer r.instancesMu.RUnlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// IDPut forwards text to instance id's settings, with one reserved key:
// proc_name requests the processor be swapped for another registered
// descriptor, id and settings preserved as far as possible, via a full
// close/reopen performed under the registry's write guard.
func (r *Registry) IDPut(id int, text string) status.Code {
	newType, remainder, swapping, err := settings.ExtractReserved(text, settings.ReservedKeyName)
	if err != nil {
		return status.InvalidArgument
	}
	if swapping {
		return r.swapType(id, newType, remainder)
	}

	inst, ok := r.lookup(id)
	if !ok {
		return status.NotFound
	}
	return inst.PutSettings(text)
}

// swapType closes the instance at id, reopens it against newType's
// descriptor, and best-effort replays the instance's prior settings tree
// onto the new backend before applying remainder on top.
func (r *Registry) swapType(id int, newType, remainder string) status.Code {
	r.guard.Lock()
	desc, ok := r.types[newType]
	r.guard.Unlock()
	if !ok {
		return status.NotFound
	}

	r.instancesMu.Lock()
	defer r.instancesMu.Unlock()

	old, ok := r.instances[id]
	if !ok {
		return status.NotFound
	}

	priorSettings, code := old.GetSettings()
	if code != status.Success {
		priorSettings = nil
	}
	if err := old.Close(); err != nil {
		r.log.WithField("err", err).Warn("error closing instance during proc_name swap")
	}

	initial := ""
	if tree, ok := priorSettings.(map[string]interface{}); ok {
		initial = settings.Encode(settings.Tree(tree))
	}

	next, err := proc.Open(desc, id, initial, r.fifoSlots, r.log, r.metrics)
	if err != nil {
		delete(r.instances, id)
		return status.CodeOf(err)
	}
	r.instances[id] = next

	if remainder != "" {
		return next.PutSettings(remainder)
	}
	return status.Success
}

// IDGet forwards to instance id's settings getter and wraps the result in
// the GET envelope.
func (r *Registry) IDGet(id int) (interface{}, status.Code) {
	inst, ok := r.lookup(id)
	if !ok {
		return nil, status.NotFound
	}
	tree, code := inst.GetSettings()
	if code != status.Success {
		return nil, code
	}
	return settings.Envelope(tree), status.Success
}

// IDSendFrame acquires instance id under the registry's read guard and
// forwards to its SendFrame.
func (r *Registry) IDSendFrame(id int, f *frame.Frame) status.Code {
	inst, ok := r.lookup(id)
	if !ok {
		return status.NotFound
	}
	return inst.SendFrame(f)
}

// IDRecvFrame acquires instance id under the registry's read guard and
// forwards to its RecvFrame.
func (r *Registry) IDRecvFrame(id int) (*frame.Frame, status.Code) {
	inst, ok := r.lookup(id)
	if !ok {
		return nil, status.NotFound
	}
	return inst.RecvFrame()
}
