// Package procif defines PROC_IF, the immutable descriptor that catalogues
// one processor family: its name, media type, feature flags and the
// callback set a concrete backend implements. Descriptors are registered
// once (package procs) and then shared read-only by every instance of that
// family (package proc).
//
// This is the Go-native replacement for the "inheritance by first-field
// embedding" idiom the spec's Design Notes call out: instead of a concrete
// processor casting a pointer to its own state down from a shared base
// struct, a concrete backend implements the BackendState interface and the
// generic proc.Instance holds it by composition.
package procif

//go:generate mockgen -package mocks -destination mocks/mock_backendstate.go github.com/mediaprocessors/core/procif BackendState

import (
	"reflect"

	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/status"
)

// Feature is a bitset flag describing a capability a processor family
// advertises.
type Feature uint8

const (
	// AcceptsReads indicates instances of this family can be read from
	// (RecvFrame is meaningful).
	AcceptsReads Feature = 1 << iota
	// AcceptsWrites indicates instances can be written to (SendFrame is
	// meaningful).
	AcceptsWrites
	// ReportsIOStats advertises that the family reports byte/frame
	// counters. proc.Instance keeps those counters for every instance,
	// whether or not this flag is set.
	ReportsIOStats
	// TracksInputPTS indicates the instance should key its latency timer
	// off each frame's input PTS.
	TracksInputPTS
	// ReportsLatencyStats indicates latency accumulation is meaningful for
	// this family.
	ReportsLatencyStats
)

// Has reports whether the flag set contains feature.
func (flags Feature) Has(feature Feature) bool { return flags&feature != 0 }

// BackendState is the opaque, backend-owned state returned by ProcIF.Open.
// It is never inspected by the generic runtime; it is only ever passed back
// to the same backend's Close/PutSettings/GetSettings/ProcessFrame calls.
type BackendState interface {
	// Close releases backend-private resources. Called at instance close
	// and at the start of every settings reset.
	Close() error
	// PutSettings parses and applies a new settings string (either form
	// from spec section 6). Unrecognized fields are ignored; recognized
	// fields with invalid values return status.InvalidArgument without a
	// partial commit where the backend can avoid one.
	PutSettings(text string) error
	// GetSettings returns the backend's settings as a structured tree
	// (typically map[string]interface{}).
	GetSettings() interface{}
	// ProcessFrame consumes input from in (non-nil for AcceptsWrites
	// families) and produces zero or more results via push, returning a
	// status code per spec 4.6's worker-loop contract.
	ProcessFrame(in *frame.Frame, push func(*frame.Frame) status.Code) status.Code
	// NeedsReset reports whether this backend requires an init/deinit
	// cycle to accept new settings at runtime (spec 4.6 reset-on-new-settings).
	// Most backends return true; a backend that can reconfigure without a
	// restart may return false.
	NeedsReset() bool
	// Reopen re-allocates whatever codec-private resources Close released,
	// using the settings already held in the backend's own state (as last
	// written by PutSettings). It is called in place of a fresh Open so a
	// reset never has to round-trip settings back through a text form.
	Reopen() error
}

// OptFunc services the optional backend-specific control calls named
// module_opt in spec section 6 (e.g. PROCS_GET_TYPE).
type OptFunc func(tag string, args interface{}) (interface{}, status.Code)

// ProcIF is the immutable, process-wide descriptor for one processor
// family.
type ProcIF struct {
	Name      string
	TypeTag   string
	MediaType string
	Features  Feature

	// Open allocates whatever backend-private state this processor family
	// needs and applies the initial settings string, per spec 4.6's open
	// contract.
	Open func(initialSettings string) (BackendState, error)
	// Opt services optional backend-specific control calls (module_opt in
	// spec section 6).
	Opt OptFunc
}

// Duplicate deep-copies the descriptor's string fields; the callback
// pointers are treated as static addresses and copied as-is, matching spec
// 4.5.
func (p ProcIF) Duplicate() ProcIF {
	dup := p
	dup.Name = string([]byte(p.Name))
	dup.TypeTag = string([]byte(p.TypeTag))
	dup.MediaType = string([]byte(p.MediaType))
	return dup
}

// Equal performs a structural comparison across every field, including
// function-pointer identity for the callback fields (Go cannot compare func
// values except to nil, so code-address identity via reflect is the
// idiomatic stand-in for the C pointer comparison spec 4.5 describes).
func (p ProcIF) Equal(other ProcIF) bool {
	if p.Name != other.Name || p.TypeTag != other.TypeTag || p.MediaType != other.MediaType {
		return false
	}
	if p.Features != other.Features {
		return false
	}
	if !funcEqual(p.Open, other.Open) {
		return false
	}
	if !funcEqual(p.Opt, other.Opt) {
		return false
	}
	return true
}

func funcEqual(a, b interface{}) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.IsNil() != vb.IsNil() {
		return false
	}
	if va.IsNil() {
		return true
	}
	return va.Pointer() == vb.Pointer()
}
