// Package status defines the closed set of outcome codes produced by the
// processor runtime's public surface. No component raises a panic or a bare
// error across an API boundary; every fallible operation returns (or wraps)
// one of these codes.
package status

import "fmt"

// Code is a closed enumeration of outcomes reported by the PROC runtime.
type Code int

const (
	// Success indicates the operation completed as requested.
	Success Code = iota
	// NotModified indicates a PUT that produced no effective change.
	NotModified
	// NotFound indicates no such registered type or live instance id.
	NotFound
	// Conflict indicates a duplicate type registration.
	Conflict
	// TryAgain indicates a non-blocking operation found nothing to do.
	TryAgain
	// NoMemory indicates a non-blocking push found no free slot, or an
	// allocation failed.
	NoMemory
	// InvalidArgument indicates a malformed or out-of-range argument.
	InvalidArgument
	// TimedOut indicates a bounded wait elapsed before completion.
	TimedOut
	// Interrupted indicates a blocking wait was externally unblocked.
	Interrupted
	// EndOfFile indicates the owning object is shutting down or shut down.
	EndOfFile
	// BadAudioVideoFormat indicates a sample format the backend rejects.
	BadAudioVideoFormat
	// BadMultiplexFormat indicates a container/multiplex format the
	// backend rejects.
	BadMultiplexFormat
	// Error is the generic, otherwise-unclassified failure.
	Error
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case NotModified:
		return "not_modified"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case TryAgain:
		return "try_again"
	case NoMemory:
		return "no_memory"
	case InvalidArgument:
		return "invalid_argument"
	case TimedOut:
		return "timed_out"
	case Interrupted:
		return "interrupted"
	case EndOfFile:
		return "end_of_file"
	case BadAudioVideoFormat:
		return "bad_audio_video_format"
	case BadMultiplexFormat:
		return "bad_multiplex_format"
	case Error:
		return "error"
	default:
		return "unknown_status"
	}
}

// Err wraps a Code as an error, optionally annotated with a message.
type Err struct {
	Code Code
	Msg  string
}

func (e *Err) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// New returns an error carrying code c and an optional formatted message.
func New(code Code, format string, args ...interface{}) *Err {
	return &Err{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given status code.
func Is(err error, code Code) bool {
	se, ok := err.(*Err)
	return ok && se.Code == code
}

// CodeOf extracts the Code from err, defaulting to Error for unrecognized
// errors so callers always have a status to report across the control
// surface.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	if se, ok := err.(*Err); ok {
		return se.Code
	}
	return Error
}
