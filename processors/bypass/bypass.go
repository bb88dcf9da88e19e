// Package bypass implements bypass_processor and bypass_processor2, the
// pass-through descriptors spec.md's end-to-end scenarios (A through E)
// exercise: process_frame forwards its input unchanged, and the only
// recognized setting is setting1, kept as an opaque string and
// round-tripped as-is (in the JSON form it must be given as a string).
package bypass

import (
	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/settings"
	"github.com/mediaprocessors/core/status"
)

// TypeName and TypeName2 are the two registered descriptor names the
// proc_name swap scenario exchanges between.
const (
	TypeName  = "bypass_processor"
	TypeName2 = "bypass_processor2"
)

type backend struct {
	setting1 string
}

func open(initial string) (procif.BackendState, error) {
	b := &backend{setting1: "0"}
	if initial != "" {
		if err := b.PutSettings(initial); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *backend) Close() error { return nil }

func (b *backend) PutSettings(text string) error {
	tree, err := settings.Parse(text)
	if err != nil {
		return err
	}
	v, err := settings.StringField(tree, "setting1", b.setting1)
	if err != nil {
		return err
	}
	b.setting1 = v
	return nil
}

func (b *backend) GetSettings() interface{} {
	return map[string]interface{}{"setting1": b.setting1}
}

func (b *backend) ProcessFrame(in *frame.Frame, push func(*frame.Frame) status.Code) status.Code {
	return push(in)
}

func (b *backend) NeedsReset() bool { return false }

// Reopen is never called since NeedsReset is false, but is implemented for
// interface completeness and to support a future backend-specific reset.
func (b *backend) Reopen() error { return nil }

// Descriptor returns the bypass_processor family descriptor. name lets the
// proc_name swap scenario register the identical behavior under a second
// name (bypass_processor2).
func Descriptor(name string) procif.ProcIF {
	return procif.ProcIF{
		Name:      name,
		TypeTag:   "filter",
		MediaType: "video/raw",
		Features:  procif.AcceptsReads | procif.AcceptsWrites,
		Open:      open,
	}
}
