// Package genaudioenc implements the generic audio-encoder descriptor
// named by spec.md section 6's recognized option table. process_frame only
// validates and forwards the frame; it exists to exercise the
// bit_rate_output/sample_rate_output settings schema end to end without
// requiring an actual codec library.
package genaudioenc

import (
	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/settings"
	"github.com/mediaprocessors/core/status"
)

// TypeName is the registered descriptor name.
const TypeName = "genaudioenc"

type backend struct {
	cfg settings.GenericAudioEncoderSettings
}

func open(initial string) (procif.BackendState, error) {
	b := &backend{cfg: settings.DefaultAudioEncoderSettings()}
	if initial != "" {
		if err := b.cfg.Apply(initial); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *backend) Close() error { return nil }

func (b *backend) PutSettings(text string) error { return b.cfg.Apply(text) }

func (b *backend) GetSettings() interface{} { return map[string]interface{}(b.cfg.AsTree()) }

func (b *backend) ProcessFrame(in *frame.Frame, push func(*frame.Frame) status.Code) status.Code {
	if in == nil {
		return status.TryAgain
	}
	if in.SampleFormat != frame.InterleavedS16 && in.SampleFormat != frame.PlanarS16 {
		return status.BadAudioVideoFormat
	}
	return push(in)
}

func (b *backend) NeedsReset() bool { return true }

// Reopen is a no-op: this stub backend holds no codec-private resources
// beyond its own settings struct, which Close leaves untouched.
func (b *backend) Reopen() error { return nil }

// Descriptor returns the genaudioenc family descriptor.
func Descriptor() procif.ProcIF {
	return procif.ProcIF{
		Name:      TypeName,
		TypeTag:   "encoder",
		MediaType: "audio/pcm",
		Features:  procif.AcceptsReads | procif.AcceptsWrites | procif.ReportsIOStats,
		Open:      open,
	}
}
