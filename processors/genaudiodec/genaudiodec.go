// Package genaudiodec implements the generic audio-decoder descriptor
// named by spec.md section 6's recognized option table. process_frame only
// validates and forwards the frame; it exists to exercise the
// samples_format_output settings schema end to end without requiring an
// actual codec library.
package genaudiodec

import (
	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/settings"
	"github.com/mediaprocessors/core/status"
)

// TypeName is the registered descriptor name.
const TypeName = "genaudiodec"

type backend struct {
	cfg settings.GenericAudioDecoderSettings
}

func open(initial string) (procif.BackendState, error) {
	b := &backend{cfg: settings.DefaultAudioDecoderSettings()}
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

func (b *backend) outputFormat() frame.SampleFormat {
	if b.cfg.SamplesFormatOutput == settings.PlanarSigned16 {
		return frame.PlanarS16
	}
	return frame.InterleavedS16
}

func (b *backend) ProcessFrame(in *frame.Frame, push func(*frame.Frame) status.Code) status.Code {
	if in == nil {
		return status.TryAgain
	}
	in.SampleFormat = b.outputFormat()
	return push(in)
}

func (b *backend) NeedsReset() bool { return true }

// Reopen is a no-op: this stub backend holds no codec-private resources
// beyond its own settings struct, which Close leaves untouched.
func (b *backend) Reopen() error { return nil }

// Descriptor returns the genaudiodec family descriptor.
func Descriptor() procif.ProcIF {
	return procif.ProcIF{
		Name:      TypeName,
		TypeTag:   "decoder",
		MediaType: "audio/pcm",
		Features:  procif.AcceptsReads | procif.AcceptsWrites | procif.ReportsIOStats,
		Open:      open,
	}
}
