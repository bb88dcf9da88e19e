// Package genvideoenc implements the generic video-encoder descriptor named
// by spec.md section 6's recognized option table, plus the H.264-specific
// flag_zerolatency extension. process_frame only validates and forwards the
// frame; it exists to exercise the settings schema end to end without
// requiring an actual codec library. Unsupported plane dimensions are
// rejected eagerly at PutSettings time (spec.md's Open Question #2,
// resolved in package settings).
package genvideoenc

import (
	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/settings"
	"github.com/mediaprocessors/core/status"
)

// TypeName is the registered descriptor name.
const TypeName = "genvideoenc"

type backend struct {
	cfg settings.GenericVideoEncoderSettings
}

func open(initial string) (procif.BackendState, error) {
	b := &backend{cfg: settings.DefaultVideoEncoderSettings()}
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
	if in.Planes[0].Width <= 0 || in.Planes[0].Height <= 0 {
		return status.BadAudioVideoFormat
	}
	return push(in)
}

func (b *backend) NeedsReset() bool { return true }

// Reopen is a no-op: this stub backend holds no codec-private resources
// beyond its own settings struct, which Close leaves untouched.
func (b *backend) Reopen() error { return nil }

// Descriptor returns the genvideoenc family descriptor.
func Descriptor() procif.ProcIF {
	return procif.ProcIF{
		Name:      TypeName,
		TypeTag:   "encoder",
		MediaType: "video/raw",
		Features:  procif.AcceptsReads | procif.AcceptsWrites | procif.ReportsIOStats,
		Open:      open,
	}
}
