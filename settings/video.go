package settings

import (
	"github.com/hashicorp/go-multierror"
	"github.com/mediaprocessors/core/status"
)

// maxConfPresetLen is the spec section 6 limit on conf_preset's length.
const maxConfPresetLen = 127

// GenericVideoEncoderSettings holds the fields every generic video encoder
// descriptor exposes (spec section 6), plus the H.264-specific
// flag_zerolatency option that rides on top of the generic schema.
type GenericVideoEncoderSettings struct {
	BitRateOutput    int    `json:"bit_rate_output"`
	FrameRateOutput  int    `json:"frame_rate_output"`
	WidthOutput      int    `json:"width_output"`
	HeightOutput     int    `json:"height_output"`
	GopSize          int    `json:"gop_size"`
	ConfPreset       string `json:"conf_preset"`
	FlagZeroLatency  bool   `json:"flag_zerolatency"`
}

// DefaultVideoEncoderSettings returns the spec section 6 defaults.
func DefaultVideoEncoderSettings() GenericVideoEncoderSettings {
	return GenericVideoEncoderSettings{
		BitRateOutput:   300 * 1024,
		FrameRateOutput: 15,
		WidthOutput:     352,
		HeightOutput:    288,
		GopSize:         15,
		ConfPreset:      "",
		FlagZeroLatency: false,
	}
}

// maxPlaneDimension bounds width_output/height_output. Open Question #2
// (spec section 9) is resolved here in favor of eager rejection: an
// unsupported plane geometry fails PUT rather than surfacing later inside
// a codec call.
const maxPlaneDimension = 1 << 16

// Apply merges recognized fields from text into s. Every recognized field
// is validated before anything is written back to s, so an invalid value
// leaves s untouched (spec section 7's no-partial-commit rule).
func (s *GenericVideoEncoderSettings) Apply(text string) error {
	tree, err := Parse(text)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	bitRate, err := IntField(tree, "bit_rate_output", s.BitRateOutput)
	errs = multierror.Append(errs, err)
	frameRate, err := IntField(tree, "frame_rate_output", s.FrameRateOutput)
	errs = multierror.Append(errs, err)
	width, err := IntField(tree, "width_output", s.WidthOutput)
	errs = multierror.Append(errs, err)
	height, err := IntField(tree, "height_output", s.HeightOutput)
	errs = multierror.Append(errs, err)
	gopSize, err := IntField(tree, "gop_size", s.GopSize)
	errs = multierror.Append(errs, err)
	confPreset, err := StringField(tree, "conf_preset", s.ConfPreset)
	errs = multierror.Append(errs, err)
	zeroLatency, err := BoolField(tree, "flag_zerolatency", s.FlagZeroLatency)
	errs = multierror.Append(errs, err)

	if bitRate <= 0 {
		errs = multierror.Append(errs, status.New(status.InvalidArgument, "bit_rate_output must be > 0"))
	}
	if frameRate <= 0 {
		errs = multierror.Append(errs, status.New(status.InvalidArgument, "frame_rate_output must be > 0"))
	}
	if width <= 0 || width > maxPlaneDimension {
		errs = multierror.Append(errs, status.New(status.InvalidArgument, "width_output out of range: %d", width))
	}
	if height <= 0 || height > maxPlaneDimension {
		errs = multierror.Append(errs, status.New(status.InvalidArgument, "height_output out of range: %d", height))
	}
	if gopSize < 0 {
		errs = multierror.Append(errs, status.New(status.InvalidArgument, "gop_size must be >= 0"))
	}
	if len(confPreset) > maxConfPresetLen {
		errs = multierror.Append(errs, status.New(status.InvalidArgument, "conf_preset exceeds %d chars", maxConfPresetLen))
	}
	if errs.ErrorOrNil() != nil {
		return status.New(status.InvalidArgument, "%v", errs.ErrorOrNil())
	}

	s.BitRateOutput = bitRate
	s.FrameRateOutput = frameRate
	s.WidthOutput = width
	s.HeightOutput = height
	s.GopSize = gopSize
	s.ConfPreset = confPreset
	s.FlagZeroLatency = zeroLatency
	return nil
}

// AsTree renders s as a settings tree for the GET envelope.
func (s GenericVideoEncoderSettings) AsTree() Tree {
	return Tree{
		"bit_rate_output":   float64(s.BitRateOutput),
		"frame_rate_output": float64(s.FrameRateOutput),
		"width_output":      float64(s.WidthOutput),
		"height_output":     float64(s.HeightOutput),
		"gop_size":          float64(s.GopSize),
		"conf_preset":       s.ConfPreset,
		"flag_zerolatency":  s.FlagZeroLatency,
	}
}
