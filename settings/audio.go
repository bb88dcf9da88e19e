package settings

import (
	"github.com/hashicorp/go-multierror"
	"github.com/mediaprocessors/core/status"
)

// SampleFormatName is the closed set of output sample formats a generic
// audio decoder recognizes (spec section 6).
type SampleFormatName string

const (
	PlanarSigned16      SampleFormatName = "planar_signed_16b"
	InterleavedSigned16 SampleFormatName = "interleaved_signed_16b"
)

func validSampleFormat(s SampleFormatName) bool {
	return s == PlanarSigned16 || s == InterleavedSigned16
}

// GenericAudioEncoderSettings holds the bit_rate_output/sample_rate_output
// fields every generic audio encoder descriptor exposes.
type GenericAudioEncoderSettings struct {
	BitRateOutput    int `json:"bit_rate_output"`
	SampleRateOutput int `json:"sample_rate_output"`
}

// DefaultAudioEncoderSettings returns the spec section 6 defaults.
func DefaultAudioEncoderSettings() GenericAudioEncoderSettings {
	return GenericAudioEncoderSettings{BitRateOutput: 64000, SampleRateOutput: 44100}
}

// Apply merges recognized fields from text into s. Per spec section 7,
// unrecognized fields are ignored and the apply is all-or-nothing: any
// recognized field with an invalid value leaves s unmodified.
func (s *GenericAudioEncoderSettings) Apply(text string) error {
	tree, err := Parse(text)
	if err != nil {
		return err
	}
	var errs *multierror.Error
	bitRate, err := IntField(tree, "bit_rate_output", s.BitRateOutput)
	errs = multierror.Append(errs, err)
	sampleRate, err := IntField(tree, "sample_rate_output", s.SampleRateOutput)
	errs = multierror.Append(errs, err)
	if errs.ErrorOrNil() != nil {
		return status.New(status.InvalidArgument, "%v", errs.ErrorOrNil())
	}
	s.BitRateOutput = bitRate
	s.SampleRateOutput = sampleRate
	return nil
}

// AsTree renders s as a settings tree for the GET envelope.
func (s GenericAudioEncoderSettings) AsTree() Tree {
	return Tree{"bit_rate_output": float64(s.BitRateOutput), "sample_rate_output": float64(s.SampleRateOutput)}
}

// GenericAudioDecoderSettings holds the samples_format_output field every
// generic audio decoder descriptor exposes.
type GenericAudioDecoderSettings struct {
	SamplesFormatOutput SampleFormatName `json:"samples_format_output"`
}

// DefaultAudioDecoderSettings returns the spec section 6 default.
func DefaultAudioDecoderSettings() GenericAudioDecoderSettings {
	return GenericAudioDecoderSettings{SamplesFormatOutput: InterleavedSigned16}
}

// Apply merges the samples_format_output field from text into s, rejecting
// any value outside the closed set.
func (s *GenericAudioDecoderSettings) Apply(text string) error {
	tree, err := Parse(text)
	if err != nil {
		return err
	}
	raw, err := StringField(tree, "samples_format_output", string(s.SamplesFormatOutput))
	if err != nil {
		return err
	}
	format := SampleFormatName(raw)
	if !validSampleFormat(format) {
		return status.New(status.InvalidArgument, "samples_format_output: unsupported value %q", raw)
	}
	s.SamplesFormatOutput = format
	return nil
}

// AsTree renders s as a settings tree for the GET envelope.
func (s GenericAudioDecoderSettings) AsTree() Tree {
	return Tree{"samples_format_output": string(s.SamplesFormatOutput)}
}
