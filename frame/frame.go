// Package frame implements the multi-plane media sample container described
// in spec section 3/4.4: up to eight independently strided planes backed by
// one contiguous allocation, plus scalar timing/format metadata.
package frame

import "github.com/mediaprocessors/core/status"

// MaxPlanes is the fixed upper bound on the number of planes a Frame may
// carry.
const MaxPlanes = 8

// MaxWidth and MaxHeight bound any single plane's dimensions.
const (
	MaxWidth  = 1 << 16
	MaxHeight = 1 << 16
)

// baseAlign is the row-stride alignment Dup realigns every plane to.
const baseAlign = 32

// SampleFormat is a closed, extensible enumeration of payload layouts.
type SampleFormat int

const (
	// Undefined marks a frame whose payload format is opaque to the
	// runtime (e.g. compressed bitstream data, or a bypassed frame).
	Undefined SampleFormat = iota
	// PlanarYUV420 is 4:2:0 planar YUV: plane 0 is luma, planes 1-2 are
	// half-resolution chroma.
	PlanarYUV420
	// InterleavedS16 is interleaved signed-16 PCM audio in plane 0.
	InterleavedS16
	// PlanarS16 is planar signed-16 PCM audio, one plane per channel.
	PlanarS16
)

func (f SampleFormat) String() string {
	switch f {
	case Undefined:
		return "undefined"
	case PlanarYUV420:
		return "planar_yuv420"
	case InterleavedS16:
		return "interleaved_signed_16b"
	case PlanarS16:
		return "planar_signed_16b"
	default:
		return "unknown"
	}
}

// Plane describes one populated plane of a Frame. Data aliases into the
// Frame's single backing allocation; it is nil for an unused plane.
type Plane struct {
	Data   []byte
	Stride int
	Width  int
	Height int
}

func (p Plane) populated() bool { return p.Data != nil }

// Frame is a multi-plane media sample with timing and format metadata, and
// the owner of the single contiguous allocation its planes alias into.
type Frame struct {
	Planes [MaxPlanes]Plane
	buf    []byte // the one backing allocation; planes alias sub-slices of it

	SampleFormat SampleFormat
	SampleRate   int
	PTS          int64
	DTS          int64
	StreamID     int64
}

// New allocates a Frame with nPlanes populated planes, each sized
// stride*height, validating the plane geometry invariants from spec 3.
func New(nPlanes int, strides, widths, heights []int, format SampleFormat) (*Frame, error) {
	if nPlanes <= 0 || nPlanes > MaxPlanes {
		return nil, status.New(status.InvalidArgument, "plane count %d out of range", nPlanes)
	}
	if len(strides) != nPlanes || len(widths) != nPlanes || len(heights) != nPlanes {
		return nil, status.New(status.InvalidArgument, "plane geometry slices must have length %d", nPlanes)
	}

	total := 0
	offsets := make([]int, nPlanes)
	for i := 0; i < nPlanes; i++ {
		if err := validatePlaneGeometry(strides[i], widths[i], heights[i]); err != nil {
			return nil, err
		}
		offsets[i] = total
		total += strides[i] * heights[i]
	}

	f := &Frame{
		buf:          make([]byte, total),
		SampleFormat: format,
		PTS:          -1,
		DTS:          -1,
	}
	for i := 0; i < nPlanes; i++ {
		size := strides[i] * heights[i]
		f.Planes[i] = Plane{
			Data:   f.buf[offsets[i] : offsets[i]+size],
			Stride: strides[i],
			Width:  widths[i],
			Height: heights[i],
		}
	}
	return f, nil
}

func validatePlaneGeometry(stride, width, height int) error {
	if width <= 0 || width > MaxWidth {
		return status.New(status.InvalidArgument, "width %d out of range", width)
	}
	if height <= 0 {
		return status.New(status.InvalidArgument, "height %d out of range", height)
	}
	if height > MaxHeight && height != 1 {
		return status.New(status.InvalidArgument, "height %d out of range", height)
	}
	if stride < width {
		return status.New(status.InvalidArgument, "stride %d smaller than width %d", stride, width)
	}
	return nil
}

func alignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}

// Dup performs a deep, plane-by-plane row-wise copy. Each destination
// stride is realigned to baseAlign, and the whole frame is backed by one
// freshly allocated buffer; metadata is copied verbatim. Dup is idempotent:
// Dup(Dup(f)) is byte-equal to Dup(f).
func (f *Frame) Dup() *Frame {
	newStrides := [MaxPlanes]int{}
	offsets := [MaxPlanes]int{}
	total := 0
	nPlanes := 0
	for i, p := range f.Planes {
		if !p.populated() {
			continue
		}
		nPlanes = i + 1
		newStrides[i] = alignUp(p.Stride, baseAlign)
		offsets[i] = total
		total += newStrides[i] * p.Height
	}

	out := &Frame{
		buf:          make([]byte, total),
		SampleFormat: f.SampleFormat,
		SampleRate:   f.SampleRate,
		PTS:          f.PTS,
		DTS:          f.DTS,
		StreamID:     f.StreamID,
	}
	for i := 0; i < nPlanes; i++ {
		p := f.Planes[i]
		if !p.populated() {
			continue
		}
		dst := out.buf[offsets[i] : offsets[i]+newStrides[i]*p.Height]
		out.Planes[i] = Plane{Data: dst, Stride: newStrides[i], Width: p.Width, Height: p.Height}
		for row := 0; row < p.Height; row++ {
			srcRow := p.Data[row*p.Stride : row*p.Stride+p.Width]
			dstRow := dst[row*newStrides[i] : row*newStrides[i]+p.Width]
			copy(dstRow, srcRow)
		}
	}
	return out
}

// Release drops this Frame's references to its backing buffer. Go's
// garbage collector reclaims the memory once nothing else holds it; Release
// exists so callers have a single, explicit end-of-lifecycle call that
// matches the ownership contract described in spec 3, instead of relying on
// planes silently outliving their intended scope.
func (f *Frame) Release() {
	for i := range f.Planes {
		f.Planes[i] = Plane{}
	}
	f.buf = nil
}

// PayloadSize returns the total number of payload bytes across all
// populated planes, used by the FIFO layer and I/O statistics as the
// element's size.
func (f *Frame) PayloadSize() int {
	total := 0
	for _, p := range f.Planes {
		if p.populated() {
			total += p.Stride * p.Height
		}
	}
	return total
}
