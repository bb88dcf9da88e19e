package genaudiodec_test

import (
	"testing"

	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/processors/genaudiodec"
	"github.com/mediaprocessors/core/procs"
	"github.com/mediaprocessors/core/status"
	"github.com/sirupsen/logrus"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(GenAudioDecTestSuite))

type GenAudioDecTestSuite struct{}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func (s *GenAudioDecTestSuite) TestDefaultOutputFormatIsInterleaved(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(genaudiodec.Descriptor()), gc.Equals, status.Success)
	id, code := r.Post(genaudiodec.TypeName, "")
	c.Assert(code, gc.Equals, status.Success)

	f, err := frame.New(1, []int{32}, []int{32}, []int{1}, frame.Undefined)
	c.Assert(err, gc.IsNil)
	c.Assert(r.IDSendFrame(id, f), gc.Equals, status.Success)

	out, code := r.IDRecvFrame(id)
	c.Assert(code, gc.Equals, status.Success)
	c.Assert(out.SampleFormat, gc.Equals, frame.InterleavedS16)
}

func (s *GenAudioDecTestSuite) TestPutPlanarFormatChangesOutput(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(genaudiodec.Descriptor()), gc.Equals, status.Success)
	id, code := r.Post(genaudiodec.TypeName, "")
	c.Assert(code, gc.Equals, status.Success)

	c.Assert(r.IDPut(id, "samples_format_output=planar_signed_16b"), gc.Equals, status.Success)

	f, err := frame.New(1, []int{32}, []int{32}, []int{1}, frame.Undefined)
	c.Assert(err, gc.IsNil)
	c.Assert(r.IDSendFrame(id, f), gc.Equals, status.Success)

	out, code := r.IDRecvFrame(id)
	c.Assert(code, gc.Equals, status.Success)
	c.Assert(out.SampleFormat, gc.Equals, frame.PlanarS16)
}

func (s *GenAudioDecTestSuite) TestRejectsUnknownFormatAtPut(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(genaudiodec.Descriptor()), gc.Equals, status.Success)
	id, code := r.Post(genaudiodec.TypeName, "")
	c.Assert(code, gc.Equals, status.Success)

	c.Assert(r.IDPut(id, "samples_format_output=float32"), gc.Equals, status.InvalidArgument)
}
