package genaudioenc_test

import (
	"testing"

	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/processors/genaudioenc"
	"github.com/mediaprocessors/core/procs"
	"github.com/mediaprocessors/core/status"
	"github.com/sirupsen/logrus"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(GenAudioEncTestSuite))

type GenAudioEncTestSuite struct{}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func (s *GenAudioEncTestSuite) TestDefaultsSurfaceThroughRegistry(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(genaudioenc.Descriptor()), gc.Equals, status.Success)

	id, code := r.Post(genaudioenc.TypeName, "")
	c.Assert(code, gc.Equals, status.Success)

	env, code := r.IDGet(id)
	c.Assert(code, gc.Equals, status.Success)
	inner := env.(map[string]interface{})["settings"].(map[string]interface{})
	c.Assert(inner["bit_rate_output"], gc.Equals, float64(64000))
	c.Assert(inner["sample_rate_output"], gc.Equals, float64(44100))
}

func (s *GenAudioEncTestSuite) TestRejectsNonPCMInputFormat(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(genaudioenc.Descriptor()), gc.Equals, status.Success)
	id, code := r.Post(genaudioenc.TypeName, "")
	c.Assert(code, gc.Equals, status.Success)

	f, err := frame.New(1, []int{32}, []int{32}, []int{1}, frame.Undefined)
	c.Assert(err, gc.IsNil)
	c.Assert(r.IDSendFrame(id, f), gc.Equals, status.Success)

	// The worker rejects the frame (bad format) and logs/continues rather
	// than producing output. RecvFrame would block waiting for output that
	// never comes, so the test does not read; it only asserts the instance
	// stays alive and still accepts a settings update.
	c.Assert(r.IDPut(id, "bit_rate_output=96000"), gc.Equals, status.Success)
}
