package bypass_test

import (
	"testing"

	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/processors/bypass"
	"github.com/mediaprocessors/core/procs"
	"github.com/mediaprocessors/core/status"
	"github.com/sirupsen/logrus"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(BypassTestSuite))

type BypassTestSuite struct{}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func (s *BypassTestSuite) TestScenarioEViaRealDescriptor(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(bypass.Descriptor(bypass.TypeName)), gc.Equals, status.Success)

	id, code := r.Post(bypass.TypeName, "")
	c.Assert(code, gc.Equals, status.Success)

	mk := func() *frame.Frame {
		f, err := frame.New(3, []int{8, 4, 4}, []int{8, 4, 4}, []int{4, 2, 2}, frame.Undefined)
		c.Assert(err, gc.IsNil)
		for y := 0; y < 4; y++ {
			for x := 0; x < 8; x++ {
				f.Planes[0].Data[y*f.Planes[0].Stride+x] = byte(x + 8*y)
			}
		}
		for p := 1; p <= 2; p++ {
			for y := 0; y < 2; y++ {
				for x := 0; x < 4; x++ {
					f.Planes[p].Data[y*f.Planes[p].Stride+x] = byte(x + 4*y)
				}
			}
		}
		return f
	}
	in1, in2 := mk(), mk()

	c.Assert(r.IDSendFrame(id, in1), gc.Equals, status.Success)
	c.Assert(r.IDSendFrame(id, in2), gc.Equals, status.Success)

	for range []*frame.Frame{in1, in2} {
		out, code := r.IDRecvFrame(id)
		c.Assert(code, gc.Equals, status.Success)
		c.Assert(out.SampleFormat, gc.Equals, frame.Undefined)
		c.Assert(out.PTS, gc.Equals, int64(-1))
		c.Assert(out.DTS, gc.Equals, int64(-1))
	}
}

func (s *BypassTestSuite) TestProcNameSwapBetweenTwoBypassDescriptors(c *gc.C) {
	r := procs.Open(2, testLog(), nil)
	defer r.Close()
	c.Assert(r.RegisterType(bypass.Descriptor(bypass.TypeName)), gc.Equals, status.Success)
	c.Assert(r.RegisterType(bypass.Descriptor(bypass.TypeName2)), gc.Equals, status.Success)

	id, code := r.Post(bypass.TypeName, "setting1=200")
	c.Assert(code, gc.Equals, status.Success)

	c.Assert(r.IDPut(id, "proc_name="+bypass.TypeName2), gc.Equals, status.Success)

	env, code := r.IDGet(id)
	c.Assert(code, gc.Equals, status.Success)
	inner := env.(map[string]interface{})["settings"].(map[string]interface{})
	c.Assert(inner["setting1"], gc.Equals, "200")
}
