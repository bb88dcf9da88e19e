package procs_test

import (
	"testing"

	"github.com/mediaprocessors/core/frame"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/procs"
	"github.com/mediaprocessors/core/settings"
	"github.com/mediaprocessors/core/status"
	"github.com/sirupsen/logrus"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(RegistryTestSuite))

type RegistryTestSuite struct{}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// bypassBackend passes frames through unchanged and exposes a single
// "setting1" field, matching spec.md Scenario A through D's bypass
// descriptor.
type bypassBackend struct {
	setting1 string
}

func newBypassBackend(initial string) (procif.BackendState, error) {
	b := &bypassBackend{setting1: "0"}
	if initial != "" {
		if err := b.PutSettings(initial); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *bypassBackend) Close() error { return nil }

func (b *bypassBackend) PutSettings(text string) error {
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

func (b *bypassBackend) GetSettings() interface{} {
	return map[string]interface{}{"setting1": b.setting1}
}

func (b *bypassBackend) ProcessFrame(in *frame.Frame, push func(*frame.Frame) status.Code) status.Code {
	return push(in)
}

func (b *bypassBackend) NeedsReset() bool { return false }

func (b *bypassBackend) Reopen() error { return nil }

func bypassDescriptor(name string) procif.ProcIF {
	return procif.ProcIF{
		Name:      name,
		TypeTag:   "filter",
		MediaType: "video/raw",
		Features:  procif.AcceptsReads | procif.AcceptsWrites,
		Open:      newBypassBackend,
	}
}

func newRegistry() *procs.Registry {
	return procs.Open(4, testLog(), nil)
}

// Scenario A — bypass register / unregister.
func (s *RegistryTestSuite) TestScenarioA_RegisterUnregisterReRegister(c *gc.C) {
	r := newRegistry()
	defer r.Close()

	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
	c.Assert(r.UnregisterType("bypass_processor"), gc.Equals, status.Success)
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
}

func (s *RegistryTestSuite) TestRegisterTypeConflict(c *gc.C) {
	r := newRegistry()
	defer r.Close()

	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Conflict)
}

// Scenario B — post / delete.
func (s *RegistryTestSuite) TestScenarioB_PostDelete(c *gc.C) {
	r := newRegistry()
	defer r.Close()
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)

	id, code := r.Post("bypass_processor", "setting1=100")
	c.Assert(code, gc.Equals, status.Success)
	c.Assert(id, gc.Equals, 0)

	c.Assert(r.Delete(0), gc.Equals, status.Success)
	_, code = r.IDGet(0)
	c.Assert(code, gc.Equals, status.NotFound)
}

// Scenario C — settings round-trip.
func (s *RegistryTestSuite) TestScenarioC_SettingsRoundTrip(c *gc.C) {
	r := newRegistry()
	defer r.Close()
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)

	id, code := r.Post("bypass_processor", "setting1=100")
	c.Assert(code, gc.Equals, status.Success)

	env, code := r.IDGet(id)
	c.Assert(code, gc.Equals, status.Success)
	inner := env.(map[string]interface{})["settings"].(map[string]interface{})
	c.Assert(inner["setting1"], gc.Equals, "100")

	c.Assert(r.IDPut(id, "setting1=200"), gc.Equals, status.Success)

	env, code = r.IDGet(id)
	c.Assert(code, gc.Equals, status.Success)
	inner = env.(map[string]interface{})["settings"].(map[string]interface{})
	c.Assert(inner["setting1"], gc.Equals, "200")
}

// Scenario D — proc_name swap.
func (s *RegistryTestSuite) TestScenarioD_ProcNameSwapPreservesSettings(c *gc.C) {
	r := newRegistry()
	defer r.Close()
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor2")), gc.Equals, status.Success)

	id, code := r.Post("bypass_processor", "setting1=200")
	c.Assert(code, gc.Equals, status.Success)

	c.Assert(r.IDPut(id, "proc_name=bypass_processor2"), gc.Equals, status.Success)

	env, code := r.IDGet(id)
	c.Assert(code, gc.Equals, status.Success)
	inner := env.(map[string]interface{})["settings"].(map[string]interface{})
	c.Assert(inner["setting1"], gc.Equals, "200")
}

func (s *RegistryTestSuite) TestPostUnknownTypeIsNotFound(c *gc.C) {
	r := newRegistry()
	defer r.Close()
	_, code := r.Post("no_such_type", "")
	c.Assert(code, gc.Equals, status.NotFound)
}

func (s *RegistryTestSuite) TestUnregisterThenPostIsNotFound(c *gc.C) {
	r := newRegistry()
	defer r.Close()
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
	c.Assert(r.UnregisterType("bypass_processor"), gc.Equals, status.Success)

	_, code := r.Post("bypass_processor", "")
	c.Assert(code, gc.Equals, status.NotFound)
}

func (s *RegistryTestSuite) TestCloseTearsDownLiveInstances(c *gc.C) {
	r := newRegistry()
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
	id, code := r.Post("bypass_processor", "")
	c.Assert(code, gc.Equals, status.Success)

	c.Assert(r.Close(), gc.IsNil)

	_, code = r.IDGet(id)
	c.Assert(code, gc.Equals, status.NotFound)
}

// Scenario E — frame bypass, driven through the registry.
func (s *RegistryTestSuite) TestScenarioE_FrameBypassPreservesRampContent(c *gc.C) {
	r := newRegistry()
	defer r.Close()
	c.Assert(r.RegisterType(bypassDescriptor("bypass_processor")), gc.Equals, status.Success)
	id, code := r.Post("bypass_processor", "")
	c.Assert(code, gc.Equals, status.Success)

	mk := func() *frame.Frame {
		// The frame is built with SampleFormat Undefined even though its
		// planes have YUV 4:2:0 geometry; the bypass must hand it back with
		// that format unchanged (spec.md Scenario E).
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

	f1, f2 := mk(), mk()
	c.Assert(r.IDSendFrame(id, f1), gc.Equals, status.Success)
	c.Assert(r.IDSendFrame(id, f2), gc.Equals, status.Success)

	for n := 0; n < 2; n++ {
		out, code := r.IDRecvFrame(id)
		c.Assert(code, gc.Equals, status.Success)
		c.Assert(out.SampleFormat, gc.Equals, frame.Undefined)
		c.Assert(out.PTS, gc.Equals, int64(-1))
		c.Assert(out.DTS, gc.Equals, int64(-1))
		for y := 0; y < 4; y++ {
			for x := 0; x < 8; x++ {
				c.Assert(out.Planes[0].Data[y*out.Planes[0].Stride+x], gc.Equals, byte(x+8*y))
			}
		}
		for p := 1; p <= 2; p++ {
			for y := 0; y < 2; y++ {
				for x := 0; x < 4; x++ {
					c.Assert(out.Planes[p].Data[y*out.Planes[p].Stride+x], gc.Equals, byte(x+4*y))
				}
			}
		}
	}
}
