package procif_test

import (
	"testing"

	"github.com/mediaprocessors/core/procif"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(ProcIFTestSuite))

type ProcIFTestSuite struct{}

func openA(string) (procif.BackendState, error) { return nil, nil }
func openB(string) (procif.BackendState, error) { return nil, nil }

func (s *ProcIFTestSuite) TestEqualStructural(c *gc.C) {
	a := procif.ProcIF{Name: "x", TypeTag: "encoder", MediaType: "audio/pcm", Features: procif.AcceptsReads, Open: openA}
	b := a

	c.Assert(a.Equal(b), gc.Equals, true)

	b.Name = "y"
	c.Assert(a.Equal(b), gc.Equals, false)

	b = a
	b.Open = openB
	c.Assert(a.Equal(b), gc.Equals, false)

	b = a
	b.Features = procif.AcceptsWrites
	c.Assert(a.Equal(b), gc.Equals, false)
}

func (s *ProcIFTestSuite) TestDuplicateCopiesStrings(c *gc.C) {
	a := procif.ProcIF{Name: "bypass_processor", TypeTag: "filter", MediaType: "video/raw", Open: openA}
	dup := a.Duplicate()
	c.Assert(dup.Equal(a), gc.Equals, true)
	c.Assert(dup.Name, gc.Equals, a.Name)
}

func (s *ProcIFTestSuite) TestFeatureHas(c *gc.C) {
	flags := procif.AcceptsReads | procif.ReportsLatencyStats
	c.Assert(flags.Has(procif.AcceptsReads), gc.Equals, true)
	c.Assert(flags.Has(procif.AcceptsWrites), gc.Equals, false)
}
