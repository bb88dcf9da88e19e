package proc_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/mediaprocessors/core/proc"
	"github.com/mediaprocessors/core/procif"
	"github.com/mediaprocessors/core/procif/mocks"
	"github.com/mediaprocessors/core/status"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(InstanceMockTestSuite))

// InstanceMockTestSuite exercises the reset-on-new-settings protocol
// against a gomock.Controller-backed double instead of the hand-written
// passthroughBackend, so the exact Close/Reopen call order can be asserted
// directly rather than inferred from counters.
type InstanceMockTestSuite struct{}

func mockDesc(backend procif.BackendState) procif.ProcIF {
	return procif.ProcIF{
		Name:      "mocked",
		MediaType: "test/mock",
		Features:  procif.AcceptsWrites | procif.AcceptsReads,
		Open: func(string) (procif.BackendState, error) {
			return backend, nil
		},
	}
}

func (s *InstanceMockTestSuite) TestResetOnNewSettingsClosesThenReopensSameBackend(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	backend := mocks.NewMockBackendState(ctrl)
	backend.EXPECT().PutSettings("gop_size=30").Return(nil)
	backend.EXPECT().NeedsReset().Return(true)
	gomock.InOrder(
		backend.EXPECT().Close().Return(nil),
		backend.EXPECT().Reopen().Return(nil),
	)
	// The final teardown Close from Instance.Close, independent of the
	// reset-time Close/Reopen pair above.
	backend.EXPECT().Close().Return(nil)

	inst, err := proc.Open(mockDesc(backend), 1, "", 2, testLog(), nil)
	c.Assert(err, gc.IsNil)

	c.Assert(inst.PutSettings("gop_size=30"), gc.Equals, status.Success)
	c.Assert(inst.Close(), gc.IsNil)
}
