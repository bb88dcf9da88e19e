package fairlock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/mediaprocessors/core/fairlock"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(FairLockTestSuite))

type FairLockTestSuite struct{}

// TestArrivalOrder submits a batch of acquirers in a known order while the
// lock is held, and checks Release schedules them in that exact order.
func (s *FairLockTestSuite) TestArrivalOrder(c *gc.C) {
	fl := fairlock.New()
	fl.Acquire() // hold it so later Acquire calls queue up

	const n = 20
	order := make([]int, 0, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	started := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			// Stagger submission slightly to make arrival order
			// deterministic without relying on goroutine scheduling
			// races beyond what the test controls.
			time.Sleep(time.Duration(i) * 10 * time.Millisecond)
			fl.Acquire()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			fl.Release()
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(500 * time.Millisecond)
	fl.Release() // release the initial hold, unblocking ticket 1 (i==0)

	wg.Wait()
	c.Assert(order, gc.DeepEquals, func() []int {
		exp := make([]int, n)
		for i := range exp {
			exp[i] = i
		}
		return exp
	}())
}

func (s *FairLockTestSuite) TestMutualExclusion(c *gc.C) {
	fl := fairlock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fl.WithLock(func() {
				counter++
			})
		}()
	}
	wg.Wait()
	c.Assert(counter, gc.Equals, 100)
}
