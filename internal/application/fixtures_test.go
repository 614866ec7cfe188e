package application

import (
	"fmt"
	"sync"
	"time"
)

// testClock is a controllable time source. The richer fixture clock lives in
// internal/testfixtures, which builds on this package and so cannot be used
// from its tests.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{current: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) NowFunc() func() time.Time {
	return c.Now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// sequenceIDs yields "prefix-1", "prefix-2", ...
func sequenceIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
