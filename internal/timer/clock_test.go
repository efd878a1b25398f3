package timer

import (
	"sync"
	"time"
)

// fakeClock hands out callbacks that only run when the test advances time.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	f       func()
	stopped bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// outstanding counts scheduled callbacks that have not been stopped.
func (c *fakeClock) outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// advance moves time forward one second and fires every live callback.
func (c *fakeClock) advance() {
	c.mu.Lock()
	c.now = c.now.Add(time.Second)
	due := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, t := range due {
		t.clock.mu.Lock()
		live := !t.stopped
		t.stopped = true
		t.clock.mu.Unlock()
		if live {
			t.f()
		}
	}
}

func (c *fakeClock) advanceN(n int) {
	for i := 0; i < n; i++ {
		c.advance()
	}
}
