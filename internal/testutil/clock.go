package testutil

import (
	"fmt"
	"sync"
	"time"

	"camorg/internal/organizer"
)

// StubClock is a manual clock for journal timestamps. Each call to Now
// returns the current time and then moves it forward by the configured step,
// which is zero unless set with Tick. Safe for concurrent use.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStubClock creates a StubClock set to t.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to the morning of 2015-04-13 UTC, the
// date most test uploads are named after.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2015, 4, 13, 9, 12, 33, 0, time.UTC))
}

// Tick makes every later Now call advance the clock by step.
func (c *StubClock) Tick(step time.Duration) *StubClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = step
	return c
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator hands out run UUIDs "run-1", "run-2" and so on.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%d", g.next)
}

var (
	_ organizer.Clock       = (*StubClock)(nil)
	_ organizer.IDGenerator = (*StubIDGenerator)(nil)
)
