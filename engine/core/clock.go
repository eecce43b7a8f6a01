package core

import "time"

type Clock struct {
	started time.Time
	elapsed time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Starts the clock. Resets elapsed time.
func (c *Clock) Start() {
	c.started = time.Now()
	c.elapsed = 0
}

// Updates the clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if !c.started.IsZero() {
		c.elapsed = time.Since(c.started)
	}
}

// Stops the clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.started = time.Time{}
}

// Elapsed returns the time since Start in seconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}
