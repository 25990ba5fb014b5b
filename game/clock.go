package game

// Clock converts variable wall-clock deltas into whole fixed-size steps.
type Clock struct {
	dt       float64
	maxSteps int
	acc      float64
	dropped  float64
}

// NewClock creates a clock with a step of dt seconds that releases at most
// maxSteps steps per Advance.
func NewClock(dt float64, maxSteps int) Clock {
	if maxSteps < 1 {
		maxSteps = 1
	}
	return Clock{dt: dt, maxSteps: maxSteps}
}

// Advance adds elapsed seconds and returns the number of steps to run.
// When the cap is hit the remaining accumulated time is discarded.
func (c *Clock) Advance(elapsed float64) int {
	if !(c.dt > 0) {
		return 0
	}
	if elapsed > 0 {
		c.acc += elapsed
	}
	steps := 0
	for c.acc >= c.dt {
		if steps == c.maxSteps {
			c.dropped += c.acc
			c.acc = 0
			break
		}
		c.acc -= c.dt
		steps++
	}
	return steps
}

// Pending returns the accumulated time not yet turned into steps.
func (c *Clock) Pending() float64 { return c.acc }

// Dropped returns the total time discarded by the catch-up cap.
func (c *Clock) Dropped() float64 { return c.dropped }

// Configure changes the step size and cap, keeping accumulated time.
func (c *Clock) Configure(dt float64, maxSteps int) {
	if maxSteps < 1 {
		maxSteps = 1
	}
	c.dt, c.maxSteps = dt, maxSteps
}

// Reset discards accumulated time.
func (c *Clock) Reset() {
	c.acc = 0
}
