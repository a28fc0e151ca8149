package stim

// EventCounter issues the strictly increasing event ids attached to
// emitted pulses.  It starts at 1 and is incremented before each use,
// so the first pulse of a session carries id 2.
//
// The counter is process-wide state for the duration of an experiment:
// it must never be reset mid-experiment, or event ids desynchronize
// from previously recorded files.  It is threaded explicitly through
// encoding calls rather than held as a package global so tests can use
// independent counters.
type EventCounter struct {
	last int
}

// NewEventCounter returns a counter with the initial value of 1.
func NewEventCounter() *EventCounter {
	return &EventCounter{last: 1}
}

// Next increments the counter and returns the new value.
func (c *EventCounter) Next() int {
	c.last++
	return c.last
}

// Value returns the most recently issued value without incrementing.
func (c *EventCounter) Value() int {
	return c.last
}
