package secondary

import "time"

// Clock abstracts "now" so date-rollover and ladder logic are testable
// without waiting for real time to pass.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
