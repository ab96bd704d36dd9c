package clock

import "time"

// Clock provides the current time. Cookie expiry, TOTP codes and session-id
// encoding all read time through it so tests can pin it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

var _ Clock = (*RealClock)(nil)

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}
