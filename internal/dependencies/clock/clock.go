package clock

import "time"

// Clock provides the current time so that day boundaries can be simulated in tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock in a fixed location
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock that reports local time
func New() *RealClock {
	return NewInLocation(time.Local)
}

// NewInLocation creates a RealClock whose calendar days follow loc
func NewInLocation(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.Local
	}
	return &RealClock{loc: loc}
}

// Now returns the current time in the clock's location
func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}
