package clock

import "time"

// Clock abstracts wall-clock time so services can be tested with fixed dates.
type Clock interface {
	Now() time.Time
}

// NewSystemClock returns the wall clock used outside of tests.
func NewSystemClock() Clock { return SystemClock{} }

// SystemClock returns the real time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
