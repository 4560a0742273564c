package schedule

import "time"

// Clock supplies the current instant. It is injected so date assignment is
// deterministic under test; production code uses SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC instant.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
