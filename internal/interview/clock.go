package interview

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now so tests can pin wall-clock-sensitive decisions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the real wall clock.
func SystemClock() Clock { return systemClock{} }
