package wizard

import "time"

// Clock abstracts wall-clock time and timer scheduling so debounce behavior
// can be tested without real delays.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

type realClock struct{}

// NewClock returns the wall-clock implementation used outside tests.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
