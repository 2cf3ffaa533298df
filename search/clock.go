package search

import "time"

//go:generate go tool mockgen -destination=./mocks/clock_mock.go -package=mocks . Clock

// Clock supplies the wall time the anytime loop measures its budget with.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the real time.
var SystemClock Clock = ClockFunc(time.Now)
