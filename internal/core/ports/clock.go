package ports

import "time"

// Clock supplies the server time stamped on transitions and samples.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function such as time.Now to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
