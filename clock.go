package truelicense

import "time"

// SystemClock reports the wall clock via time.Now. It is the context's
// default Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
