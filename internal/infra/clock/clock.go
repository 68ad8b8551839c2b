package clock

import "time"

// System is the wall clock used outside of tests.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}
