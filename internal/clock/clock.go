// Package clock formats the human-readable timestamps attached to chat
// messages, plans and favorites.
package clock

import "time"

// DisplayLayout renders as month/day hour:minute, e.g. "10/15 09:05".
const DisplayLayout = "1/2 15:04"

// Clock returns the current time. Managers accept one so tests can pin it.
type Clock func() time.Time

// System is the wall clock.
func System() time.Time { return time.Now() }

// Display formats t with DisplayLayout in t's location.
func Display(t time.Time) string {
	return t.Format(DisplayLayout)
}

// Now returns the display string for c, falling back to the wall clock when c is nil.
func (c Clock) Now() string {
	if c == nil {
		return Display(System())
	}
	return Display(c())
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}
