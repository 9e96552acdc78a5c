package dataset

import "github.com/jonboulle/clockwork"

// clock is the package time source, swappable in tests so load timestamps
// are deterministic.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the package time source. Passing nil restores real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
