package fundlog

import "time"

// DefaultTimeZone is the zone the price source publishes in; it decides
// which calendar day a history entry belongs to.
const DefaultTimeZone = "Europe/Istanbul"

// Clock supplies the current time. Tests inject a fixed clock to cross day
// boundaries deterministically.
type Clock interface {
	Now() time.Time
}

type zoneClock struct {
	loc *time.Location
}

func (c zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// NewClock returns a wall clock reporting time in loc.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = LoadLocation(DefaultTimeZone)
	}
	return zoneClock{loc: loc}
}

// LoadLocation resolves a zone name, falling back to a fixed UTC+3 zone for
// Istanbul and to UTC otherwise when tzdata is missing.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	if name == DefaultTimeZone {
		return time.FixedZone(DefaultTimeZone, 3*60*60)
	}
	return time.UTC
}
