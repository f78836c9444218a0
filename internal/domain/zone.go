package domain

import (
	"fmt"
	"strings"
	"time"
)

type TimezoneMode string

const (
	Local TimezoneMode = "local"
	UTC   TimezoneMode = "utc"
)

func ParseTimezoneMode(s string) (TimezoneMode, error) {
	switch TimezoneMode(strings.ToLower(s)) {
	case "", Local:
		return Local, nil
	case UTC:
		return UTC, nil
	default:
		return "", fmt.Errorf("unknown timezone mode %q", s)
	}
}

// Zone resolves a TimezoneMode to a location. Every date computation of one analysis uses a single Zone.
type Zone struct {
	Mode TimezoneMode
	// Local is the location used in local mode. When nil, time.Local is used.
	Local *time.Location
}

func (z Zone) Location() *time.Location {
	if z.Mode == UTC {
		return time.UTC
	}
	if z.Local != nil {
		return z.Local
	}
	return time.Local
}

// In converts t to the zone's location.
func (z Zone) In(t time.Time) time.Time {
	return t.In(z.Location())
}

// Key is a stable textual form of the zone, used in cache keys.
func (z Zone) Key() string {
	if z.Mode == UTC {
		return string(UTC)
	}
	return string(Local) + ":" + z.Location().String()
}

// YearWindow is the closed interval covering one calendar year in a zone.
type YearWindow struct {
	Year  int
	Start time.Time
	End   time.Time
}

func NewYearWindow(year int, z Zone) YearWindow {
	loc := z.Location()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return YearWindow{
		Year:  year,
		Start: start,
		End:   start.AddDate(1, 0, 0).Add(-time.Nanosecond),
	}
}

// Compare returns -1 if t is older than the window, 1 if it is newer and 0 if it falls inside.
func (w YearWindow) Compare(t time.Time) int {
	switch {
	case t.Before(w.Start):
		return -1
	case t.After(w.End):
		return 1
	default:
		return 0
	}
}

func (w YearWindow) Contains(t time.Time) bool {
	return w.Compare(t) == 0
}
