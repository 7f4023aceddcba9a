package report

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Day returns the UTC calendar day containing t.
func Day(t time.Time) Window {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ParseDay resolves a YYYY-MM-DD date to its UTC day. A blank date means
// today. An unparsable date also means today, with a warning for the caller.
func ParseDay(date string, now time.Time) (Window, string) {
	date = strings.TrimSpace(date)
	if date == "" {
		return Day(now), ""
	}
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return Day(now), fmt.Sprintf("invalid date %q, showing today instead", date)
	}
	return Day(t), ""
}

// ParseRange resolves [from, to) given as two dates. Any invalid input, or an
// empty interval, falls back to today with a warning.
func ParseRange(from, to string, now time.Time) (Window, string) {
	f, errFrom := time.ParseInLocation(DateLayout, strings.TrimSpace(from), time.UTC)
	t, errTo := time.ParseInLocation(DateLayout, strings.TrimSpace(to), time.UTC)
	switch {
	case errFrom != nil || errTo != nil:
		return Day(now), fmt.Sprintf("invalid range %q..%q, showing today instead", from, to)
	case !t.After(f):
		return Day(now), fmt.Sprintf("range end %s is not after start %s, showing today instead", to, from)
	}
	return Window{Start: f, End: t}, ""
}
