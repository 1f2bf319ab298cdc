package journal

import (
	"fmt"
	"time"
)

var swedishWeekdays = [...]string{
	time.Sunday:    "söndag",
	time.Monday:    "måndag",
	time.Tuesday:   "tisdag",
	time.Wednesday: "onsdag",
	time.Thursday:  "torsdag",
	time.Friday:    "fredag",
	time.Saturday:  "lördag",
}

var swedishMonths = [...]string{
	"januari", "februari", "mars", "april", "maj", "juni",
	"juli", "augusti", "september", "oktober", "november", "december",
}

var swedishShortMonths = [...]string{
	"jan.", "feb.", "mars", "apr.", "maj", "juni",
	"juli", "aug.", "sep.", "okt.", "nov.", "dec.",
}

// FormatLongDate renders t as e.g. "onsdag 14 oktober 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", swedishWeekdays[t.Weekday()], t.Day(), swedishMonths[t.Month()-1], t.Year())
}

// FormatShortDate renders a date key as e.g. "14 okt. 2026". The key is read
// at local noon so the calendar day cannot shift.
func FormatShortDate(key DateKey, loc *time.Location) (string, error) {
	noon, err := key.Noon(loc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s %d", noon.Day(), swedishShortMonths[noon.Month()-1], noon.Year()), nil
}
