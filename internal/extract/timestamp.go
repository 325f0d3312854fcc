package extract

import (
	"strings"
	"time"
)

// timestampLayouts is the fixed ladder tried in order before the generic
// fallbacks. Telematics vendors are inconsistent about both ordering and
// 12/24-hour clocks.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/06 15:04",
}

// fallbackLayouts catch date-only and rarer vendor formats.
var fallbackLayouts = []string{
	"2006-01-02 15:04",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"02-Jan-2006 15:04",
	"Jan 2, 2006 3:04 PM",
}

// ParseTimestamp parses a raw timestamp using the format ladder. Unparseable
// values yield ok=false and are logged by the caller, never fatal.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if IsSentinel(s) {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseClock parses an HH:MM or h:MM AM/PM wall-clock value and anchors it to
// the given date. Used for scheduled shift starts from the derived sheet.
func ParseClock(s string, date time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if IsSentinel(s) {
		return time.Time{}, false
	}

	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM"} {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, date.Location()), true
		}
	}

	// Some exports put a full timestamp in the start-time column.
	if t, ok := ParseTimestamp(s); ok {
		return time.Date(date.Year(), date.Month(), date.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, date.Location()), true
	}

	return time.Time{}, false
}
