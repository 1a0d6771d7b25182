package format

import (
	"strings"
	"time"
)

// Unit is the coarse bucket of a relative end date.
type Unit string

const (
	UnitEnded    Unit = "ended"
	UnitToday    Unit = "today"
	UnitTomorrow Unit = "tomorrow"
	UnitDays     Unit = "days"
	UnitWeeks    Unit = "weeks"
	UnitMonths   Unit = "months"
	UnitYears    Unit = "years"
	// UnitUnknown marks an end date that is not a timestamp.
	UnitUnknown Unit = "unknown"
)

// Relative is a locale-free countdown. Count is the magnitude for days,
// weeks, months and years; ExtraMonths is only set alongside UnitYears.
type Relative struct {
	Unit        Unit `json:"unit"`
	Count       int  `json:"count"`
	ExtraMonths int  `json:"extraMonths"`
}

const dayMillis = int64(24 * time.Hour / time.Millisecond)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and the date-only and zone-less forms the
// upstream API emits. Zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date is RelativeDate against the wall clock.
func Date(iso string) Relative {
	return RelativeDate(iso, time.Now())
}

// RelativeDate buckets the whole-day distance from now to iso.
// Days are floored, so anything earlier than now is ended.
func RelativeDate(iso string, now time.Time) Relative {
	target, ok := ParseTimestamp(iso)
	if !ok {
		return Relative{Unit: UnitUnknown}
	}

	diff := target.Sub(now).Milliseconds()
	days := diff / dayMillis
	if diff < 0 && diff%dayMillis != 0 {
		days--
	}

	switch {
	case days < 0:
		return Relative{Unit: UnitEnded}
	case days == 0:
		return Relative{Unit: UnitToday}
	case days == 1:
		return Relative{Unit: UnitTomorrow}
	case days < 7:
		return Relative{Unit: UnitDays, Count: int(days)}
	case days < 30:
		return Relative{Unit: UnitWeeks, Count: int(days / 7)}
	case days < 365:
		return Relative{Unit: UnitMonths, Count: int(days / 30)}
	default:
		return Relative{Unit: UnitYears, Count: int(days / 365), ExtraMonths: int((days % 365) / 30)}
	}
}
