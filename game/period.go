package game

import (
	"fmt"
	"time"
)

// Period is one of the four aggregation windows scores are filed into.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Periods returns all aggregation windows in fixed order.
func Periods() []Period {
	return []Period{Daily, Weekly, Monthly, Yearly}
}

// Keys identifies the specific bucket instance a date falls into for
// each period. Weeks follow ISO-8601 numbering, so a date near a year
// boundary may carry a weekly key from the adjacent year.
type Keys struct {
	Daily   string
	Weekly  string
	Monthly string
	Yearly  string
}

// KeysFor derives the four bucket keys from a calendar date.
func KeysFor(t time.Time) Keys {
	isoYear, isoWeek := t.ISOWeek()
	return Keys{
		Daily:   t.Format("2006-01-02"),
		Weekly:  fmt.Sprintf("%04d-W%02d", isoYear, isoWeek),
		Monthly: fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())),
		Yearly:  fmt.Sprintf("%04d", t.Year()),
	}
}

// For selects the key for the given period.
func (k Keys) For(p Period) string {
	switch p {
	case Daily:
		return k.Daily
	case Weekly:
		return k.Weekly
	case Monthly:
		return k.Monthly
	case Yearly:
		return k.Yearly
	}
	return ""
}

// DayOf parses a daily bucket key back into its calendar date in the
// local timezone.
func DayOf(key string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", key, time.Local)
}
