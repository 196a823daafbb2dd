package utils

import "time"

const DateLayout = "2006-01-02"

func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func DayEnd(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1)
}

// StartOfWeek returns the Sunday that opens t's week.
func StartOfWeek(t time.Time) time.Time {
	d := DayStart(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// ParseDay parses YYYY-MM-DD in loc; an empty string means today.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return DayStart(time.Now().In(loc)), nil
	}
	return time.ParseInLocation(DateLayout, s, loc)
}
