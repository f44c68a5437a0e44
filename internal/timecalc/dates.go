package timecalc

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var weekdayAbbrev = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

var monthNames = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// DateKey formats t as a canonical "YYYY-MM-DD" key.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// MonthKey formats t as a canonical "YYYY-MM" key.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseDate parses a "YYYY-MM-DD" key as a UTC date.
func ParseDate(key string) (time.Time, error) {
	t, err := time.Parse(dateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// ParseMonthKey parses a "YYYY-MM" key and returns the first day of that month (UTC).
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", key, err)
	}
	return t, nil
}

// MonthOf returns the month key a date key belongs to.
func MonthOf(dateKey string) string {
	if len(dateKey) < 7 {
		return ""
	}
	return dateKey[:7]
}

// DaysInMonth returns every date key of the month in ascending order.
// A malformed month key yields no days.
func DaysInMonth(monthKey string) []string {
	first, err := ParseMonthKey(monthKey)
	if err != nil {
		return nil
	}
	n := first.AddDate(0, 1, -1).Day()
	days := make([]string, n)
	for i := range days {
		days[i] = DateKey(first.AddDate(0, 0, i))
	}
	return days
}

// OffsetMonth moves a month key by offset months.
func OffsetMonth(monthKey string, offset int) string {
	first, err := ParseMonthKey(monthKey)
	if err != nil {
		return monthKey
	}
	return MonthKey(first.AddDate(0, offset, 0))
}

// MonthKeys returns the twelve month keys of a year.
func MonthKeys(year int) []string {
	keys := make([]string, 12)
	for m := range keys {
		keys[m] = fmt.Sprintf("%04d-%02d", year, m+1)
	}
	return keys
}

// IsWeekend reports whether a date key falls on Saturday or Sunday.
func IsWeekend(dateKey string) bool {
	t, err := ParseDate(dateKey)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWeekday reports whether a date key falls on Monday..Friday.
func IsWeekday(dateKey string) bool {
	t, err := ParseDate(dateKey)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// CountWorkdays counts Monday..Friday in a month, ignoring holidays.
func CountWorkdays(monthKey string) int {
	n := 0
	for _, d := range DaysInMonth(monthKey) {
		if IsWeekday(d) {
			n++
		}
	}
	return n
}

// WeekdayAbbrev returns the German two-letter weekday of a date key ("Mo").
func WeekdayAbbrev(dateKey string) string {
	t, err := ParseDate(dateKey)
	if err != nil {
		return ""
	}
	return weekdayAbbrev[t.Weekday()]
}

// FormatDateShort renders a date key as "DD.MM.YYYY".
func FormatDateShort(dateKey string) string {
	t, err := ParseDate(dateKey)
	if err != nil {
		return dateKey
	}
	return t.Format("02.01.2006")
}

// FormatDate renders a date key as "Mo, 01.02.2025".
func FormatDate(dateKey string) string {
	return WeekdayAbbrev(dateKey) + ", " + FormatDateShort(dateKey)
}

// FormatMonthYear renders a month key as "Februar 2025".
func FormatMonthYear(monthKey string) string {
	first, err := ParseMonthKey(monthKey)
	if err != nil {
		return monthKey
	}
	return fmt.Sprintf("%s %d", monthNames[first.Month()-1], first.Year())
}
