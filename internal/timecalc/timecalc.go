package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Legal break thresholds (ArbZG §4), in minutes of raw shift span.
const (
	sixHours  = 6 * 60
	nineHours = 9 * 60

	breakOverSix  = 30
	breakOverNine = 45
)

// TimeToMinutes parses a "HH:MM" clock string into minutes since midnight.
// Empty or malformed input yields 0.
func TimeToMinutes(t string) int {
	return parseHM(t)
}

// BreakToMinutes parses a "H:MM" break string. Empty or malformed input yields 0.
func BreakToMinutes(b string) int {
	return parseHM(b)
}

func parseHM(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		return 0
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 {
		return 0
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0
	}
	return h*60 + m
}

// MinutesToClock formats minutes since midnight as zero-padded "HH:MM".
func MinutesToClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// MinutesToBreak formats a break duration as "H:MM".
func MinutesToBreak(mins int) string {
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

// FormatDuration renders a signed minute total as "H:MM h", e.g. "-1:05 h".
func FormatDuration(totalMinutes int) string {
	sign := ""
	abs := totalMinutes
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	return fmt.Sprintf("%s%d:%02d h", sign, abs/60, abs%60)
}

// WorkedMinutes returns end-start minus the break, clamped at zero.
// A span that is not positive (missing end, end before start) counts as zero.
func WorkedMinutes(start, end, brk string) int {
	raw := TimeToMinutes(end) - TimeToMinutes(start)
	if raw <= 0 {
		return 0
	}
	return max(0, raw-BreakToMinutes(brk))
}

// MinimumBreak returns the legally required break for the raw span between
// start and end. Thresholds are strictly greater than 6h and 9h.
func MinimumBreak(start, end string) int {
	raw := TimeToMinutes(end) - TimeToMinutes(start)
	switch {
	case raw > nineHours:
		return breakOverNine
	case raw > sixHours:
		return breakOverSix
	default:
		return 0
	}
}

// EnforceBreak raises brk to the legal minimum for the shift, or returns it
// unchanged when it already meets the minimum.
func EnforceBreak(start, end, brk string) string {
	minBreak := MinimumBreak(start, end)
	if BreakToMinutes(brk) < minBreak {
		return MinutesToBreak(minBreak)
	}
	return brk
}

// TimeOptions lists every quarter hour of the day as "HH:MM".
func TimeOptions() []string {
	opts := make([]string, 0, 96)
	for m := 0; m < 24*60; m += 15 {
		opts = append(opts, MinutesToClock(m))
	}
	return opts
}

// BreakOptions lists the selectable break durations.
func BreakOptions() []string {
	opts := make([]string, 0, 7)
	for m := 0; m <= 90; m += 15 {
		opts = append(opts, MinutesToBreak(m))
	}
	return opts
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	wd := isoWeekday(t)
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, t.Location())
	return monday, sunday
}

// WeekDays returns the date keys Monday..Sunday of the week containing t.
func WeekDays(t time.Time) []string {
	monday, _ := WeekRange(t)
	days := make([]string, 7)
	for i := range days {
		days[i] = DateKey(monday.AddDate(0, 0, i))
	}
	return days
}

// ISOWeek returns the ISO 8601 week number of t: shift to the Thursday of
// its week, then count weeks from January 1 of that Thursday's year.
func ISOWeek(t time.Time) int {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	thursday := d.AddDate(0, 0, 4-isoWeekday(d))
	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart).Hours() / 24)
	return (days + 1 + 6) / 7
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func isoWeekday(t time.Time) int {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	return wd
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
