package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// now is replaced in tests.
var now = time.Now

// parseDateArg accepts YYYY-MM-DD, DD.MM.YYYY, "today"/"heute" and
// "yesterday"/"gestern" and returns the canonical date key.
func parseDateArg(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "heute":
		return timecalc.DateKey(now()), nil
	case "yesterday", "gestern":
		return timecalc.DateKey(now().AddDate(0, 0, -1)), nil
	}
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return timecalc.DateKey(t), nil
	}
	if _, err := timecalc.ParseDate(s); err != nil {
		return "", usageError(err)
	}
	return s, nil
}

// monthArg returns args[0] as a month key, or the current month.
func monthArg(args []string) (string, error) {
	if len(args) == 0 {
		return timecalc.MonthKey(now()), nil
	}
	if _, err := timecalc.ParseMonthKey(args[0]); err != nil {
		return "", usageError(err)
	}
	return args[0], nil
}

// yearArg returns args[0] as a year, or the current year.
func yearArg(args []string) (int, error) {
	if len(args) == 0 {
		return now().Year(), nil
	}
	y, err := strconv.Atoi(args[0])
	if err != nil || y < 1 || y > 9999 {
		return 0, usageError(fmt.Errorf("invalid year %q", args[0]))
	}
	return y, nil
}

// parseHours parses weekly hours, accepting a decimal comma ("38,5").
func parseHours(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || !model.ValidHours(h) {
		return 0, usageError(fmt.Errorf("invalid weekly hours %q (want a number between 0 and 168)", s))
	}
	return h, nil
}

// describeEntry renders one entry for terminal output.
func describeEntry(e model.DayEntry) string {
	switch {
	case e.IsZero():
		return "–"
	case e.IsSick():
		return "Krank"
	case e.IsVacation():
		return "Urlaub"
	case !e.Complete():
		return fmt.Sprintf("%s – (offen)", e.Start())
	}
	return fmt.Sprintf("%s – %s  Pause %s  = %s", e.Start(), e.End(), e.Break(), timecalc.FormatDuration(e.WorkedMinutes()))
}

// formatHours renders weekly hours with a decimal comma ("38,5").
func formatHours(h float64) string {
	return strings.Replace(strconv.FormatFloat(h, 'f', -1, 64), ".", ",", 1)
}
