// Package export renders a month of day entries as a semicolon-separated
// payroll interchange record.
package export

import (
	"strconv"
	"strings"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

const (
	bom       = "\uFEFF"
	separator = ";"
	marker    = "Ja"
)

// Header lists the fixed record columns.
var Header = []string{"Datum", "Mitarbeiter", "Kommen", "Gehen", "Pause (Min)", "Arbeitszeit (Min)", "Krank", "Urlaub"}

// Record renders bucket for monthKey. Only days that carry an entry get a row;
// open shifts without an end are skipped. Rows are joined with "\n" and the
// document starts with a byte-order mark.
func Record(bucket model.MonthBucket, monthKey, employee string) string {
	lines := []string{strings.Join(Header, separator)}

	for _, day := range timecalc.DaysInMonth(monthKey) {
		e, ok := bucket[day]
		if !ok {
			continue
		}
		date := timecalc.FormatDateShort(day)
		name := escape(employee)

		switch {
		case e.IsSick():
			lines = append(lines, row(date, name, "", "", "", "", marker, ""))
		case e.IsVacation():
			lines = append(lines, row(date, name, "", "", "", "", "", marker))
		case e.Complete():
			lines = append(lines, row(date, name, e.Start(), e.End(),
				strconv.Itoa(e.BreakMinutes()), strconv.Itoa(e.WorkedMinutes()), "", ""))
		}
	}
	return bom + strings.Join(lines, "\n")
}

// FileName is the download name of a record: Zeiterfassung_<employee>_<month>.csv.
func FileName(employee, monthKey string) string {
	return "Zeiterfassung_" + employee + "_" + monthKey + ".csv"
}

func row(fields ...string) string {
	return strings.Join(fields, separator)
}

// escape wraps a field in quotes if it contains the separator, a quote, or a newline.
func escape(s string) string {
	if !strings.ContainsAny(s, separator+"\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
