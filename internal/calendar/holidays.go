// Package calendar derives German public holidays per federal state.
package calendar

import (
	"sort"
	"time"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "MV"

// Keys of holidays that only some regions observe.
const (
	epiphany       = "heiligeDreiKoenige"
	womensDay      = "frauentag"
	corpusChristi  = "fronleichnam"
	assumption     = "mariaHimmelfahrt"
	childrensDay   = "weltkindertag"
	reformationDay = "reformationstag"
	allSaints      = "allerheiligen"
	repentanceDay  = "bussUndBettag"
)

// regionExtras maps a federal state code to the extra holidays it observes.
// Read-only after package initialisation.
var regionExtras = map[string][]string{
	"BW": {epiphany, corpusChristi, allSaints},
	"BY": {epiphany, corpusChristi, assumption, allSaints},
	"BE": {womensDay},
	"BB": {reformationDay},
	"HB": {reformationDay},
	"HH": {reformationDay},
	"HE": {corpusChristi},
	"MV": {reformationDay},
	"NI": {reformationDay},
	"NW": {corpusChristi, allSaints},
	"RP": {corpusChristi, allSaints},
	"SL": {corpusChristi, assumption, allSaints},
	"SN": {reformationDay, repentanceDay},
	"ST": {epiphany, reformationDay},
	"SH": {reformationDay},
	"TH": {childrensDay, reformationDay},
}

// Regions returns the known region codes in alphabetical order.
func Regions() []string {
	codes := make([]string, 0, len(regionExtras))
	for code := range regionExtras {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// KnownRegion reports whether code is in the region table.
func KnownRegion(code string) bool {
	_, ok := regionExtras[code]
	return ok
}

func observes(region, key string) bool {
	for _, k := range regionExtras[region] {
		if k == key {
			return true
		}
	}
	return false
}

// Holidays returns all public holidays of the given year for a region,
// keyed by "YYYY-MM-DD". Unknown regions get the nationwide set only.
func Holidays(year int, region string) map[string]string {
	holidays := make(map[string]string)

	// Nationwide fixed holidays
	holidays[formatDate(year, 1, 1)] = "Neujahr"
	holidays[formatDate(year, 5, 1)] = "Tag der Arbeit"
	holidays[formatDate(year, 10, 3)] = "Tag der Deutschen Einheit"
	holidays[formatDate(year, 12, 25)] = "1. Weihnachtstag"
	holidays[formatDate(year, 12, 26)] = "2. Weihnachtstag"

	// Easter-based holidays (movable)
	easter := Easter(year)
	holidays[formatDateFromTime(easter.AddDate(0, 0, -2))] = "Karfreitag"
	holidays[formatDateFromTime(easter)] = "Ostersonntag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 1))] = "Ostermontag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 39))] = "Christi Himmelfahrt"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 49))] = "Pfingstsonntag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 50))] = "Pfingstmontag"

	if observes(region, epiphany) {
		holidays[formatDate(year, 1, 6)] = "Heilige Drei Könige"
	}
	if observes(region, womensDay) {
		holidays[formatDate(year, 3, 8)] = "Internationaler Frauentag"
	}
	if observes(region, corpusChristi) {
		holidays[formatDateFromTime(easter.AddDate(0, 0, 60))] = "Fronleichnam"
	}
	if observes(region, assumption) {
		holidays[formatDate(year, 8, 15)] = "Mariä Himmelfahrt"
	}
	if observes(region, childrensDay) {
		holidays[formatDate(year, 9, 20)] = "Weltkindertag"
	}
	if observes(region, reformationDay) {
		holidays[formatDate(year, 10, 31)] = "Reformationstag"
	}
	if observes(region, allSaints) {
		holidays[formatDate(year, 11, 1)] = "Allerheiligen"
	}
	if observes(region, repentanceDay) {
		holidays[formatDateFromTime(RepentanceDay(year))] = "Buß- und Bettag"
	}

	return holidays
}

// IsHoliday returns the holiday name of a date key, or "" if it is none.
func IsHoliday(dateKey, region string) string {
	t, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return ""
	}
	return Holidays(t.Year(), region)[dateKey]
}

// Easter calculates Easter Sunday of a Gregorian year using the
// anonymous Gregorian (Meeus/Jones/Butcher) algorithm.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	// Use noon to avoid timezone issues when formatting to YYYY-MM-DD
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}

// RepentanceDay returns the Wednesday on or before November 23.
func RepentanceDay(year int) time.Time {
	nov23 := time.Date(year, time.November, 23, 12, 0, 0, 0, time.UTC)
	back := (int(nov23.Weekday()) - int(time.Wednesday) + 7) % 7
	return nov23.AddDate(0, 0, -back)
}

// formatDate formats a date as YYYY-MM-DD
func formatDate(year, month, day int) string {
	// Use noon to avoid timezone issues when formatting to YYYY-MM-DD
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// formatDateFromTime formats a time.Time as YYYY-MM-DD
func formatDateFromTime(t time.Time) string {
	return t.Format("2006-01-02")
}
