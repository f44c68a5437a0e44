// Package stats folds day entries into target-versus-actual totals.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/arbeitszeit/internal/calendar"
	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// Summary is the aggregated result for a month or a year.
type Summary struct {
	WorkedMinutes int `json:"worked_minutes"`
	WorkedDays    int `json:"worked_days"`
	SickDays      int `json:"sick_days"`
	VacationDays  int `json:"vacation_days"`
	TargetMinutes int `json:"target_minutes"`
	DiffMinutes   int `json:"diff_minutes"`
}

// WeekSummary is the aggregated result for one Monday..Sunday week.
type WeekSummary struct {
	Week          int    `json:"week"`
	From          string `json:"from"`
	To            string `json:"to"`
	WorkedMinutes int    `json:"worked_minutes"`
	TargetMinutes int    `json:"target_minutes"`
	DiffMinutes   int    `json:"diff_minutes"`
}

// minutesPerWeeklyHour converts weekly hours into daily minutes: h / 5 * 60.
var minutesPerWeeklyHour = decimal.NewFromInt(12)

// hoursDecimal converts weekly hours for target arithmetic. Values that are
// not usable weekly hours (NaN, infinite, out of range) count as the
// default of 40.
func hoursDecimal(weeklyHours float64) decimal.Decimal {
	if !model.ValidHours(weeklyHours) {
		weeklyHours = model.DefaultWeeklyHours
	}
	return decimal.NewFromFloat(weeklyHours)
}

// TargetMinutes returns the owed minutes of a month: weekdays that are not
// holidays in region, times the daily share of weeklyHours, rounded to the
// nearest minute.
func TargetMinutes(monthKey string, weeklyHours float64, region string) int {
	days := timecalc.DaysInMonth(monthKey)
	if len(days) == 0 {
		return 0
	}
	t, _ := timecalc.ParseMonthKey(monthKey)
	holidays := calendar.Holidays(t.Year(), region)

	workdays := 0
	for _, d := range days {
		if _, ok := holidays[d]; ok {
			continue
		}
		if timecalc.IsWeekday(d) {
			workdays++
		}
	}

	daily := hoursDecimal(weeklyHours).Mul(minutesPerWeeklyHour)
	return int(daily.Mul(decimal.NewFromInt(int64(workdays))).Round(0).IntPart())
}

// tally classifies one entry into s.
func (s *Summary) tally(e model.DayEntry) {
	switch e.Kind() {
	case model.KindSick:
		s.SickDays++
	case model.KindVacation:
		s.VacationDays++
	case model.KindWorked:
		if e.Complete() {
			s.WorkedMinutes += e.WorkedMinutes()
			s.WorkedDays++
		}
	}
}

// Monthly aggregates every calendar day of monthKey found in bucket.
// Keys outside the month are ignored.
func Monthly(bucket model.MonthBucket, monthKey string, weeklyHours float64, region string) Summary {
	var s Summary
	for _, d := range timecalc.DaysInMonth(monthKey) {
		if e, ok := bucket[d]; ok {
			s.tally(e)
		}
	}
	s.TargetMinutes = TargetMinutes(monthKey, weeklyHours, region)
	s.DiffMinutes = s.WorkedMinutes - s.TargetMinutes
	return s
}

// Weekly aggregates the Monday..Sunday week containing today. Only days of
// the loaded month monthKey are counted; days of the week that fall into an
// adjacent month contribute nothing, since that month's bucket is not
// passed in.
func Weekly(bucket model.MonthBucket, monthKey string, today time.Time, weeklyHours float64) WeekSummary {
	days := timecalc.WeekDays(today)
	ws := WeekSummary{
		Week: timecalc.ISOWeek(today),
		From: days[0],
		To:   days[len(days)-1],
	}
	for _, d := range days {
		if timecalc.MonthOf(d) != monthKey {
			continue
		}
		if e, ok := bucket[d]; ok && e.Complete() {
			ws.WorkedMinutes += e.WorkedMinutes()
		}
	}
	ws.TargetMinutes = int(hoursDecimal(weeklyHours).Mul(decimal.NewFromInt(60)).Round(0).IntPart())
	ws.DiffMinutes = ws.WorkedMinutes - ws.TargetMinutes
	return ws
}

// Yearly aggregates all twelve months of year. buckets is keyed by month key;
// missing months count as empty. The target is the sum of the twelve
// monthly targets.
func Yearly(buckets map[string]model.MonthBucket, year int, weeklyHours float64, region string) Summary {
	var s Summary
	for _, mk := range timecalc.MonthKeys(year) {
		m := Monthly(buckets[mk], mk, weeklyHours, region)
		s.WorkedMinutes += m.WorkedMinutes
		s.WorkedDays += m.WorkedDays
		s.SickDays += m.SickDays
		s.VacationDays += m.VacationDays
		s.TargetMinutes += m.TargetMinutes
	}
	s.DiffMinutes = s.WorkedMinutes - s.TargetMinutes
	return s
}

// Row is one classified calendar day of a monthly timesheet.
type Row struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday"`
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
	Break         string `json:"break,omitempty"`
	WorkedMinutes int    `json:"worked_minutes"`
	Note          string `json:"note,omitempty"`
	Weekend       bool   `json:"weekend"`
	Holiday       string `json:"holiday,omitempty"`
	Kind          string `json:"kind,omitempty"`
}

// Notes shown for special days.
const (
	NoteSick     = "Krank"
	NoteVacation = "Urlaub"
)

// DayRows returns one row per calendar day of monthKey, in date order.
func DayRows(bucket model.MonthBucket, monthKey, region string) []Row {
	days := timecalc.DaysInMonth(monthKey)
	if len(days) == 0 {
		return nil
	}
	t, _ := timecalc.ParseMonthKey(monthKey)
	holidays := calendar.Holidays(t.Year(), region)

	rows := make([]Row, 0, len(days))
	for _, d := range days {
		r := Row{
			Date:    d,
			Weekday: timecalc.WeekdayAbbrev(d),
			Weekend: timecalc.IsWeekend(d),
			Holiday: holidays[d],
		}
		e, ok := bucket[d]
		switch {
		case ok && e.IsSick():
			r.Note, r.Kind = NoteSick, e.Kind().String()
		case ok && e.IsVacation():
			r.Note, r.Kind = NoteVacation, e.Kind().String()
		case ok && e.Complete():
			r.Start, r.End, r.Break = e.Start(), e.End(), e.Break()
			r.WorkedMinutes = e.WorkedMinutes()
			r.Kind = e.Kind().String()
		default:
			r.Note = r.Holiday
		}
		rows = append(rows, r)
	}
	return rows
}

// Entries returns the dates of bucket that carry a record, sorted.
func Entries(bucket model.MonthBucket) []string {
	keys := make([]string, 0, len(bucket))
	for k, e := range bucket {
		if e.IsZero() {
			continue
		}
		if e.Kind() == model.KindWorked && e.Start() == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
