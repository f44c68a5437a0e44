package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"00:00", 0},
		{"07:00", 420},
		{"16:45", 1005},
		{"23:59", 1439},
		{"garbage", 0},
		{"7:xx", 0},
	}
	for _, tt := range tests {
		got := timecalc.TimeToMinutes(tt.input)
		if got != tt.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for _, opt := range timecalc.TimeOptions() {
		if got := timecalc.MinutesToClock(timecalc.TimeToMinutes(opt)); got != opt {
			t.Errorf("round trip of %q = %q", opt, got)
		}
	}
	for _, s := range []string{"00:01", "09:07", "23:59"} {
		if got := timecalc.MinutesToClock(timecalc.TimeToMinutes(s)); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
}

func TestMinutesToBreak(t *testing.T) {
	tests := []struct {
		mins int
		want string
	}{
		{0, "0:00"},
		{30, "0:30"},
		{45, "0:45"},
		{60, "1:00"},
		{75, "1:15"},
	}
	for _, tt := range tests {
		got := timecalc.MinutesToBreak(tt.mins)
		if got != tt.want {
			t.Errorf("MinutesToBreak(%d) = %q, want %q", tt.mins, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0:00 h"},
		{45, "0:45 h"},
		{510, "8:30 h"},
		{10080, "168:00 h"},
		{-5, "-0:05 h"},
		{-65, "-1:05 h"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestWorkedMinutes(t *testing.T) {
	tests := []struct {
		name            string
		start, end, brk string
		want            int
	}{
		{"plain shift", "07:00", "16:00", "1:00", 480},
		{"no break", "07:00", "12:00", "0:00", 300},
		{"missing end", "07:00", "", "0:30", 0},
		{"end before start", "16:00", "07:00", "0:00", 0},
		{"equal times", "08:00", "08:00", "0:00", 0},
		{"break longer than shift", "08:00", "08:30", "1:00", 0},
		{"empty break", "08:00", "09:00", "", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timecalc.WorkedMinutes(tt.start, tt.end, tt.brk)
			if got != tt.want {
				t.Errorf("WorkedMinutes(%q, %q, %q) = %d, want %d", tt.start, tt.end, tt.brk, got, tt.want)
			}
		})
	}
}

func TestMinimumBreakBoundaries(t *testing.T) {
	tests := []struct {
		span int
		want int
	}{
		{0, 0},
		{360, 0},
		{361, 30},
		{540, 30},
		{541, 45},
		{720, 45},
	}
	for _, tt := range tests {
		start := "06:00"
		end := timecalc.MinutesToClock(6*60 + tt.span)
		got := timecalc.MinimumBreak(start, end)
		if got != tt.want {
			t.Errorf("MinimumBreak span %d = %d, want %d", tt.span, got, tt.want)
		}
	}
}

func TestEnforceBreak(t *testing.T) {
	tests := []struct {
		name            string
		start, end, brk string
		want            string
	}{
		{"nine hours exactly raises to 30", "07:00", "16:00", "0:00", "0:30"},
		{"over nine hours raises to 45", "07:00", "16:15", "0:30", "0:45"},
		{"above minimum kept", "07:00", "16:00", "1:00", "1:00"},
		{"equal to minimum kept", "07:00", "14:00", "0:30", "0:30"},
		{"short shift untouched", "07:00", "12:00", "0:00", "0:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timecalc.EnforceBreak(tt.start, tt.end, tt.brk)
			if got != tt.want {
				t.Errorf("EnforceBreak = %q, want %q", got, tt.want)
			}
			if timecalc.BreakToMinutes(got) < timecalc.MinimumBreak(tt.start, tt.end) {
				t.Errorf("EnforceBreak returned %q below the legal minimum", got)
			}
		})
	}
}

func TestNineHourShiftScenario(t *testing.T) {
	brk := timecalc.EnforceBreak("07:00", "16:00", "0:00")
	if brk != "0:30" {
		t.Fatalf("enforced break = %q, want 0:30", brk)
	}
	if got := timecalc.WorkedMinutes("07:00", "16:00", brk); got != 510 {
		t.Errorf("worked minutes = %d, want 510", got)
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestWeekDaysSunday(t *testing.T) {
	sun := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	days := timecalc.WeekDays(sun)
	if days[0] != "2026-02-23" || days[6] != "2026-03-01" {
		t.Errorf("WeekDays(Sunday) = %v", days)
	}
}

func TestISOWeekMatchesStdlib(t *testing.T) {
	d := time.Date(2019, 12, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3*366; i++ {
		_, want := d.ISOWeek()
		if got := timecalc.ISOWeek(d); got != want {
			t.Fatalf("ISOWeek(%s) = %d, want %d", d.Format("2006-01-02"), got, want)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}
