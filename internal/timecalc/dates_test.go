package timecalc_test

import (
	"testing"

	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month string
		want  int
	}{
		{"2024-02", 29},
		{"2025-02", 28},
		{"2026-04", 30},
		{"2026-12", 31},
		{"bogus", 0},
	}
	for _, tt := range tests {
		days := timecalc.DaysInMonth(tt.month)
		if len(days) != tt.want {
			t.Errorf("DaysInMonth(%q) = %d days, want %d", tt.month, len(days), tt.want)
		}
	}
	days := timecalc.DaysInMonth("2026-04")
	if days[0] != "2026-04-01" || days[29] != "2026-04-30" {
		t.Errorf("DaysInMonth(2026-04) bounds = %s..%s", days[0], days[29])
	}
}

func TestOffsetMonth(t *testing.T) {
	tests := []struct {
		month  string
		offset int
		want   string
	}{
		{"2026-01", -1, "2025-12"},
		{"2026-12", 1, "2027-01"},
		{"2026-05", 0, "2026-05"},
	}
	for _, tt := range tests {
		if got := timecalc.OffsetMonth(tt.month, tt.offset); got != tt.want {
			t.Errorf("OffsetMonth(%q, %d) = %q, want %q", tt.month, tt.offset, got, tt.want)
		}
	}
}

func TestCountWorkdays(t *testing.T) {
	// March 2024: 21 weekdays.
	if got := timecalc.CountWorkdays("2024-03"); got != 21 {
		t.Errorf("CountWorkdays(2024-03) = %d, want 21", got)
	}
}

func TestFormatting(t *testing.T) {
	if got := timecalc.FormatDate("2025-02-03"); got != "Mo, 03.02.2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := timecalc.FormatMonthYear("2025-03"); got != "März 2025" {
		t.Errorf("FormatMonthYear = %q", got)
	}
	if got := timecalc.MonthOf("2025-03-14"); got != "2025-03" {
		t.Errorf("MonthOf = %q", got)
	}
	keys := timecalc.MonthKeys(2026)
	if len(keys) != 12 || keys[0] != "2026-01" || keys[11] != "2026-12" {
		t.Errorf("MonthKeys = %v", keys)
	}
}
