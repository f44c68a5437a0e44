package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Tiliavir/arbeitszeit/internal/model"
)

func TestEditEnforcesBreakOnTimeChange(t *testing.T) {
	e := model.Worked("07:00", "", "0:00")
	e = model.Edit(e, model.FieldEnd, "16:00")
	if e.Break() != "0:30" {
		t.Errorf("break after end edit = %q, want 0:30", e.Break())
	}
	e = model.Edit(e, model.FieldEnd, "16:30")
	if e.Break() != "0:45" {
		t.Errorf("break after extending = %q, want 0:45", e.Break())
	}
}

func TestEditBreakKeepsChoice(t *testing.T) {
	e := model.Worked("07:00", "16:00", "0:30")
	e = model.Edit(e, model.FieldBreak, "0:00")
	if e.Break() != "0:00" {
		t.Errorf("break edit overridden: %q", e.Break())
	}
	e = model.Edit(e, model.FieldBreak, "1:30")
	if e.Break() != "1:30" {
		t.Errorf("break edit overridden: %q", e.Break())
	}
}

func TestEditTurnsSpecialDayIntoWorked(t *testing.T) {
	e := model.Edit(model.Sick(), model.FieldStart, "08:00")
	if e.Kind() != model.KindWorked || e.Start() != "08:00" || e.IsSick() {
		t.Errorf("Edit(Sick) = %+v", e)
	}
}

func TestPatchApply(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name  string
		from  model.DayEntry
		patch model.Patch
		want  model.DayEntry
	}{
		{"new day", model.DayEntry{}, model.Patch{Start: str("07:00"), End: str("16:00")}, model.Worked("07:00", "16:00", "0:30")},
		{"explicit break wins", model.DayEntry{}, model.Patch{Start: str("07:00"), End: str("16:00"), Break: str("0:15")}, model.Worked("07:00", "16:00", "0:15")},
		{"end only", model.Worked("08:00", "", "0:00"), model.Patch{End: str("17:30")}, model.Worked("08:00", "17:30", "0:45")},
		{"sick day", model.Sick(), model.Patch{Start: str("09:00")}, model.Worked("09:00", "", "0:00")},
		{"empty patch on vacation", model.Vacation(), model.Patch{}, model.Worked("", "", "0:00")},
	}
	if !(model.Patch{}).IsEmpty() {
		t.Error("zero Patch should be empty")
	}
	if (model.Patch{Break: str("0:30")}).IsEmpty() {
		t.Error("Patch with a break should not be empty")
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.Apply(tt.from); got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPatchValidate(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		patch   model.Patch
		wantErr bool
	}{
		{"quarter hours", model.Patch{Start: str("07:15"), End: str("16:45"), Break: str("0:45")}, false},
		{"clear end", model.Patch{End: str("")}, false},
		{"longest break", model.Patch{Break: str("1:30")}, false},
		{"off grid start", model.Patch{Start: str("07:10")}, true},
		{"last minute", model.Patch{End: str("23:59")}, true},
		{"single digit hour", model.Patch{Start: str("7:00")}, true},
		{"break too long", model.Patch{Break: str("2:00")}, true},
		{"break off grid", model.Patch{Break: str("0:05")}, true},
		{"empty break", model.Patch{Break: str("")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromTemplate(t *testing.T) {
	templates := model.DefaultTemplates()
	full := model.FromTemplate(templates[0])
	if full.Start() != "07:00" || full.End() != "16:00" || full.Break() != "1:00" {
		t.Errorf("full day template = %s-%s %s", full.Start(), full.End(), full.Break())
	}
	if got := full.WorkedMinutes(); got != 480 {
		t.Errorf("full day worked = %d, want 480", got)
	}
	raised := model.FromTemplate(model.Template{Start: "07:00", End: "17:00", Break: "0:00"})
	if raised.Break() != "0:45" {
		t.Errorf("template break not raised: %q", raised.Break())
	}
}

func TestCleared(t *testing.T) {
	e := model.Cleared("")
	if e.Kind() != model.KindWorked || e.Start() != model.DefaultStart || e.End() != "" || e.Break() != "0:00" {
		t.Errorf("Cleared() = %+v", e)
	}
	if e.Complete() || e.WorkedMinutes() != 0 {
		t.Error("cleared entry must not count as worked")
	}
}

func TestClearSpecial(t *testing.T) {
	if got := model.ClearSpecial(model.Vacation(), "06:30"); got != model.Worked("06:30", "", "0:00") {
		t.Errorf("ClearSpecial(vacation) = %+v", got)
	}
	if got := model.ClearSpecial(model.Sick(), ""); got.Start() != model.DefaultStart {
		t.Errorf("ClearSpecial(sick) start = %q", got.Start())
	}
	worked := model.Worked("07:00", "12:00", "0:00")
	if got := model.ClearSpecial(worked, "06:30"); got != worked {
		t.Errorf("ClearSpecial(worked) changed the entry: %+v", got)
	}
	if got := model.ClearSpecial(model.DayEntry{}, "06:30"); !got.IsZero() {
		t.Errorf("ClearSpecial(zero) = %+v", got)
	}
}

func TestDayEntryJSON(t *testing.T) {
	tests := []struct {
		name  string
		entry model.DayEntry
		want  string
	}{
		{"worked", model.Worked("07:00", "12:00", "0:00"), `{"start":"07:00","end":"12:00","pause":"0:00"}`},
		{"open shift", model.Worked("07:00", "", "0:00"), `{"start":"07:00","pause":"0:00"}`},
		{"sick", model.Sick(), `{"sick":true}`},
		{"vacation", model.Vacation(), `{"urlaub":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.entry)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestDayEntryUnmarshalDropsIllegalTimes(t *testing.T) {
	var e model.DayEntry
	if err := json.Unmarshal([]byte(`{"sick":true,"start":"07:00","end":"16:00"}`), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !e.IsSick() || e.Start() != "" || e.End() != "" {
		t.Errorf("sick entry kept time fields: %+v", e)
	}

	var b model.MonthBucket
	if err := json.Unmarshal([]byte(`{"2025-03-03":{"urlaub":true},"2025-03-04":{}}`), &b); err != nil {
		t.Fatalf("Unmarshal bucket: %v", err)
	}
	b.Compact()
	if len(b) != 1 || !b["2025-03-03"].IsVacation() {
		t.Errorf("bucket = %v", b)
	}
}

func TestSettingsWeeklyHours(t *testing.T) {
	var s model.SettingsMap
	data := `{"Anna":{"sollStunden":30},"Ben":{"sollStunden":"32,5"},"Cem":{"sollStunden":"abc"},"Dora":{"sollStunden":-4},` +
		`"Emil":{"sollStunden":"NaN"},"Fritz":{"sollStunden":"Inf"},"Greta":{"sollStunden":"-Infinity"},"Hans":{"sollStunden":200}}`
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	tests := []struct {
		name string
		want float64
	}{
		{"Anna", 30},
		{"Ben", 32.5},
		{"Cem", 40},
		{"Dora", 40},
		{"Emil", 40},
		{"Fritz", 40},
		{"Greta", 40},
		{"Hans", 40},
		{"Unknown", 40},
	}
	for _, tt := range tests {
		if got := s.WeeklyHours(tt.name, 0); got != tt.want {
			t.Errorf("WeeklyHours(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if got := s.WeeklyHours("Unknown", 38.5); got != 38.5 {
		t.Errorf("WeeklyHours fallback = %v, want 38.5", got)
	}
	if got := s.WeeklyHours("Unknown", math.NaN()); got != 40 {
		t.Errorf("WeeklyHours NaN fallback = %v, want 40", got)
	}
	if got := (model.SettingsMap{"Ida": {WeeklyHours: model.Hours(math.Inf(1))}}).WeeklyHours("Ida", 0); got != 40 {
		t.Errorf("WeeklyHours(+Inf) = %v, want 40", got)
	}
}

func TestValidHours(t *testing.T) {
	tests := []struct {
		h    float64
		want bool
	}{
		{40, true},
		{0.5, true},
		{168, true},
		{0, false},
		{-1, false},
		{168.5, false},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, tt := range tests {
		if got := model.ValidHours(tt.h); got != tt.want {
			t.Errorf("ValidHours(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestUserSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Anna", "anna"},
		{"  Max  Mustermann ", "max_mustermann"},
		{"Jörg\tMeier", "jörg_meier"},
	}
	for _, tt := range tests {
		if got := model.UserSlug(tt.name); got != tt.want {
			t.Errorf("UserSlug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
