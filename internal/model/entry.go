package model

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// Kind tags which shape a DayEntry has.
type Kind int

const (
	KindWorked Kind = iota + 1
	KindSick
	KindVacation
)

func (k Kind) String() string {
	switch k {
	case KindWorked:
		return "worked"
	case KindSick:
		return "sick"
	case KindVacation:
		return "vacation"
	default:
		return "unset"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "worked":
		return KindWorked, nil
	case "sick":
		return KindSick, nil
	case "vacation":
		return KindVacation, nil
	}
	return 0, fmt.Errorf("unknown entry kind %q", s)
}

// DayEntry is one calendar day's record for one employee. It is exactly one
// of Worked, Sick or Vacation; a day without a record has no DayEntry.
// Time fields exist only on Worked entries.
type DayEntry struct {
	kind  Kind
	start string
	end   string
	brk   string
}

// Worked builds a worked day. end may be empty while a shift is still open.
func Worked(start, end, brk string) DayEntry {
	if brk == "" {
		brk = "0:00"
	}
	return DayEntry{kind: KindWorked, start: start, end: end, brk: brk}
}

// Sick builds a sick day.
func Sick() DayEntry { return DayEntry{kind: KindSick} }

// Vacation builds a vacation day.
func Vacation() DayEntry { return DayEntry{kind: KindVacation} }

// FromKind rebuilds an entry from stored parts. Time fields are dropped for
// Sick and Vacation; an unknown kind yields the zero entry.
func FromKind(k Kind, start, end, brk string) DayEntry {
	switch k {
	case KindWorked:
		return Worked(start, end, brk)
	case KindSick:
		return Sick()
	case KindVacation:
		return Vacation()
	}
	return DayEntry{}
}

func (e DayEntry) Kind() Kind { return e.kind }
func (e DayEntry) IsZero() bool { return e.kind == 0 }
func (e DayEntry) Start() string { return e.start }
func (e DayEntry) End() string { return e.end }
func (e DayEntry) Break() string { return e.brk }
func (e DayEntry) IsSick() bool { return e.kind == KindSick }
func (e DayEntry) IsVacation() bool { return e.kind == KindVacation }

// Complete reports whether a worked entry has both start and end.
func (e DayEntry) Complete() bool {
	return e.kind == KindWorked && e.start != "" && e.end != ""
}

// WorkedMinutes is the counted working time of a complete worked entry, else 0.
func (e DayEntry) WorkedMinutes() int {
	if !e.Complete() {
		return 0
	}
	return timecalc.WorkedMinutes(e.start, e.end, e.brk)
}

// BreakMinutes is the break of a worked entry in minutes.
func (e DayEntry) BreakMinutes() int {
	if e.kind != KindWorked {
		return 0
	}
	return timecalc.BreakToMinutes(e.brk)
}

// Field names a single editable field of a worked entry.
type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
	FieldBreak Field = "break"
)

// Edit sets one field of e and returns the result. Editing start or end
// re-applies the legal minimum break once both are set; editing the break
// keeps the chosen value. A Sick or Vacation entry becomes a Worked one.
func Edit(e DayEntry, field Field, value string) DayEntry {
	if e.kind != KindWorked {
		e = Worked("", "", "0:00")
	}
	switch field {
	case FieldStart:
		e.start = value
	case FieldEnd:
		e.end = value
	case FieldBreak:
		e.brk = value
		return e
	}
	if e.start != "" && e.end != "" {
		e.brk = timecalc.EnforceBreak(e.start, e.end, e.brk)
	}
	return e
}

// Patch is a set of optional field edits of a worked day. Fields are
// applied start, end, break, so an explicit break wins over the minimum.
type Patch struct {
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
	Break *string `json:"break,omitempty"`
}

// IsEmpty reports whether p edits no field.
func (p Patch) IsEmpty() bool {
	return p.Start == nil && p.End == nil && p.Break == nil
}

// Validate checks every set field against the quarter-hour clock grid and
// the selectable break durations. An empty start or end is allowed and
// clears that field.
func (p Patch) Validate() error {
	if p.Start != nil && !ValidClock(*p.Start) {
		return fmt.Errorf("invalid start %q (want HH:MM on a quarter hour)", *p.Start)
	}
	if p.End != nil && !ValidClock(*p.End) {
		return fmt.Errorf("invalid end %q (want HH:MM on a quarter hour)", *p.End)
	}
	if p.Break != nil && !ValidBreak(*p.Break) {
		return fmt.Errorf("invalid break %q (want one of %s)", *p.Break, strings.Join(timecalc.BreakOptions(), ", "))
	}
	return nil
}

// ValidClock reports whether s is empty or a quarter-hour clock time.
func ValidClock(s string) bool {
	return s == "" || slices.Contains(timecalc.TimeOptions(), s)
}

// ValidBreak reports whether s is one of the selectable break durations.
func ValidBreak(s string) bool {
	return slices.Contains(timecalc.BreakOptions(), s)
}

// Apply runs the edits of p against e via Edit.
func (p Patch) Apply(e DayEntry) DayEntry {
	if p.Start != nil {
		e = Edit(e, FieldStart, *p.Start)
	}
	if p.End != nil {
		e = Edit(e, FieldEnd, *p.End)
	}
	if p.Break != nil {
		e = Edit(e, FieldBreak, *p.Break)
	}
	if e.kind != KindWorked {
		e = Worked("", "", "0:00")
	}
	return e
}

// FromTemplate builds a worked entry from a quick-entry template, raising
// the template's break to the legal minimum.
func FromTemplate(t Template) DayEntry {
	return Worked(t.Start, t.End, timecalc.EnforceBreak(t.Start, t.End, t.Break))
}

// Template is a quick-entry preset.
type Template struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
	Break string `json:"break"`
}

// DefaultStart is the start time a cleared special day falls back to.
const DefaultStart = "07:00"

// DefaultTemplates are the built-in quick-entry presets.
func DefaultTemplates() []Template {
	return []Template{
		{Label: "Normaltag 7–16", Start: "07:00", End: "16:00", Break: "1:00"},
		{Label: "Halber Tag 7–12", Start: "07:00", End: "12:00", Break: "0:00"},
	}
}

// Cleared is the entry a Sick or Vacation day turns into when the special
// marker is removed: a worked day starting at start with no end yet.
func Cleared(start string) DayEntry {
	if start == "" {
		start = DefaultStart
	}
	return Worked(start, "", "0:00")
}

// ClearSpecial removes the Sick or Vacation marker of e, yielding
// Cleared(start). Other entries are returned unchanged.
func ClearSpecial(e DayEntry, start string) DayEntry {
	if e.IsSick() || e.IsVacation() {
		return Cleared(start)
	}
	return e
}

// dayEntryJSON is the stored document shape: {"start","end","pause"},
// {"sick":true} or {"urlaub":true}.
type dayEntryJSON struct {
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Pause    string `json:"pause,omitempty"`
	Sick     bool   `json:"sick,omitempty"`
	Vacation bool   `json:"urlaub,omitempty"`
}

// MarshalJSON encodes the entry in the stored document shape.
func (e DayEntry) MarshalJSON() ([]byte, error) {
	var doc dayEntryJSON
	switch e.kind {
	case KindSick:
		doc.Sick = true
	case KindVacation:
		doc.Vacation = true
	case KindWorked:
		doc.Start, doc.End, doc.Pause = e.start, e.end, e.brk
	default:
		return []byte("null"), nil
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the stored document shape. Sick wins over vacation,
// and either discards time fields.
func (e *DayEntry) UnmarshalJSON(data []byte) error {
	var doc dayEntryJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	switch {
	case doc.Sick:
		*e = Sick()
	case doc.Vacation:
		*e = Vacation()
	case doc.Start != "" || doc.End != "":
		*e = Worked(doc.Start, doc.End, doc.Pause)
	default:
		*e = DayEntry{}
	}
	return nil
}

// MonthBucket maps "YYYY-MM-DD" keys to one employee's entries for one month.
type MonthBucket map[string]DayEntry

// Clone returns a shallow copy of b.
func (b MonthBucket) Clone() MonthBucket {
	out := make(MonthBucket, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Compact drops entries that carry no record.
func (b MonthBucket) Compact() {
	for k, v := range b {
		if v.IsZero() {
			delete(b, k)
		}
	}
}

// Settings holds per-employee contract data.
type Settings struct {
	WeeklyHours Hours `json:"sollStunden,omitempty"`
}

// DefaultWeeklyHours applies when no usable weekly hours are configured.
const DefaultWeeklyHours = 40.0

// Hours is a weekly-hours value that decodes numbers and numeric strings;
// anything else, NaN and infinities included, decodes as 0, which callers
// treat as "unset".
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || !finite(v) {
		*h = 0
		return nil
	}
	*h = Hours(v)
	return nil
}

// SettingsMap maps employee names to their settings.
type SettingsMap map[string]Settings

// WeeklyHours returns the employee's weekly hours, or fallback when the
// value is missing, not positive or not finite. An unusable fallback
// becomes 40.
func (s SettingsMap) WeeklyHours(employee string, fallback float64) float64 {
	if !ValidHours(fallback) {
		fallback = DefaultWeeklyHours
	}
	h := float64(s[employee].WeeklyHours)
	if !ValidHours(h) {
		return fallback
	}
	return h
}

// ValidHours reports whether h is a usable weekly-hours value: finite and
// in (0, 168].
func ValidHours(h float64) bool {
	return finite(h) && h > 0 && h <= MaxWeeklyHours
}

// MaxWeeklyHours is the length of a week in hours.
const MaxWeeklyHours = 168.0

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var whitespace = regexp.MustCompile(`\s+`)

// UserSlug turns an employee name into a storage key: trimmed, lower-cased,
// whitespace runs replaced by "_".
func UserSlug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}
