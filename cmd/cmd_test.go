package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/arbeitszeit/internal/auth"
	"github.com/Tiliavir/arbeitszeit/internal/model"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setup writes a config into a temp dir and returns its path.
func setup(t *testing.T, extra map[string]any) string {
	t.Helper()
	for _, k := range []string{"AZT_CONFIG", "AZT_EMPLOYEE", "AZT_REGION", "AZT_WEEKLY_HOURS",
		"AZT_STORAGE_DRIVER", "AZT_DATA_DIR", "DATABASE_URL", "AZT_ADDR"} {
		t.Setenv(k, "")
	}
	orig := now
	now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	dir := t.TempDir()
	doc := map[string]any{
		"storage": map[string]any{"driver": "file", "dir": filepath.Join(dir, "data")},
	}
	for k, v := range extra {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

func TestParseDateArg(t *testing.T) {
	setup(t, nil)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2026-03-02", "2026-03-02", false},
		{"02.03.2026", "2026-03-02", false},
		{"heute", "2026-03-04", false},
		{"Today", "2026-03-04", false},
		{"gestern", "2026-03-03", false},
		{"2026-3-2", "", true},
		{"morgen", "", true},
	}
	for _, tt := range tests {
		got, err := parseDateArg(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDateArg(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDateArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"40", 40, false},
		{"38,5", 38.5, false},
		{" 19.25 ", 19.25, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"200", 0, true},
		{"viel", 0, true},
	}
	for _, tt := range tests {
		got, err := parseHours(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHours(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHours(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestArgsDefaults(t *testing.T) {
	setup(t, nil)

	mk, err := monthArg(nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", mk)
	_, err = monthArg([]string{"03/2026"})
	assert.Equal(t, 1, exitCode(err))

	y, err := yearArg(nil)
	require.NoError(t, err)
	assert.Equal(t, 2026, y)
	_, err = yearArg([]string{"zwanzig"})
	assert.Error(t, err)
}

func TestDescribeEntry(t *testing.T) {
	assert.Equal(t, "Krank", describeEntry(model.Sick()))
	assert.Equal(t, "Urlaub", describeEntry(model.Vacation()))
	assert.Equal(t, "07:00 – (offen)", describeEntry(model.Worked("07:00", "", "0:00")))
	assert.Equal(t, "07:00 – 16:00  Pause 1:00  = 8:00 h", describeEntry(model.Worked("07:00", "16:00", "1:00")))
	assert.Equal(t, "38,5", formatHours(38.5))
	assert.Equal(t, "40", formatHours(40))
}

func TestParseHoursRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity", "1e400"} {
		_, err := parseHours(s)
		assert.Equal(t, 1, exitCode(err), s)
	}
}

func TestDayAndMonth(t *testing.T) {
	cfgFile := setup(t, nil)

	out, err := run(t, cfgFile, "day", "set", "2026-03-02", "--start", "07:00", "--end", "16:00", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "Pause 0:30", "minimum break applied")

	_, err = run(t, cfgFile, "day", "sick", "03.03.2026", "-e", "Anna")
	require.NoError(t, err)
	_, err = run(t, cfgFile, "day", "vacation", "heute", "-e", "Anna")
	require.NoError(t, err)

	out, err = run(t, cfgFile, "month", "2026-03", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "Anna – März 2026 (Soll 40 h/Woche)")
	assert.Contains(t, out, "Mo, 02.03.2026")
	assert.Contains(t, out, "8:30 h")
	assert.Contains(t, out, "176:00 h")
	assert.Contains(t, out, "-167:30 h")
	assert.NotContains(t, out, "So, 01.03.2026")

	out, err = run(t, cfgFile, "month", "2026-03", "--all", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "So, 01.03.2026")

	out, err = run(t, cfgFile, "employees")
	require.NoError(t, err)
	assert.Equal(t, "Anna\n", out)
}

func TestDaySetEditsInPlace(t *testing.T) {
	cfgFile := setup(t, nil)
	t.Setenv("AZT_EMPLOYEE", "Anna")

	_, err := run(t, cfgFile, "day", "set", "2026-03-02", "--start", "08:00")
	require.NoError(t, err)
	out, err := run(t, cfgFile, "day", "set", "2026-03-02", "--end", "17:30")
	require.NoError(t, err)
	assert.Contains(t, out, "08:00 – 17:30  Pause 0:45")

	out, err = run(t, cfgFile, "day", "set", "2026-03-02", "--break", "1:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Pause 1:00")
}

func TestDaySetErrors(t *testing.T) {
	cfgFile := setup(t, nil)

	_, err := run(t, cfgFile, "day", "set", "2026-03-02", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err), "no field given")

	_, err = run(t, cfgFile, "day", "set", "2026-03-02", "--start", "7", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err), "bad clock")

	_, err = run(t, cfgFile, "day", "set", "2026-03-02", "--start", "07:10", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err), "off the quarter-hour grid")

	_, err = run(t, cfgFile, "day", "set", "2026-03-02", "--break", "2:00", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err), "break longer than 1:30")

	_, err = run(t, cfgFile, "day", "set", "2026-02-30", "--start", "07:00", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err), "bad date")

	_, err = run(t, cfgFile, "day", "sick", "2026-03-02")
	assert.Equal(t, 1, exitCode(err), "no employee")
}

func TestDayClearAndTemplate(t *testing.T) {
	cfgFile := setup(t, map[string]any{"default_start": "06:30"})

	_, err := run(t, cfgFile, "day", "vacation", "2026-03-02", "-e", "Anna")
	require.NoError(t, err)
	out, err := run(t, cfgFile, "day", "clear", "2026-03-02", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "06:30 – (offen)")

	_, err = run(t, cfgFile, "day", "clear", "2026-03-02", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err))

	out, err = run(t, cfgFile, "day", "template", "2026-03-03", "1", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "07:00 – 16:00  Pause 1:00  = 8:00 h")

	_, err = run(t, cfgFile, "day", "template", "2026-03-03", "3", "-e", "Anna")
	assert.Equal(t, 1, exitCode(err))

	_, err = run(t, cfgFile, "day", "delete", "2026-03-03", "-e", "Anna")
	require.NoError(t, err)
	out, err = run(t, cfgFile, "month", "2026-03", "-e", "Anna")
	require.NoError(t, err)
	assert.NotContains(t, out, "03.03.2026")
}

func TestMonthNavigation(t *testing.T) {
	cfgFile := setup(t, nil)

	out, err := run(t, cfgFile, "month", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "März 2026")
	assert.Contains(t, out, "Werktage        22 (Mo–Fr)")

	out, err = run(t, cfgFile, "month", "--prev", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "Februar 2026")
	assert.Contains(t, out, "Werktage        20 (Mo–Fr)")

	out, err = run(t, cfgFile, "month", "2026-12", "--next", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "Januar 2027")

	_, err = run(t, cfgFile, "month", "--prev", "--next", "-e", "Anna")
	assert.Error(t, err)
}

func TestWeek(t *testing.T) {
	cfgFile := setup(t, nil)
	_, err := run(t, cfgFile, "day", "set", "2026-03-02", "--start", "08:00", "--end", "12:00", "-e", "Anna")
	require.NoError(t, err)

	out, err := run(t, cfgFile, "week", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "KW 10 (02.03.2026 – 08.03.2026)  2026-W10")
	assert.Contains(t, out, "4:00 h")
	assert.Contains(t, out, "-36:00 h")
	assert.NotContains(t, out, "Hinweis")

	out, err = run(t, cfgFile, "week", "--date", "2026-03-31", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "Hinweis: nur Tage im März 2026 gezählt")
}

func TestExportAndReport(t *testing.T) {
	cfgFile := setup(t, nil)
	outDir := t.TempDir()
	_, err := run(t, cfgFile, "day", "sick", "2026-03-02", "-e", "Anna Berg")
	require.NoError(t, err)

	_, err = run(t, cfgFile, "export", "2026-03", "--out", outDir, "-e", "Anna Berg")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(outDir, "Zeiterfassung_Anna Berg_2026-03.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\uFEFFDatum;"))
	assert.Contains(t, string(data), "02.03.2026;Anna Berg;;;;;Ja;")

	out, err := run(t, cfgFile, "export", "2026-03", "--out", "-", "-e", "Anna Berg")
	require.NoError(t, err)
	assert.Equal(t, string(data), out)

	_, err = run(t, cfgFile, "report", "2026-03", "--out", outDir, "-e", "Anna Berg")
	require.NoError(t, err)
	pdf, err := os.ReadFile(filepath.Join(outDir, "Arbeitszeitnachweis_Anna Berg_2026-03.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestYearRequiresPIN(t *testing.T) {
	hash, err := auth.HashPIN("4711")
	require.NoError(t, err)
	cfgFile := setup(t, map[string]any{"admin_pin_hash": hash})

	_, err = run(t, cfgFile, "employees", "add", "Admin")
	require.NoError(t, err)
	_, err = run(t, cfgFile, "day", "set", "2026-03-02", "--start", "07:00", "--end", "16:00", "-e", "Anna")
	require.NoError(t, err)

	_, err = run(t, cfgFile, "year", "2026")
	assert.Equal(t, 1, exitCode(err), "stdin is not a terminal and no --pin given")

	_, err = run(t, cfgFile, "year", "2026", "--pin", "0000")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrDenied)

	out, err := run(t, cfgFile, "year", "2026", "--pin", "4711")
	require.NoError(t, err)
	assert.Contains(t, out, "Jahresübersicht 2026")
	assert.Contains(t, out, "\nAnna ")
	assert.NotContains(t, out, "\nAdmin ")
}

func TestSettingsSetHours(t *testing.T) {
	cfgFile := setup(t, nil)

	_, err := run(t, cfgFile, "settings", "set-hours", "Anna", "38,5")
	require.NoError(t, err)
	_, err = run(t, cfgFile, "settings", "set-hours", "Anna", "null")
	assert.Equal(t, 1, exitCode(err))
	_, err = run(t, cfgFile, "settings", "set-hours", "Anna", "NaN")
	assert.Equal(t, 1, exitCode(err))

	out, err := run(t, cfgFile, "month", "2026-03", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "(Soll 38,5 h/Woche)")

	out, err = run(t, cfgFile, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Anna")
	assert.Contains(t, out, "38,5")
}

func TestNonFiniteStoredHoursFallBack(t *testing.T) {
	cfgFile := setup(t, nil)
	meta := filepath.Join(filepath.Dir(cfgFile), "data", "meta")
	require.NoError(t, os.MkdirAll(meta, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(meta, "settings.json"),
		[]byte(`{"Anna":{"sollStunden":"NaN"},"Ben":{"sollStunden":"Infinity"}}`), 0o600))

	out, err := run(t, cfgFile, "month", "2026-03", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "(Soll 40 h/Woche)")

	out, err = run(t, cfgFile, "week", "-e", "Ben")
	require.NoError(t, err)
	assert.Contains(t, out, "40:00 h")
}

func TestHolidays(t *testing.T) {
	cfgFile := setup(t, nil)

	out, err := run(t, cfgFile, "holidays", "2026", "--region", "BY")
	require.NoError(t, err)
	assert.Contains(t, out, "Feiertage 2026 (BY)")
	assert.Contains(t, out, "Heilige Drei Könige")

	out, err = run(t, cfgFile, "holidays", "2026")
	require.NoError(t, err)
	assert.Contains(t, out, "Reformationstag")
	assert.NotContains(t, out, "Heilige Drei Könige")

	out, err = run(t, cfgFile, "holidays", "2026", "--region", "XX")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown region")
	assert.Contains(t, out, "Known regions: BB, BE, BW, BY,")
}

func TestSQLiteDriver(t *testing.T) {
	cfgFile := setup(t, nil)
	dir := filepath.Dir(cfgFile)
	t.Setenv("AZT_STORAGE_DRIVER", "sqlite")

	_, err := run(t, cfgFile, "day", "set", "2026-03-02", "--start", "07:00", "--end", "15:00", "-e", "Anna")
	require.NoError(t, err)
	out, err := run(t, cfgFile, "month", "2026-03", "-e", "Anna")
	require.NoError(t, err)
	assert.Contains(t, out, "7:30 h")

	_, err = os.Stat(filepath.Join(dir, "data", "azt.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data", "users"))
	assert.True(t, os.IsNotExist(err), "file backend must not be used")
}

func TestInvalidConfig(t *testing.T) {
	cfgFile := setup(t, map[string]any{"storage": map[string]any{"driver": "mongo"}})

	_, err := run(t, cfgFile, "employees")
	assert.Equal(t, 1, exitCode(err))
}
