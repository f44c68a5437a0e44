// Package storagetest holds the behaviour every storage.Store backend must
// share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
)

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("EmptyMonth", func(t *testing.T) { testEmptyMonth(t, newStore(t)) })
	t.Run("SaveDayAndLoad", func(t *testing.T) { testSaveDayAndLoad(t, newStore(t)) })
	t.Run("SaveMonthOverwrites", func(t *testing.T) { testSaveMonthOverwrites(t, newStore(t)) })
	t.Run("DeleteDay", func(t *testing.T) { testDeleteDay(t, newStore(t)) })
	t.Run("EmployeeSlug", func(t *testing.T) { testEmployeeSlug(t, newStore(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, newStore(t)) })
	t.Run("Employees", func(t *testing.T) { testEmployees(t, newStore(t)) })
	t.Run("LoadYear", func(t *testing.T) { testLoadYear(t, newStore(t)) })
	t.Run("InvalidKeys", func(t *testing.T) { testInvalidKeys(t, newStore(t)) })
}

func testEmptyMonth(t *testing.T, s storage.Store) {
	b, err := s.LoadMonth(context.Background(), "Anna", "2026-03")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func testSaveDayAndLoad(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveDay(ctx, "Anna", "2026-03-02", model.Worked("07:00", "16:00", "0:30")))
	require.NoError(t, s.SaveDay(ctx, "Anna", "2026-03-03", model.Sick()))
	require.NoError(t, s.SaveDay(ctx, "Anna", "2026-03-04", model.Vacation()))
	require.NoError(t, s.SaveDay(ctx, "Anna", "2026-03-05", model.Worked("07:00", "", "0:00")))

	b, err := s.LoadMonth(ctx, "Anna", "2026-03")
	require.NoError(t, err)
	require.Len(t, b, 4)
	assert.Equal(t, model.Worked("07:00", "16:00", "0:30"), b["2026-03-02"])
	assert.True(t, b["2026-03-03"].IsSick())
	assert.True(t, b["2026-03-04"].IsVacation())
	assert.Equal(t, "", b["2026-03-05"].End())

	// Overwrite one day.
	require.NoError(t, s.SaveDay(ctx, "Anna", "2026-03-03", model.Worked("08:00", "12:00", "0:00")))
	b, err = s.LoadMonth(ctx, "Anna", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 240, b["2026-03-03"].WorkedMinutes())

	other, err := s.LoadMonth(ctx, "Anna", "2026-04")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testSaveMonthOverwrites(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveDay(ctx, "Ben", "2026-03-02", model.Sick()))
	require.NoError(t, s.SaveMonth(ctx, "Ben", "2026-03", model.MonthBucket{
		"2026-03-10": model.Vacation(),
	}))

	b, err := s.LoadMonth(ctx, "Ben", "2026-03")
	require.NoError(t, err)
	assert.Len(t, b, 1)
	assert.True(t, b["2026-03-10"].IsVacation())
}

func testDeleteDay(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveDay(ctx, "Cem", "2026-03-02", model.Sick()))
	require.NoError(t, s.DeleteDay(ctx, "Cem", "2026-03-02"))
	require.NoError(t, s.DeleteDay(ctx, "Cem", "2026-03-09"))

	b, err := s.LoadMonth(ctx, "Cem", "2026-03")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func testEmployeeSlug(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveDay(ctx, "Max Mustermann", "2026-03-02", model.Sick()))

	b, err := s.LoadMonth(ctx, "  max   MUSTERMANN ", "2026-03")
	require.NoError(t, err)
	assert.Len(t, b, 1)
}

func testSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()
	empty, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.SaveSettings(ctx, model.SettingsMap{
		"Anna": {WeeklyHours: 30},
		"Ben":  {WeeklyHours: 38.5},
	}))
	got, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.WeeklyHours("Anna", 0))
	assert.Equal(t, 38.5, got.WeeklyHours("Ben", 0))
	assert.Equal(t, 40.0, got.WeeklyHours("Cem", 0))

	require.NoError(t, s.SaveSettings(ctx, model.SettingsMap{"Ben": {WeeklyHours: 20}}))
	got, err = s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func testEmployees(t *testing.T, s storage.Store) {
	ctx := context.Background()
	list, err := s.LoadEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"Zoe", "Anna", "Zoe", " Anna "} {
		require.NoError(t, s.AddEmployee(ctx, name))
	}
	require.Error(t, s.AddEmployee(ctx, "   "))

	list, err = s.LoadEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zoe", "Anna"}, list)
}

func testLoadYear(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveDay(ctx, "Dora", "2026-01-05", model.Sick()))
	require.NoError(t, s.SaveDay(ctx, "Dora", "2026-12-01", model.Vacation()))

	year, err := storage.LoadYear(ctx, s, "Dora", 2026)
	require.NoError(t, err)
	assert.Len(t, year, 12)
	assert.Len(t, year["2026-01"], 1)
	assert.Len(t, year["2026-12"], 1)
	assert.Empty(t, year["2026-06"])
}

func testInvalidKeys(t *testing.T, s storage.Store) {
	ctx := context.Background()
	assert.Error(t, s.SaveDay(ctx, "Anna", "2026-3-2", model.Sick()))
	_, err := s.LoadMonth(ctx, "Anna", "March")
	assert.Error(t, err)
}
