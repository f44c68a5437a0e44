// Package storage persists month buckets, the employee list and
// per-employee settings.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// Store is the persistence collaborator of the accounting engine. Missing
// data reads as empty, never as an error. Employees are addressed by name;
// backends key their data by model.UserSlug(name).
type Store interface {
	// LoadMonth returns the bucket of employee for monthKey.
	LoadMonth(ctx context.Context, employee, monthKey string) (model.MonthBucket, error)
	// SaveMonth replaces the whole bucket of employee for monthKey.
	SaveMonth(ctx context.Context, employee, monthKey string, bucket model.MonthBucket) error
	// SaveDay writes a single day. A zero entry deletes the day.
	SaveDay(ctx context.Context, employee, date string, entry model.DayEntry) error
	// DeleteDay removes a single day. Deleting a missing day is not an error.
	DeleteDay(ctx context.Context, employee, date string) error

	LoadSettings(ctx context.Context) (model.SettingsMap, error)
	SaveSettings(ctx context.Context, settings model.SettingsMap) error

	// LoadEmployees returns the employee names in registration order.
	LoadEmployees(ctx context.Context) ([]string, error)
	// AddEmployee appends name unless it is already registered.
	AddEmployee(ctx context.Context, name string) error

	Close() error
}

// LoadYear loads all twelve buckets of employee for year, keyed by month key.
func LoadYear(ctx context.Context, s Store, employee string, year int) (map[string]model.MonthBucket, error) {
	out := make(map[string]model.MonthBucket, 12)
	for _, mk := range timecalc.MonthKeys(year) {
		b, err := s.LoadMonth(ctx, employee, mk)
		if err != nil {
			return nil, err
		}
		out[mk] = b
	}
	return out, nil
}

// ValidateDate checks that date is a canonical YYYY-MM-DD key and returns
// its month key.
func ValidateDate(date string) (string, error) {
	if _, err := timecalc.ParseDate(date); err != nil {
		return "", err
	}
	return timecalc.MonthOf(date), nil
}

// ValidateMonth checks that monthKey is a canonical YYYY-MM key.
func ValidateMonth(monthKey string) error {
	_, err := timecalc.ParseMonthKey(monthKey)
	return err
}

// ValidateEmployee returns the trimmed employee name, or an error if it is empty.
func ValidateEmployee(name string) (string, error) {
	name = strings.TrimSpace(name)
	if model.UserSlug(name) == "" {
		return "", fmt.Errorf("employee name must not be empty")
	}
	return name, nil
}
