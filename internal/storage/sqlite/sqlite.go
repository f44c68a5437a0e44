/*
Package sqlite stores month buckets, employees and settings in SQLite.

KEY TABLES:

	day_entries: one row per (employee slug, date); kind is worked, sick or vacation
	employees:   registered names with their registration position
	settings:    weekly hours per employee name

The schema is auto-migrated on New. Use ":memory:" for an in-memory database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the database at dbPath and migrates the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS day_entries (
		employee TEXT NOT NULL,
		month_key TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		break TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (employee, date)
	);

	CREATE INDEX IF NOT EXISTS idx_day_entries_month
		ON day_entries(employee, month_key);

	CREATE TABLE IF NOT EXISTS employees (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		employee TEXT PRIMARY KEY,
		weekly_hours REAL NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LoadMonth returns the bucket of employee for monthKey.
func (s *Store) LoadMonth(ctx context.Context, employee, monthKey string) (model.MonthBucket, error) {
	if err := storage.ValidateMonth(monthKey); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, kind, start_time, end_time, break
		FROM day_entries
		WHERE employee = ? AND month_key = ?
	`, model.UserSlug(employee), monthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load month: %w", err)
	}
	defer rows.Close()

	bucket := model.MonthBucket{}
	for rows.Next() {
		var date, kind, start, end, brk string
		if err := rows.Scan(&date, &kind, &start, &end, &brk); err != nil {
			return nil, err
		}
		k, err := model.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", date, err)
		}
		bucket[date] = model.FromKind(k, start, end, brk)
	}
	return bucket, rows.Err()
}

// SaveMonth replaces the bucket of employee for monthKey in one transaction.
func (s *Store) SaveMonth(ctx context.Context, employee, monthKey string, bucket model.MonthBucket) error {
	if err := storage.ValidateMonth(monthKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slug := model.UserSlug(employee)
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM day_entries WHERE employee = ? AND month_key = ?", slug, monthKey,
	); err != nil {
		return fmt.Errorf("failed to clear month: %w", err)
	}
	for date, e := range bucket {
		if e.IsZero() || timecalc.MonthOf(date) != monthKey {
			continue
		}
		if err := upsertDay(ctx, tx, slug, date, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveDay writes a single day; a zero entry deletes it.
func (s *Store) SaveDay(ctx context.Context, employee, date string, entry model.DayEntry) error {
	if _, err := storage.ValidateDate(date); err != nil {
		return err
	}
	if entry.IsZero() {
		return s.DeleteDay(ctx, employee, date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertDay(ctx, s.db, model.UserSlug(employee), date, entry)
}

func upsertDay(ctx context.Context, db execer, slug, date string, e model.DayEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO day_entries (employee, month_key, date, kind, start_time, end_time, break)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee, date) DO UPDATE SET
			kind = excluded.kind,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			break = excluded.break
	`, slug, timecalc.MonthOf(date), date, e.Kind().String(), e.Start(), e.End(), e.Break())
	if err != nil {
		return fmt.Errorf("failed to save day %s: %w", date, err)
	}
	return nil
}

// DeleteDay removes a single day.
func (s *Store) DeleteDay(ctx context.Context, employee, date string) error {
	if _, err := storage.ValidateDate(date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM day_entries WHERE employee = ? AND date = ?", model.UserSlug(employee), date,
	)
	return err
}

// LoadSettings returns the weekly hours of every configured employee.
func (s *Store) LoadSettings(ctx context.Context) (model.SettingsMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT employee, weekly_hours FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	settings := model.SettingsMap{}
	for rows.Next() {
		var name string
		var hours float64
		if err := rows.Scan(&name, &hours); err != nil {
			return nil, err
		}
		settings[name] = model.Settings{WeeklyHours: model.Hours(hours)}
	}
	return settings, rows.Err()
}

// SaveSettings replaces all settings in one transaction.
func (s *Store) SaveSettings(ctx context.Context, settings model.SettingsMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	for name, st := range settings {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settings (employee, weekly_hours) VALUES (?, ?)", name, float64(st.WeeklyHours),
		); err != nil {
			return fmt.Errorf("failed to save settings of %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LoadEmployees returns the registered names in registration order.
func (s *Store) LoadEmployees(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM employees ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddEmployee registers name unless it already exists.
func (s *Store) AddEmployee(ctx context.Context, name string) error {
	name, err := storage.ValidateEmployee(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO employees (name, position)
		SELECT ?, COALESCE(MAX(position), 0) + 1 FROM employees
	`, name)
	if err != nil {
		return fmt.Errorf("failed to add employee: %w", err)
	}
	return nil
}
