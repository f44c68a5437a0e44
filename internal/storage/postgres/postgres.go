// Package postgres stores month buckets, employees and settings in
// PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var _ storage.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS day_entries (
  employee   TEXT NOT NULL,
  month_key  TEXT NOT NULL,
  date       DATE NOT NULL,
  kind       TEXT NOT NULL,
  start_time TEXT NOT NULL DEFAULT '',
  end_time   TEXT NOT NULL DEFAULT '',
  break      TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (employee, date)
);
CREATE INDEX IF NOT EXISTS idx_day_entries_month ON day_entries (employee, month_key);

CREATE TABLE IF NOT EXISTS employees (
  name     TEXT PRIMARY KEY,
  position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
  employee     TEXT PRIMARY KEY,
  weekly_hours DOUBLE PRECISION NOT NULL
);
`

// Store implements storage.Store on a pgx pool.
type Store struct {
	DB *pgxpool.Pool
}

// Connect opens a pool for databaseURL and migrates the schema.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.DB.Close()
	return nil
}

func (s *Store) LoadMonth(ctx context.Context, employee, monthKey string) (model.MonthBucket, error) {
	if err := storage.ValidateMonth(monthKey); err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT to_char(date, 'YYYY-MM-DD'), kind, start_time, end_time, break
    FROM day_entries
    WHERE employee = $1 AND month_key = $2
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

func (s *Store) SaveMonth(ctx context.Context, employee, monthKey string, bucket model.MonthBucket) error {
	if err := storage.ValidateMonth(monthKey); err != nil {
		return err
	}
	slug := model.UserSlug(employee)
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM day_entries WHERE employee = $1 AND month_key = $2`, slug, monthKey,
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
		return nil
	})
}

func (s *Store) SaveDay(ctx context.Context, employee, date string, entry model.DayEntry) error {
	if _, err := storage.ValidateDate(date); err != nil {
		return err
	}
	if entry.IsZero() {
		return s.DeleteDay(ctx, employee, date)
	}
	return upsertDay(ctx, s.DB, model.UserSlug(employee), date, entry)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertDay(ctx context.Context, db execer, slug, date string, e model.DayEntry) error {
	_, err := db.Exec(ctx, `
    INSERT INTO day_entries (employee, month_key, date, kind, start_time, end_time, break)
    VALUES ($1, $2, $3::date, $4, $5, $6, $7)
    ON CONFLICT (employee, date) DO UPDATE SET
      kind = EXCLUDED.kind,
      start_time = EXCLUDED.start_time,
      end_time = EXCLUDED.end_time,
      break = EXCLUDED.break
  `, slug, timecalc.MonthOf(date), date, e.Kind().String(), e.Start(), e.End(), e.Break())
	if err != nil {
		return fmt.Errorf("failed to save day %s: %w", date, err)
	}
	return nil
}

func (s *Store) DeleteDay(ctx context.Context, employee, date string) error {
	if _, err := storage.ValidateDate(date); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx,
		`DELETE FROM day_entries WHERE employee = $1 AND date = $2::date`, model.UserSlug(employee), date,
	)
	return err
}

func (s *Store) LoadSettings(ctx context.Context) (model.SettingsMap, error) {
	rows, err := s.DB.Query(ctx, `SELECT employee, weekly_hours FROM settings`)
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

func (s *Store) SaveSettings(ctx context.Context, settings model.SettingsMap) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM settings`); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		for name, st := range settings {
			if _, err := tx.Exec(ctx,
				`INSERT INTO settings (employee, weekly_hours) VALUES ($1, $2)`, name, float64(st.WeeklyHours),
			); err != nil {
				return fmt.Errorf("failed to save settings of %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadEmployees(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT name FROM employees ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Store) AddEmployee(ctx context.Context, name string) error {
	name, err := storage.ValidateEmployee(name)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO employees (name, position)
    SELECT $1, COALESCE(MAX(position), 0) + 1 FROM employees
    ON CONFLICT (name) DO NOTHING
  `, name)
	if err != nil {
		return fmt.Errorf("failed to add employee: %w", err)
	}
	return nil
}
