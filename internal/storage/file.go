package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Tiliavir/arbeitszeit/internal/model"
)

// BaseDir returns the default data directory (~/.azt/data).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".azt", "data"), nil
}

// FileStore keeps one JSON document per employee and month:
//
//	<base>/users/<slug>/work/<YYYY-MM>.json  {"entries": {...}}
//	<base>/meta/employees.json               {"list": [...]}
//	<base>/meta/settings.json                {"<name>": {"sollStunden": n}}
type FileStore struct {
	base string
	mu   sync.Mutex
}

// NewFileStore returns a store rooted at base. Directories are created on
// first write.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base}
}

type monthFile struct {
	Entries model.MonthBucket `json:"entries"`
}

type employeesFile struct {
	List []string `json:"list"`
}

func (s *FileStore) monthPath(employee, monthKey string) string {
	return filepath.Join(s.base, "users", model.UserSlug(employee), "work", monthKey+".json")
}

func (s *FileStore) metaPath(name string) string {
	return filepath.Join(s.base, "meta", name+".json")
}

// LoadMonth implements Store.
func (s *FileStore) LoadMonth(ctx context.Context, employee, monthKey string) (model.MonthBucket, error) {
	if err := ValidateMonth(monthKey); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadMonth(employee, monthKey)
}

func (s *FileStore) loadMonth(employee, monthKey string) (model.MonthBucket, error) {
	var mf monthFile
	if err := readJSON(s.monthPath(employee, monthKey), &mf); err != nil {
		return nil, err
	}
	if mf.Entries == nil {
		return model.MonthBucket{}, nil
	}
	mf.Entries.Compact()
	return mf.Entries, nil
}

// SaveMonth implements Store.
func (s *FileStore) SaveMonth(ctx context.Context, employee, monthKey string, bucket model.MonthBucket) error {
	if err := ValidateMonth(monthKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveMonth(employee, monthKey, bucket)
}

func (s *FileStore) saveMonth(employee, monthKey string, bucket model.MonthBucket) error {
	b := bucket.Clone()
	b.Compact()
	return writeJSON(s.monthPath(employee, monthKey), monthFile{Entries: b})
}

// SaveDay implements Store.
func (s *FileStore) SaveDay(ctx context.Context, employee, date string, entry model.DayEntry) error {
	monthKey, err := ValidateDate(date)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.loadMonth(employee, monthKey)
	if err != nil {
		return err
	}
	if entry.IsZero() {
		delete(b, date)
	} else {
		b[date] = entry
	}
	return s.saveMonth(employee, monthKey, b)
}

// DeleteDay implements Store.
func (s *FileStore) DeleteDay(ctx context.Context, employee, date string) error {
	return s.SaveDay(ctx, employee, date, model.DayEntry{})
}

// LoadSettings implements Store.
func (s *FileStore) LoadSettings(ctx context.Context) (model.SettingsMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := model.SettingsMap{}
	if err := readJSON(s.metaPath("settings"), &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings implements Store.
func (s *FileStore) SaveSettings(ctx context.Context, settings model.SettingsMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings == nil {
		settings = model.SettingsMap{}
	}
	return writeJSON(s.metaPath("settings"), settings)
}

// LoadEmployees implements Store.
func (s *FileStore) LoadEmployees(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEmployees()
}

func (s *FileStore) loadEmployees() ([]string, error) {
	var ef employeesFile
	if err := readJSON(s.metaPath("employees"), &ef); err != nil {
		return nil, err
	}
	if ef.List == nil {
		return []string{}, nil
	}
	return ef.List, nil
}

// AddEmployee implements Store.
func (s *FileStore) AddEmployee(ctx context.Context, name string) error {
	name, err := ValidateEmployee(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadEmployees()
	if err != nil {
		return err
	}
	if slices.Contains(list, name) {
		return nil
	}
	return writeJSON(s.metaPath("employees"), employeesFile{List: append(list, name)})
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

// readJSON decodes path into v. A missing file leaves v untouched.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage error reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return nil
}

// writeJSON atomically replaces path with the JSON encoding of v.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
