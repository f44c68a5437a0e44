package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/arbeitszeit/internal/config"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/storage/postgres"
	"github.com/Tiliavir/arbeitszeit/internal/storage/sqlite"
)

// dataDir returns storage.dir, or ~/.azt/data when unset.
func dataDir() (string, error) {
	if cfg.Storage.Dir != "" {
		return cfg.Storage.Dir, nil
	}
	return storage.BaseDir()
}

// openStore opens the backend selected by storage.driver.
func openStore(ctx context.Context) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		s, err := postgres.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, storageError(err)
		}
		return s, nil

	case config.DriverSQLite:
		dsn := cfg.Storage.DSN
		if dsn == "" {
			dir, err := dataDir()
			if err != nil {
				return nil, storageError(err)
			}
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, storageError(fmt.Errorf("storage error creating directories: %w", err))
			}
			dsn = filepath.Join(dir, "azt.db")
		}
		s, err := sqlite.New(dsn)
		if err != nil {
			return nil, storageError(err)
		}
		return s, nil

	default:
		dir, err := dataDir()
		if err != nil {
			return nil, storageError(err)
		}
		return storage.NewFileStore(dir), nil
	}
}

// currentEmployee returns --employee, $AZT_EMPLOYEE, or a usage error.
func currentEmployee() (string, error) {
	name := employeeFlag
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("AZT_EMPLOYEE")
	}
	name, err := storage.ValidateEmployee(name)
	if err != nil {
		return "", usageError(fmt.Errorf("no employee given: use --employee or set AZT_EMPLOYEE"))
	}
	return name, nil
}
