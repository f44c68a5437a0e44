package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/arbeitszeit/internal/config"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"AZT_REGION", "AZT_WEEKLY_HOURS", "AZT_STORAGE_DRIVER", "AZT_DATA_DIR", "DATABASE_URL", "AZT_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestLoadFromWritesTemplateOnFirstRun(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "azt", "config.json")

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "MV", cfg.Region)
	assert.Equal(t, 40.0, cfg.DefaultWeeklyHours)
	assert.Equal(t, config.DriverFile, cfg.Storage.Driver)
	assert.Len(t, cfg.Templates, 2)

	// The written template must parse back to the same defaults.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
	require.NoError(t, again.Validate())
}

func TestLoadFromPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `// comment
{
  // inner comment
  "region": "BY",
  "storage": {"driver": "sqlite"}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "BY", cfg.Region)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "07:00", cfg.DefaultStart)
	assert.Equal(t, config.DefaultTenantID, cfg.Outlook.TenantID)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AZT_REGION", "SN")
	t.Setenv("AZT_WEEKLY_HOURS", "not-a-number")
	t.Setenv("AZT_STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/azt")
	t.Setenv("AZT_ADDR", ":9999")

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "SN", cfg.Region)
	assert.Equal(t, 40.0, cfg.DefaultWeeklyHours)
	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/azt", cfg.Storage.DSN)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromInvalidJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	cfg, err := config.LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, "MV", cfg.Region, "defaults are returned alongside the error")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	cfg.Storage.Driver = "mongo"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = config.DriverPostgres
	cfg.Storage.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = config.DriverFile
	cfg.Region = "XX"
	assert.NoError(t, cfg.Validate(), "unknown regions fall back to nationwide holidays")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg, err := config.LoadFrom(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	cfg.AdminPINHash = "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"

	out := filepath.Join(dir, "saved.json")
	require.NoError(t, config.Save(out, cfg))
	loaded, err := config.LoadFrom(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.AdminPINHash, loaded.AdminPINHash)
}
