package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Tiliavir/arbeitszeit/internal/calendar"
	"github.com/Tiliavir/arbeitszeit/internal/model"
)

// Config is the root configuration for azt, stored in ~/.azt/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// Company is printed in the timesheet header.
	Company string `json:"company"`
	// Region is the federal state code selecting regional holidays.
	Region string `json:"region"`
	// DefaultWeeklyHours applies to employees without their own setting.
	DefaultWeeklyHours float64 `json:"default_weekly_hours"`
	// AdminName is the user name of the admin account. It is excluded from
	// yearly statistics.
	AdminName string `json:"admin_name"`
	// AdminPINHash is an argon2id hash produced by "azt admin hash-pin".
	// Empty leaves admin commands open.
	AdminPINHash string `json:"admin_pin_hash"`
	// DefaultStart is the start time a cleared sick or vacation day gets.
	DefaultStart string           `json:"default_start"`
	Templates    []model.Template `json:"templates"`

	Storage StorageConfig `json:"storage"`
	Server  ServerConfig  `json:"server"`
	Outlook OutlookConfig `json:"outlook"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is one of "file", "sqlite" or "postgres".
	Driver string `json:"driver"`
	// Dir is the data directory of the file backend and the default
	// location of the SQLite database.
	Dir string `json:"dir"`
	// DSN is the SQLite path or the PostgreSQL connection URL.
	DSN string `json:"dsn"`
}

// ServerConfig holds settings of "azt serve".
type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone"`
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration. Replace with your own registered app ID for
	// organisational or production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	DefaultAddr     = ":8080"
	DefaultCompany  = "Arbeitszeit"
	DefaultAdmin    = "Admin"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-value fields with built-in defaults so callers
// always get a usable Config even if the user only partially fills in the file.
func (c *Config) applyDefaults() {
	if c.Company == "" {
		c.Company = DefaultCompany
	}
	if c.Region == "" {
		c.Region = calendar.DefaultRegion
	}
	if !model.ValidHours(c.DefaultWeeklyHours) {
		c.DefaultWeeklyHours = model.DefaultWeeklyHours
	}
	if c.AdminName == "" {
		c.AdminName = DefaultAdmin
	}
	if c.DefaultStart == "" {
		c.DefaultStart = model.DefaultStart
	}
	if len(c.Templates) == 0 {
		c.Templates = model.DefaultTemplates()
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = DefaultTenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = DefaultClientID
	}
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	c.Region = getEnv("AZT_REGION", c.Region)
	c.DefaultWeeklyHours = getEnvFloat("AZT_WEEKLY_HOURS", c.DefaultWeeklyHours)
	c.Storage.Driver = getEnv("AZT_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Dir = getEnv("AZT_DATA_DIR", c.Storage.Dir)
	c.Storage.DSN = getEnv("DATABASE_URL", c.Storage.DSN)
	c.Server.Addr = getEnv("AZT_ADDR", c.Server.Addr)
}

// Validate reports settings that would make the store unusable. An unknown
// region is not an error; it selects the nationwide holidays only.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage driver %q requires storage.dsn or DATABASE_URL", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q (want file, sqlite or postgres)", c.Storage.Driver)
	}
	for i, t := range c.Templates {
		if t.Start == "" || t.End == "" {
			return fmt.Errorf("template %d (%q) needs start and end", i+1, t.Label)
		}
	}
	return nil
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// azt configuration – ~/.azt/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Environment variables AZT_REGION, AZT_WEEKLY_HOURS,
// AZT_STORAGE_DRIVER, AZT_DATA_DIR, DATABASE_URL and AZT_ADDR override the
// values in this file.
{
  // Company name printed on the monthly timesheet.
  "company": "Arbeitszeit",

  // Federal state code for regional public holidays:
  // BW BY BE BB HB HH HE MV NI NW RP SL SN ST SH TH
  "region": "MV",

  // Weekly contracted hours for employees without their own setting.
  "default_weekly_hours": 40,

  // Admin account. Generate the hash with: azt admin hash-pin
  // An empty hash leaves admin commands unprotected.
  "admin_name": "Admin",
  "admin_pin_hash": "",

  // Start time a cleared sick or vacation day falls back to.
  "default_start": "07:00",

  // Quick-entry templates, applied with: azt day template <date> <number>
  "templates": [
    {"label": "Normaltag 7–16", "start": "07:00", "end": "16:00", "break": "1:00"},
    {"label": "Halber Tag 7–12", "start": "07:00", "end": "12:00", "break": "0:00"}
  ],

  // ── Persistence ──────────────────────────────────────────────────────────
  "storage": {
    // "file" (JSON documents), "sqlite" or "postgres"
    "driver": "file",
    // Data directory; empty = ~/.azt/data
    "dir": "",
    // SQLite file path (empty = <dir>/azt.db) or PostgreSQL URL
    "dsn": ""
  },

  // ── HTTP API (azt serve) ─────────────────────────────────────────────────
  "server": {
    "addr": ":8080"
    // Browser origins allowed to call the API, e.g.
    // "allowed_origins": ["http://localhost:5173"]
  },

  // ── Microsoft Graph / Outlook calendar sync ──────────────────────────────
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID, e.g. "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC. Can be overridden with: azt outlook sync --timezone <tz>
    "timezone": ""
  }
}
`

// Dir returns ~/.azt, the home of config, tokens and default data.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".azt"), nil
}

// Path returns the config file path: $AZT_CONFIG or ~/.azt/config.json.
func Path() (string, error) {
	if p := os.Getenv("AZT_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file at Path.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		cfg := defaultConfig()
		cfg.applyEnv()
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path, creating it with annotated defaults
// on first run, then applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg, err := readFile(path)
	cfg.applyEnv()
	return cfg, err
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Save writes cfg to path as plain JSON. Comments of the original file are lost.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || !model.ValidHours(parsed) {
		return fallback
	}
	return parsed
}
