package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/config"
)

var (
	configFlag   string
	employeeFlag string

	// cfg and cfgPath are set by loadConfig before any command runs.
	cfg     config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "azt",
	Short: "Arbeitszeit-Tracker – Arbeitszeiterfassung mit Soll/Ist-Abgleich",
	Long: `azt records working hours, sick days and vacation per employee and
compares them with the contracted hours, counting German public holidays
of the configured federal state.
Configuration lives in ~/.azt/config.json, data in ~/.azt/data/ unless
another storage driver is configured.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default $AZT_CONFIG or ~/.azt/config.json)")
	rootCmd.PersistentFlags().StringVarP(&employeeFlag, "employee", "e", "", "Employee name (default $AZT_EMPLOYEE)")

	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(yearCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path := configFlag
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return storageError(err)
		}
		path = p
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		// Defaults are still usable; the broken file is left for the user.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := loaded.Validate(); err != nil {
		return usageError(fmt.Errorf("invalid configuration %s: %w", path, err))
	}
	cfg, cfgPath = loaded, path
	return nil
}

// exitError carries the process exit status of a failed command: 1 for
// usage errors, 2 for storage errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: 1, err: err}
}

func storageError(err error) error {
	return &exitError{code: 2, err: err}
}
