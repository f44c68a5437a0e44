package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [YYYY-MM]",
	Short: "Export a month as payroll CSV (Zeiterfassung_<employee>_<month>.csv)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", `Target directory, or "-" for stdout`)
}

func runExport(cmd *cobra.Command, args []string) error {
	employee, err := currentEmployee()
	if err != nil {
		return err
	}
	monthKey, err := monthArg(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	bucket, err := store.LoadMonth(ctx, employee, monthKey)
	if err != nil {
		return storageError(err)
	}
	record := export.Record(bucket, monthKey, employee)

	if exportOut == "-" {
		fmt.Fprint(cmd.OutOrStdout(), record)
		return nil
	}
	path, err := writeOutput(exportOut, export.FileName(employee, monthKey), []byte(record))
	if err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	return nil
}

// writeOutput writes data to dir/name and returns the path.
func writeOutput(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
