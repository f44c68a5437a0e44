package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/report"
	"github.com/Tiliavir/arbeitszeit/internal/stats"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report [YYYY-MM]",
	Short: "Write the printable monthly timesheet as PDF",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", ".", "Target directory")
}

func runReport(cmd *cobra.Command, args []string) error {
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
	settings, err := store.LoadSettings(ctx)
	if err != nil {
		return storageError(err)
	}
	hours := settings.WeeklyHours(employee, cfg.DefaultWeeklyHours)

	var buf bytes.Buffer
	err = report.WritePDF(&buf, report.Timesheet{
		Company:     cfg.Company,
		Employee:    employee,
		MonthKey:    monthKey,
		WeeklyHours: hours,
		Rows:        stats.DayRows(bucket, monthKey, cfg.Region),
		Summary:     stats.Monthly(bucket, monthKey, hours, cfg.Region),
	})
	if err != nil {
		return err
	}

	path, err := writeOutput(reportOut, report.FileName(employee, monthKey), buf.Bytes())
	if err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
