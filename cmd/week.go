package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/stats"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var weekDate string

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show target versus actual hours of the current week",
	Long: `Show target versus actual hours of the Monday..Sunday week containing
today (or --date). Only days of that date's month are counted.`,
	Args: cobra.NoArgs,
	RunE: runWeek,
}

func init() {
	weekCmd.Flags().StringVar(&weekDate, "date", "", "Any day of the week (default today)")
}

func runWeek(cmd *cobra.Command, args []string) error {
	employee, err := currentEmployee()
	if err != nil {
		return err
	}
	day := now()
	if weekDate != "" {
		key, err := parseDateArg(weekDate)
		if err != nil {
			return err
		}
		day, _ = timecalc.ParseDate(key)
	}
	monthKey := timecalc.MonthKey(day)

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
	ws := stats.Weekly(bucket, monthKey, day, settings.WeeklyHours(employee, cfg.DefaultWeeklyHours))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "KW %d (%s – %s)  %s\n", ws.Week, timecalc.FormatDateShort(ws.From), timecalc.FormatDateShort(ws.To), timecalc.ISOWeekLabel(day))
	fmt.Fprintln(out, "--------------------------------")
	fmt.Fprintf(out, "%-16s%s\n", "Ist", timecalc.FormatDuration(ws.WorkedMinutes))
	fmt.Fprintf(out, "%-16s%s\n", "Soll", timecalc.FormatDuration(ws.TargetMinutes))
	fmt.Fprintf(out, "%-16s%s\n", "Differenz", timecalc.FormatDuration(ws.DiffMinutes))
	if timecalc.MonthOf(ws.From) != monthKey || timecalc.MonthOf(ws.To) != monthKey {
		fmt.Fprintf(out, "Hinweis: nur Tage im %s gezählt\n", timecalc.FormatMonthYear(monthKey))
	}
	return nil
}
