package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/stats"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var (
	monthAll  bool
	monthPrev bool
	monthNext bool
)

var monthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "List a month and show target versus actual hours",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMonth,
}

func init() {
	monthCmd.Flags().BoolVar(&monthAll, "all", false, "List every calendar day, not only recorded ones")
	monthCmd.Flags().BoolVar(&monthPrev, "prev", false, "Show the month before the given one")
	monthCmd.Flags().BoolVar(&monthNext, "next", false, "Show the month after the given one")
	monthCmd.MarkFlagsMutuallyExclusive("prev", "next")
}

func runMonth(cmd *cobra.Command, args []string) error {
	employee, err := currentEmployee()
	if err != nil {
		return err
	}
	monthKey, err := monthArg(args)
	if err != nil {
		return err
	}
	switch {
	case monthPrev:
		monthKey = timecalc.OffsetMonth(monthKey, -1)
	case monthNext:
		monthKey = timecalc.OffsetMonth(monthKey, 1)
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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s – %s (Soll %s h/Woche)\n", employee, timecalc.FormatMonthYear(monthKey), formatHours(hours))
	fmt.Fprintln(out, "--------------------------------------------------------")
	if monthAll {
		for _, r := range stats.DayRows(bucket, monthKey, cfg.Region) {
			printRow(out, r, bucket[r.Date])
		}
	} else {
		for _, d := range stats.Entries(bucket) {
			if timecalc.MonthOf(d) != monthKey {
				continue
			}
			fmt.Fprintf(out, "%-16s%s\n", timecalc.FormatDate(d), describeEntry(bucket[d]))
		}
	}
	fmt.Fprintln(out, "--------------------------------------------------------")
	printSummary(out, stats.Monthly(bucket, monthKey, hours, cfg.Region))
	fmt.Fprintf(out, "%-16s%d (Mo–Fr)\n", "Werktage", timecalc.CountWorkdays(monthKey))
	return nil
}

func printRow(out io.Writer, r stats.Row, e model.DayEntry) {
	text := describeEntry(e)
	switch {
	case r.Holiday != "" && e.IsZero():
		text = r.Holiday
	case r.Holiday != "":
		text += "  (" + r.Holiday + ")"
	case r.Weekend && e.IsZero():
		text = ""
	}
	fmt.Fprintf(out, "%-16s%s\n", timecalc.FormatDate(r.Date), text)
}

func printSummary(out io.Writer, s stats.Summary) {
	fmt.Fprintf(out, "%-16s%d\n", "Arbeitstage", s.WorkedDays)
	fmt.Fprintf(out, "%-16s%s\n", "Ist", timecalc.FormatDuration(s.WorkedMinutes))
	fmt.Fprintf(out, "%-16s%s\n", "Soll", timecalc.FormatDuration(s.TargetMinutes))
	fmt.Fprintf(out, "%-16s%s\n", "Differenz", timecalc.FormatDuration(s.DiffMinutes))
	fmt.Fprintf(out, "%-16s%d Tage\n", "Krank", s.SickDays)
	fmt.Fprintf(out, "%-16s%d Tage\n", "Urlaub", s.VacationDays)
}
