package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/msgraph"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncMonth  string
	outlookSyncDryRun bool
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import out-of-office days from Outlook as vacation or sick days",
	Long: `Import Outlook events shown as "out of office" as vacation days (sick
days when the subject mentions "krank" or "sick"). Only working days
without an existing record are written. Defaults to the current month.`,
	Args: cobra.NoArgs,
	RunE: runOutlookSync,
}

var outlookLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached Microsoft token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := msgraph.DefaultTokenCache()
		if err != nil {
			return storageError(err)
		}
		if err := cache.Clear(); err != nil {
			return storageError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncMonth, "month", "", "Sync a whole month (YYYY-MM)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
	outlookCmd.AddCommand(outlookLogoutCmd)
}

// syncRange resolves the sync flags into an inclusive day range.
func syncRange() (time.Time, time.Time, error) {
	switch {
	case outlookSyncDate != "":
		d, err := timecalc.ParseDate(outlookSyncDate)
		if err != nil {
			return time.Time{}, time.Time{}, usageError(fmt.Errorf("invalid --date value: %w", err))
		}
		return d, d, nil

	case outlookSyncFrom != "" || outlookSyncTo != "":
		if outlookSyncFrom == "" {
			return time.Time{}, time.Time{}, usageError(fmt.Errorf("--from is required when --to is specified"))
		}
		from, err := timecalc.ParseDate(outlookSyncFrom)
		if err != nil {
			return time.Time{}, time.Time{}, usageError(fmt.Errorf("invalid --from value: %w", err))
		}
		to, _ := timecalc.ParseDate(timecalc.DateKey(now()))
		if outlookSyncTo != "" {
			to, err = timecalc.ParseDate(outlookSyncTo)
			if err != nil {
				return time.Time{}, time.Time{}, usageError(fmt.Errorf("invalid --to value: %w", err))
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, usageError(fmt.Errorf("--to must not be before --from"))
		}
		return from, to, nil
	}

	monthKey := outlookSyncMonth
	if monthKey == "" {
		monthKey = timecalc.MonthKey(now())
	}
	first, err := timecalc.ParseMonthKey(monthKey)
	if err != nil {
		return time.Time{}, time.Time{}, usageError(fmt.Errorf("invalid --month value: %w", err))
	}
	return first, first.AddDate(0, 1, -1), nil
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	employee, err := currentEmployee()
	if err != nil {
		return err
	}
	from, to, err := syncRange()
	if err != nil {
		return err
	}
	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = cfg.Outlook.Timezone
	}

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook absences for %s (%s → %s)%s...\n",
		employee, timecalc.DateKey(from), timecalc.DateKey(to), dryTag)
	fmt.Fprintln(out)

	ctx := cmd.Context()
	cache, err := msgraph.DefaultTokenCache()
	if err != nil {
		return storageError(err)
	}
	ts, err := msgraph.Login(ctx, cfg.Outlook, cache, out)
	if err != nil {
		return usageError(fmt.Errorf("authentication failed: %w", err))
	}
	client := msgraph.NewClient(ctx, ts)

	// calendarView treats the end as exclusive.
	events, err := client.GetCalendarView(ctx, from, to.AddDate(0, 0, 1), timezone)
	if err != nil {
		return usageError(fmt.Errorf("failed to fetch calendar events: %w", err))
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if !outlookSyncDryRun {
		if err := store.AddEmployee(ctx, employee); err != nil {
			return storageError(err)
		}
	}

	result, err := msgraph.SyncEvents(ctx, events, msgraph.SyncOptions{
		Store:    store,
		Employee: employee,
		Region:   cfg.Region,
		From:     from,
		To:       to,
		Timezone: timezone,
		DryRun:   outlookSyncDryRun,
		Out:      out,
	})
	if err != nil {
		return storageError(err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d imported\n", result.Imported)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		fmt.Fprintf(os.Stderr, "  %d errors\n", result.Errors)
		return storageError(fmt.Errorf("%d events could not be imported", result.Errors))
	}
	return nil
}
