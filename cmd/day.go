package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var (
	dayStart string
	dayEnd   string
	dayBreak string
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Record a single day",
}

var daySetCmd = &cobra.Command{
	Use:   "set <date>",
	Short: "Set start, end or break of a worked day",
	Long: `Set start, end or break of a worked day. Changing start or end raises
the break to the legal minimum (30 min above 6 h, 45 min above 9 h);
an explicitly given --break is kept as entered.`,
	Example: "  azt day set heute --start 07:00 --end 16:00\n  azt day set 2026-03-02 --break 1:00",
	Args:    cobra.ExactArgs(1),
	RunE:    runDaySet,
}

var daySickCmd = &cobra.Command{
	Use:   "sick <date>",
	Short: "Mark a day as sick leave",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replaceDay(cmd, args[0], func(model.DayEntry) (model.DayEntry, error) {
			return model.Sick(), nil
		})
	},
}

var dayVacationCmd = &cobra.Command{
	Use:   "vacation <date>",
	Short: "Mark a day as vacation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replaceDay(cmd, args[0], func(model.DayEntry) (model.DayEntry, error) {
			return model.Vacation(), nil
		})
	},
}

var dayClearCmd = &cobra.Command{
	Use:   "clear <date>",
	Short: "Remove a sick or vacation marker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replaceDay(cmd, args[0], func(e model.DayEntry) (model.DayEntry, error) {
			if !e.IsSick() && !e.IsVacation() {
				return e, usageError(fmt.Errorf("%s is not marked as sick or vacation", args[0]))
			}
			return model.ClearSpecial(e, cfg.DefaultStart), nil
		})
	},
}

var dayTemplateCmd = &cobra.Command{
	Use:   "template <date> <number>",
	Short: "Fill a day from a quick-entry template",
	Args:  cobra.ExactArgs(2),
	RunE:  runDayTemplate,
}

var dayDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Delete the record of a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runDayDelete,
}

func init() {
	daySetCmd.Flags().StringVar(&dayStart, "start", "", "Start time (HH:MM)")
	daySetCmd.Flags().StringVar(&dayEnd, "end", "", "End time (HH:MM)")
	daySetCmd.Flags().StringVar(&dayBreak, "break", "", "Break (H:MM)")

	dayCmd.AddCommand(daySetCmd)
	dayCmd.AddCommand(daySickCmd)
	dayCmd.AddCommand(dayVacationCmd)
	dayCmd.AddCommand(dayClearCmd)
	dayCmd.AddCommand(dayTemplateCmd)
	dayCmd.AddCommand(dayDeleteCmd)
}

func runDaySet(cmd *cobra.Command, args []string) error {
	var patch model.Patch
	flags := []struct {
		name  string
		value string
		dst   **string
		valid func(string) bool
	}{
		{"start", dayStart, &patch.Start, model.ValidClock},
		{"end", dayEnd, &patch.End, model.ValidClock},
		{"break", dayBreak, &patch.Break, model.ValidBreak},
	}
	for _, f := range flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if !f.valid(f.value) {
			return usageError(fmt.Errorf("invalid --%s value %q", f.name, f.value))
		}
		v := f.value
		*f.dst = &v
	}
	if patch.IsEmpty() {
		return usageError(fmt.Errorf("nothing to set: use --start, --end or --break"))
	}

	return replaceDay(cmd, args[0], func(e model.DayEntry) (model.DayEntry, error) {
		return patch.Apply(e), nil
	})
}

func runDayTemplate(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 || n > len(cfg.Templates) {
		return usageError(fmt.Errorf("template number must be between 1 and %d", len(cfg.Templates)))
	}
	tpl := cfg.Templates[n-1]
	return replaceDay(cmd, args[0], func(model.DayEntry) (model.DayEntry, error) {
		return model.FromTemplate(tpl), nil
	})
}

func runDayDelete(cmd *cobra.Command, args []string) error {
	employee, err := currentEmployee()
	if err != nil {
		return err
	}
	date, err := parseDateArg(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteDay(ctx, employee, date); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s for %s\n", timecalc.FormatDate(date), employee)
	return nil
}

// replaceDay loads the entry of date, lets change derive the new one and
// stores it. The employee is registered on first use.
func replaceDay(cmd *cobra.Command, dateArg string, change func(model.DayEntry) (model.DayEntry, error)) error {
	employee, err := currentEmployee()
	if err != nil {
		return err
	}
	date, err := parseDateArg(dateArg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := updateDay(ctx, store, employee, date, change)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", employee, timecalc.FormatDate(date), describeEntry(entry))
	return nil
}

func updateDay(ctx context.Context, store storage.Store, employee, date string, change func(model.DayEntry) (model.DayEntry, error)) (model.DayEntry, error) {
	bucket, err := store.LoadMonth(ctx, employee, timecalc.MonthOf(date))
	if err != nil {
		return model.DayEntry{}, storageError(err)
	}
	entry, err := change(bucket[date])
	if err != nil {
		return model.DayEntry{}, err
	}
	if err := store.AddEmployee(ctx, employee); err != nil {
		return model.DayEntry{}, storageError(err)
	}
	if err := store.SaveDay(ctx, employee, date, entry); err != nil {
		return model.DayEntry{}, storageError(err)
	}
	return entry, nil
}
