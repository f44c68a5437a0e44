package cmd

import (
	"fmt"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show per-employee settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var setHoursCmd = &cobra.Command{
	Use:     "set-hours <employee> <hours>",
	Short:   "Set the weekly contracted hours of an employee (admin)",
	Example: "  azt settings set-hours \"Anna Berg\" 38,5",
	Args:    cobra.ExactArgs(2),
	RunE:    runSetHours,
}

func init() {
	addPINFlag(setHoursCmd)
	settingsCmd.AddCommand(setHoursCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.LoadEmployees(ctx)
	if err != nil {
		return storageError(err)
	}
	settings, err := store.LoadSettings(ctx)
	if err != nil {
		return storageError(err)
	}
	// Settings may exist for names that were never registered.
	var extra []string
	for name := range settings {
		if !slices.Contains(names, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s%s\n", "Mitarbeiter", "Soll h/Woche")
	for _, name := range names {
		marker := ""
		if _, ok := settings[name]; !ok {
			marker = " (Standard)"
		}
		fmt.Fprintf(out, "%-20s%s%s\n", name, formatHours(settings.WeeklyHours(name, cfg.DefaultWeeklyHours)), marker)
	}
	return nil
}

func runSetHours(cmd *cobra.Command, args []string) error {
	name, err := storage.ValidateEmployee(args[0])
	if err != nil {
		return usageError(err)
	}
	hours, err := parseHours(args[1])
	if err != nil {
		return err
	}
	if err := requireAdmin(cmd); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	settings, err := store.LoadSettings(ctx)
	if err != nil {
		return storageError(err)
	}
	settings[name] = model.Settings{WeeklyHours: model.Hours(hours)}
	if err := store.SaveSettings(ctx, settings); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s h/Woche\n", name, formatHours(hours))
	return nil
}
