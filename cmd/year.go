package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/stats"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var yearCmd = &cobra.Command{
	Use:   "year [YYYY]",
	Short: "Yearly statistics of every employee (admin)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runYear,
}

func init() {
	addPINFlag(yearCmd)
}

func runYear(cmd *cobra.Command, args []string) error {
	year, err := yearArg(args)
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

	names, err := store.LoadEmployees(ctx)
	if err != nil {
		return storageError(err)
	}
	settings, err := store.LoadSettings(ctx)
	if err != nil {
		return storageError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Jahresübersicht %d\n", year)
	fmt.Fprintf(out, "%-20s%8s%14s%14s%14s%7s%7s\n", "Mitarbeiter", "h/Wo", "Ist", "Soll", "Differenz", "Krank", "Urlaub")
	fmt.Fprintln(out, "------------------------------------------------------------------------------------")
	for _, name := range names {
		if model.UserSlug(name) == model.UserSlug(cfg.AdminName) {
			continue
		}
		buckets, err := storage.LoadYear(ctx, store, name, year)
		if err != nil {
			return storageError(err)
		}
		hours := settings.WeeklyHours(name, cfg.DefaultWeeklyHours)
		s := stats.Yearly(buckets, year, hours, cfg.Region)
		fmt.Fprintf(out, "%-20s%8s%14s%14s%14s%7d%7d\n", name, formatHours(hours),
			timecalc.FormatDuration(s.WorkedMinutes),
			timecalc.FormatDuration(s.TargetMinutes),
			timecalc.FormatDuration(s.DiffMinutes),
			s.SickDays, s.VacationDays)
	}
	return nil
}
