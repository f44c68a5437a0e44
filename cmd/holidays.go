package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/arbeitszeit/internal/calendar"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

var holidaysRegion string

var holidaysCmd = &cobra.Command{
	Use:   "holidays [YYYY]",
	Short: "List the public holidays of a year",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHolidays,
}

func init() {
	holidaysCmd.Flags().StringVar(&holidaysRegion, "region", "", "Federal state code (default from config)")
}

func runHolidays(cmd *cobra.Command, args []string) error {
	year, err := yearArg(args)
	if err != nil {
		return err
	}
	region := holidaysRegion
	if region == "" {
		region = cfg.Region
	}
	out := cmd.OutOrStdout()
	if !calendar.KnownRegion(region) {
		fmt.Fprintf(out, "Unknown region %q, listing nationwide holidays only. Known regions: %s\n",
			region, strings.Join(calendar.Regions(), ", "))
	}

	holidays := calendar.Holidays(year, region)
	dates := make([]string, 0, len(holidays))
	for d := range holidays {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	fmt.Fprintf(out, "Feiertage %d (%s)\n", year, region)
	for _, d := range dates {
		fmt.Fprintf(out, "%-16s%s\n", timecalc.FormatDate(d), holidays[d])
	}
	return nil
}
