package msgraph

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Tiliavir/arbeitszeit/internal/calendar"
	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	Store    storage.Store
	Employee string
	Region   string
	// From and To bound the imported days, inclusive. Zero values leave the
	// range open.
	From     time.Time
	To       time.Time
	Timezone string
	DryRun   bool
	// Out receives progress lines; nil means stdout.
	Out io.Writer
}

// sickKeywords mark an out-of-office event as sick leave instead of vacation.
var sickKeywords = []string{"krank", "sick"}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	// Try RFC3339 first (includes timezone offset).
	if t, err := time.Parse(time.RFC3339, dt); err == nil {
		return t, nil
	}
	// Try RFC3339Nano.
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	// Graph returns fractional seconds: "2026-02-27T09:00:00.0000000"
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip returns true if the event does not mark an absence.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if event.ShowAs != "oof" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// AbsenceEntry returns the entry an out-of-office event maps to.
func AbsenceEntry(event CalendarEvent) model.DayEntry {
	subject := strings.ToLower(event.Subject)
	for _, kw := range sickKeywords {
		if strings.Contains(subject, kw) {
			return model.Sick()
		}
	}
	return model.Vacation()
}

// EventDays returns the date keys an event covers. The end is exclusive, so
// an all-day event ending at midnight does not cover the following day.
func EventDays(event CalendarEvent, timezone string) ([]string, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing end time: %w", err)
	}
	if !end.After(start) {
		return []string{timecalc.DateKey(start)}, nil
	}

	var days []string
	for d := timecalc.StartOfDay(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, timecalc.DateKey(d))
	}
	return days, nil
}

func inRange(day string, from, to time.Time) bool {
	if !from.IsZero() && day < timecalc.DateKey(from) {
		return false
	}
	if !to.IsZero() && day > timecalc.DateKey(to) {
		return false
	}
	return true
}

// SyncEvents imports out-of-office events as Vacation (or Sick) days. Only
// working days without an existing entry are written; weekends, holidays
// and recorded days are left alone.
func SyncEvents(ctx context.Context, events []CalendarEvent, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	buckets := map[string]model.MonthBucket{}
	loadBucket := func(monthKey string) (model.MonthBucket, error) {
		if b, ok := buckets[monthKey]; ok {
			return b, nil
		}
		b, err := opts.Store.LoadMonth(ctx, opts.Employee, monthKey)
		if err != nil {
			return nil, err
		}
		buckets[monthKey] = b
		return b, nil
	}

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if shouldSkip(event) {
			continue
		}

		days, err := EventDays(event, opts.Timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		entry := AbsenceEntry(event)

		for _, day := range days {
			if !inRange(day, opts.From, opts.To) {
				continue
			}
			if !timecalc.IsWeekday(day) || calendar.IsHoliday(day, opts.Region) != "" {
				continue
			}

			bucket, err := loadBucket(timecalc.MonthOf(day))
			if err != nil {
				fmt.Fprintf(out, "  ! Error loading month for %q: %v\n", event.Subject, err)
				result.Errors++
				continue
			}
			if existing, ok := bucket[day]; ok {
				fmt.Fprintf(out, "  – Skipped:  %s %s (already %s)\n", day, event.Subject, existing.Kind())
				result.Skipped++
				continue
			}

			if !opts.DryRun {
				if err := opts.Store.SaveDay(ctx, opts.Employee, day, entry); err != nil {
					fmt.Fprintf(out, "  ! Error saving %s %q: %v\n", day, event.Subject, err)
					result.Errors++
					continue
				}
			}
			bucket[day] = entry
			fmt.Fprintf(out, "  ✓ Imported: %s %s (%s)\n", day, event.Subject, entry.Kind())
			result.Imported++
		}
	}

	return result, nil
}
