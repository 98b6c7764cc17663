package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/internlog/internal/report"
)

// periodFlags binds --month and --year, defaulting to the current month.
type periodFlags struct {
	month int
	year  int
}

func (p *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.month, "month", 0, "month (1-12, defaults to the current month)")
	cmd.Flags().IntVar(&p.year, "year", 0, "year (defaults to the current year)")
}

func (p periodFlags) resolve(a *App) (int, int, error) {
	now := a.now()
	month, year := p.month, p.year
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if err := report.ValidatePeriod(month, year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

func (a *App) summaryCmd() *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly dashboard totals",
		Example: `  internlog summary
  internlog summary --month 3 --year 2024`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, year, err := period.resolve(a)
			if err != nil {
				return err
			}

			return a.withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				summary, err := svc.reports.Summary(ctx, month, year)
				if err != nil {
					return describeError(err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderBox(out, report.MonthLabel(month, year), [][2]string{
					{"Total tasks", strconv.Itoa(summary.TotalTasks)},
					{"Work days", strconv.Itoa(summary.WorkDays)},
					{"Total hours", summary.TotalWorkDuration()},
					{"Days off", fmt.Sprintf("%d (%d holidays, %d weekends)", summary.DaysOff(), summary.HolidayCount, summary.WeekendCount)},
				}))
				return nil
			})
		},
	}

	period.bind(cmd)
	return cmd
}
