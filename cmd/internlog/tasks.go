package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/worklog"
)

func (a *App) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, add and delete work log entries",
	}
	cmd.AddCommand(a.tasksListCmd())
	cmd.AddCommand(a.tasksAddCmd())
	cmd.AddCommand(a.tasksDeleteCmd())
	return cmd
}

func (a *App) tasksListCmd() *cobra.Command {
	var month, year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally for one month",
		Example: `  internlog tasks list
  internlog tasks list --month 3 --year 2024`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter application.TaskFilter
			if cmd.Flags().Changed("month") {
				filter.Month = &month
			}
			if cmd.Flags().Changed("year") {
				filter.Year = &year
			}

			return a.withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				tasks, err := svc.tasks.ListTasks(ctx, filter)
				if err != nil {
					return fmt.Errorf("listing tasks: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(tasks) == 0 {
					fmt.Fprintln(out, "No tasks found.")
					return nil
				}
				for _, task := range tasks {
					fmt.Fprintf(out, "%s  %-8s %-8s %s %s\n",
						worklog.FormatDate(task.Date),
						formatType(task.Type),
						task.Duration,
						task.Description,
						formatMuted(task.ID),
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "year")

	return cmd
}

func (a *App) tasksAddCmd() *cobra.Command {
	var (
		date        string
		description string
		taskType    string
		segments    []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a day",
		Example: `  internlog tasks add --date 2024-03-04 --description "Set up CI" --segment 09:00-13:00 --segment 14:00-18:00
  internlog tasks add --date 2024-03-08 --description "Public holiday" --type Holiday`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseSegments(segments)
			if err != nil {
				return err
			}
			if taskType == "" {
				if day, err := worklog.ParseDate(date); err == nil {
					taskType = string(worklog.DefaultType(day))
				}
			}

			return a.withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				task, err := svc.tasks.CreateTask(ctx, application.TaskInput{
					Date:        date,
					Description: description,
					Type:        taskType,
					Segments:    parsed,
				})
				if err != nil {
					return describeError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n", formatOK("Added"), worklog.FormatDate(task.Date), formatType(task.Type), task.Duration)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day of the entry (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "what was done")
	cmd.Flags().StringVar(&taskType, "type", "", "Work, Holiday or Weekend (defaults from the date)")
	cmd.Flags().StringArrayVar(&segments, "segment", nil, "working time as HH:MM-HH:MM, repeatable")

	return cmd
}

func (a *App) tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				if err := svc.tasks.DeleteTask(ctx, args[0]); err != nil {
					return describeError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
				return nil
			})
		},
	}
}

// parseSegments reads "HH:MM-HH:MM" values; the times themselves are
// validated by the task service.
func parseSegments(values []string) ([]worklog.TimeSegment, error) {
	segments := make([]worklog.TimeSegment, 0, len(values))
	for _, value := range values {
		start, end, ok := strings.Cut(value, "-")
		if !ok {
			return nil, fmt.Errorf("segment %q must look like HH:MM-HH:MM", value)
		}
		segments = append(segments, worklog.TimeSegment{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)})
	}
	return segments, nil
}

// describeError flattens validation failures into one readable line.
func describeError(err error) error {
	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	details := make([]string, 0, len(vErr.FieldErrors))
	for field, message := range vErr.FieldErrors {
		details = append(details, field+": "+message)
	}
	if len(details) == 0 {
		return errors.New(vErr.Message)
	}
	slices.Sort(details)
	return fmt.Errorf("%s (%s)", vErr.Message, strings.Join(details, "; "))
}
