package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/example/internlog/internal/report"
)

// draftFile holds the narrative fields of a report written by hand.
type draftFile struct {
	Objectives        string   `toml:"objectives"`
	Summary           string   `toml:"summary"`
	LearningOutcomes  []string `toml:"learning_outcomes"`
	ToolsTechnologies []string `toml:"tools_technologies"`
}

func readDraftFile(path string) (draftFile, error) {
	var draft draftFile
	if path == "" {
		return draft, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return draftFile{}, fmt.Errorf("reading draft: %w", err)
	}
	if err := toml.Unmarshal(data, &draft); err != nil {
		return draftFile{}, fmt.Errorf("parsing draft %s: %w", path, err)
	}
	return draft, nil
}

func (a *App) reportCmd() *cobra.Command {
	var (
		period    periodFlags
		draftPath string
		outDir    string
		preview   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the monthly report as a PDF",
		Long: `Compose the monthly progress report from the stored profile and tasks and
write it as internship_report_<Month>_<Year>.pdf.

The narrative sections come from an optional TOML draft file:

  objectives = "Build the work log service"
  summary = "Finished storage and the report export"
  learning_outcomes = ["Go interfaces", "SQLite migrations"]
  tools_technologies = ["Go", "SQLite"]`,
		Example: `  internlog report --month 3 --year 2024 --draft march.toml --out reports/
  internlog report --preview`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, year, err := period.resolve(a)
			if err != nil {
				return err
			}
			file, err := readDraftFile(draftPath)
			if err != nil {
				return err
			}
			draft := report.Draft{
				Month:             month,
				Year:              year,
				Objectives:        file.Objectives,
				Summary:           file.Summary,
				LearningOutcomes:  file.LearningOutcomes,
				ToolsTechnologies: file.ToolsTechnologies,
			}

			return a.withServices(cmd.Context(), func(ctx context.Context, svc services) error {
				out := cmd.OutOrStdout()
				if preview {
					doc, err := svc.reports.Preview(ctx, draft)
					if err != nil {
						return describeError(err)
					}
					fmt.Fprintf(out, "%s: %d pages, %d tasks\n", report.MonthLabel(month, year), doc.PageCount(), doc.Summary.TotalTasks)
					for _, page := range doc.TaskPages {
						fmt.Fprintf(out, "  page %d: %d rows\n", page.Number, len(page.Rows))
					}
					return nil
				}

				result, err := svc.reports.Export(ctx, draft)
				if err != nil {
					var exportErr *report.ExportError
					if errors.As(err, &exportErr) {
						return fmt.Errorf("failed to generate PDF at page %d: %w", exportErr.Page, exportErr.Err)
					}
					return describeError(err)
				}

				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
				path := filepath.Join(outDir, result.FileName)
				if err := os.WriteFile(path, result.Content, 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintf(out, "%s %s (%d pages)\n", formatOK("Wrote"), path, result.Pages)
				return nil
			})
		},
	}

	period.bind(cmd)
	cmd.Flags().StringVar(&draftPath, "draft", "", "TOML file with the narrative sections")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for the PDF")
	cmd.Flags().BoolVar(&preview, "preview", false, "print the page layout instead of writing a PDF")

	return cmd
}
