package report

import (
	"fmt"
	"strings"

	"github.com/example/internlog/internal/worklog"
)

const (
	reportTitle    = "Progress Report & Daily Task Sheet"
	reportSubtitle = "Internship Progress Report"
	signatureLabel = "Sign of Organization"
	missingValue   = "N/A"
	emptyListText  = "None specified."
	rowDateLayout  = "02 January 2006"
)

// TaskColumns are the headings of every task table.
var TaskColumns = []string{"Date", "Task Description", "Duration"}

// Document is a composed report ready to preview or render.
type Document struct {
	Month     int
	Year      int
	Cover     Cover
	TaskPages []TaskPage
	Summary   Summary
}

// PageCount counts the cover plus every task page.
func (d Document) PageCount() int {
	return 1 + len(d.TaskPages)
}

// Cover is the first report page.
type Cover struct {
	Title        string
	Subtitle     string
	Fields       []Field
	Sections     []Section
	ListSections []ListSection
	Signature    string
}

// Field is a labelled profile row.
type Field struct {
	Label string
	Value string
}

// Section is a free-text narrative block.
type Section struct {
	Title string
	Body  string
}

// ListSection is a bulleted narrative block. Fallback is shown when Items is
// empty.
type ListSection struct {
	Title    string
	Items    []string
	Fallback string
}

// TaskPage is one page of the daily task sheet. Number starts at 2, after
// the cover.
type TaskPage struct {
	Number  int
	Heading string
	Rows    []Row
}

// Row is one rendered task line.
type Row struct {
	Date        string
	Description string
	Duration    string
}

// Compose lays out the report for draft's month using pageSize rows per task
// page. Tasks are expected in date order.
func Compose(profile Profile, draft Draft, tasks []Task, pageSize int) Document {
	label := MonthLabel(draft.Month, draft.Year)

	doc := Document{
		Month: draft.Month,
		Year:  draft.Year,
		Cover: Cover{
			Title:    reportTitle,
			Subtitle: reportSubtitle,
			Fields: []Field{
				{Label: "Student Name", Value: orMissing(profile.StudentName)},
				{Label: "Company Name", Value: orMissing(profile.CompanyName)},
				{Label: "Designation", Value: orMissing(profile.Designation)},
				{Label: "Project Title", Value: orMissing(profile.ProjectTitle)},
				{Label: "Month", Value: label},
			},
			Sections: []Section{
				narrative("Objectives", draft.Objectives),
				narrative("Work & Learning Summary", draft.Summary),
			},
			ListSections: []ListSection{
				{Title: "Tools & Technologies Used", Items: nonBlank(draft.ToolsTechnologies), Fallback: emptyListText},
				{Title: "Learning Outcomes", Items: nonBlank(draft.LearningOutcomes), Fallback: emptyListText},
			},
			Signature: signatureLabel,
		},
		Summary: Summarize(tasks),
	}

	heading := "Daily Task Sheet - " + label
	for i, page := range Paginate(tasks, pageSize) {
		rows := make([]Row, 0, len(page))
		for _, task := range page {
			rows = append(rows, taskRow(task))
		}
		doc.TaskPages = append(doc.TaskPages, TaskPage{
			Number:  i + 2,
			Heading: heading,
			Rows:    rows,
		})
	}
	return doc
}

func taskRow(task Task) Row {
	description := task.Description
	if task.Type == worklog.TypeHoliday || task.Type == worklog.TypeWeekend {
		description = string(task.Type)
	}
	return Row{
		Date:        task.Date.Format(rowDateLayout),
		Description: description,
		Duration:    task.Duration,
	}
}

func narrative(title, body string) Section {
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("No %s specified.", strings.ToLower(title))
	}
	return Section{Title: title, Body: body}
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return missingValue
	}
	return value
}
