package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/example/internlog/internal/worklog"
)

var (
	colorHeader  = color.New(color.Bold)
	colorWork    = color.New(color.FgCyan)
	colorHoliday = color.New(color.FgMagenta)
	colorWeekend = color.New(color.FgWhite, color.Faint)
	colorOK      = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgYellow)
	colorMuted   = color.New(color.FgWhite, color.Faint)
)

const defaultWidth = 80

func formatHeader(s string) string { return colorHeader.Sprint(s) }
func formatOK(s string) string     { return colorOK.Sprint(s) }
func formatWarn(s string) string   { return colorWarn.Sprint(s) }
func formatMuted(s string) string  { return colorMuted.Sprint(s) }

func formatType(taskType worklog.TaskType) string {
	switch taskType {
	case worklog.TypeWork:
		return colorWork.Sprint(string(taskType))
	case worklog.TypeHoliday:
		return colorHoliday.Sprint(string(taskType))
	case worklog.TypeWeekend:
		return colorWeekend.Sprint(string(taskType))
	}
	return string(taskType)
}

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)

	boxTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Width(16)
)

// renderBox draws a titled key/value panel no wider than the terminal.
func renderBox(w io.Writer, title string, rows [][2]string) string {
	lines := []string{boxTitleStyle.Render(title)}
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), row[1]))
	}
	style := boxStyle
	if width := terminalWidth(w); width < 48 {
		style = style.Width(width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
