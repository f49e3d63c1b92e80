package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/specialistvlad/suitegrid/internal/baseline"
	"github.com/specialistvlad/suitegrid/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD787"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

type column struct {
	title string
	width int
}

// Render writes a styled table of steps and tasks followed by the summary.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s / %s", r.Component, r.Suite)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  run %s  cores %d/%d", r.RunID, r.Bounds.TargetCores, r.Available)))
	b.WriteString("\n\n")

	pathWidth := 4
	for _, s := range r.Steps {
		pathWidth = max(pathWidth, len(s.Path))
	}
	for _, t := range r.Tasks {
		pathWidth = max(pathWidth, len(t.Path))
	}
	pathWidth += 2

	stepCols := []column{{"STEP", pathWidth}, {"KIND", 10}, {"STATE", 9}, {"CORES", 7}, {"TIME", 10}, {"BASELINE", 10}, {"NOTE", 0}}
	b.WriteString(header(stepCols))
	for _, s := range r.Steps {
		b.WriteString(row(stepCols, []string{
			s.Path, string(s.Kind), state(s.State), fmt.Sprint(s.Cores), duration(s.Duration), baselineCell(s.Baseline), note(s),
		}))
	}

	b.WriteString("\n")
	taskCols := []column{{"TASK", pathWidth}, {"STATE", 9}, {"STEPS", 7}, {"TIME", 10}, {"CORES", 0}}
	b.WriteString(header(taskCols))
	for _, t := range r.Tasks {
		b.WriteString(row(taskCols, []string{
			t.Path, state(t.State), fmt.Sprint(len(t.Steps)), duration(t.Duration),
			fmt.Sprintf("%d (min %d)", t.Bounds.TargetCores, t.Bounds.MinCores),
		}))
	}

	sum := r.Summary
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"%s  tasks %d/%d  steps %d ok, %d failed, %d skipped  baseline %d pass, %d fail  %s",
		state(r.State), sum.TasksSucceeded, sum.Tasks,
		sum.StepsSucceeded, sum.StepsFailed, sum.StepsSkipped,
		sum.BaselinePassed, sum.BaselineFailed, duration(r.Duration),
	)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func header(cols []column) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = c.title
	}
	return line(cols, cells, headStyle)
}

func row(cols []column, cells []string) string {
	return line(cols, cells, lipgloss.NewStyle())
}

func line(cols []column, cells []string, style lipgloss.Style) string {
	var b strings.Builder
	for i, c := range cols {
		cell := style.Render(cells[i])
		if c.width > 0 {
			cell = lipgloss.NewStyle().Width(c.width).Render(cell)
		}
		b.WriteString(cell)
	}
	return strings.TrimRight(b.String(), " ") + "\n"
}

func state(s model.State) string {
	switch s {
	case model.StateSuccess:
		return okStyle.Render(string(s))
	case model.StateError:
		return failStyle.Render(string(s))
	default:
		return dimStyle.Render(string(s))
	}
}

func baselineCell(s baseline.Status) string {
	switch s {
	case baseline.StatusPass:
		return okStyle.Render(string(s))
	case baseline.StatusFail:
		return failStyle.Render(string(s))
	default:
		return dimStyle.Render("-")
	}
}

func note(s *StepRecord) string {
	switch {
	case s.Skipped():
		return dimStyle.Render("skipped: upstream " + s.SkippedBecause + " failed")
	case s.Error != "":
		return failStyle.Render(s.ErrorClass + ": " + s.Error)
	case s.BaselineError != "":
		return failStyle.Render(s.BaselineError)
	default:
		return ""
	}
}

func duration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
