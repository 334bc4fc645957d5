package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#40c463"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	// Heat levels for the habit matrix, light to intense.
	heatStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#9be9a8")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#40c463")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#216e39")),
	}
)

const nameColumnWidth = 18

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Good renders a positive highlight.
func Good(s string) string {
	return goodStyle.Render(s)
}

// ProgressBar draws percent (clamped to [0,100]) as a bar of width cells.
func ProgressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return barStyle.Render(strings.Repeat("█", filled)) + Muted(strings.Repeat("░", width-filled))
}

// HeatCell draws one matrix day. Empty days are a dot; completed days get
// a block shaded by the logged intensity.
func HeatCell(cell metrics.HabitCell) string {
	if !cell.Completed {
		return Muted("·")
	}
	level := 0
	switch {
	case cell.Intensity >= 0.9:
		level = 2
	case cell.Intensity >= 0.7:
		level = 1
	}
	return heatStyles[level].Render("■")
}

// RenderHabitMatrix lays the matrix out as one line per habit.
func RenderHabitMatrix(m metrics.HabitMatrix) string {
	var b strings.Builder

	b.WriteString(strings.Repeat(" ", nameColumnWidth+1))
	for _, d := range m.Days {
		b.WriteString(d.Weekday().String()[:2] + " ")
	}
	b.WriteString(Muted(" streak  best  rate"))
	b.WriteString("\n")

	for _, row := range m.Rows {
		b.WriteString(padRight(truncate(row.Name, nameColumnWidth), nameColumnWidth) + " ")
		for _, cell := range row.Cells {
			b.WriteString(HeatCell(cell) + "  ")
		}
		fmt.Fprintf(&b, "%6d %5d %4d%%\n", row.CurrentStreak, row.BestStreak, row.CompletionRate)
	}
	return b.String()
}

// RenderSeries draws a horizontal bar per point, scaled to the largest value.
func RenderSeries(s metrics.Series, width int) string {
	peak := 0
	keyWidth := 0
	for _, p := range s {
		peak = max(peak, p.Value)
		keyWidth = max(keyWidth, len(p.Key))
	}

	var b strings.Builder
	for _, p := range s {
		bar := 0
		if peak > 0 {
			bar = p.Value * width / peak
		}
		fmt.Fprintf(&b, "  %s %s %d\n", padRight(p.Key, keyWidth), barStyle.Render(strings.Repeat("▇", bar)), p.Value)
	}
	return b.String()
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
