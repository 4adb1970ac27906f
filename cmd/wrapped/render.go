package main

import (
	"fmt"
	"strings"

	"github.com/2beens/workoutwrapped/internal/workouts"

	"github.com/charmbracelet/lipgloss"
)

const maxBarWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))

	chartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FD7FF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BCBCBC"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87D787"))

	captionStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#FFD75F"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF5F87")).
			Padding(0, 1)
)

func renderReport(source string, report *workouts.Report) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Your %s Wrapped", report.Window.Label())))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf(
		"%s: %d of %d workouts in %s, hours in %s",
		source, report.TotalWorkouts, report.UploadedRecords, report.Window, report.TimeZone,
	)))
	sb.WriteString("\n")

	if report.NotEnoughData {
		sb.WriteString("\n")
		sb.WriteString(captionStyle.Render("Not enough data for a year in review"))
		return boxStyle.Render(sb.String())
	}

	for _, chart := range []workouts.Chart{
		report.Charts.WorkoutMinutes,
		report.Charts.FavoriteInstructors,
		report.Charts.FavoriteDisciplines,
		report.Charts.TotalDistance,
		report.Charts.FavoriteTimesOfDay,
	} {
		sb.WriteString("\n")
		sb.WriteString(renderChart(chart))
	}

	if report.Closing != "" {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render(report.Closing))
	}

	return boxStyle.Render(sb.String())
}

func renderChart(chart workouts.Chart) string {
	var sb strings.Builder
	sb.WriteString(chartTitleStyle.Render(chart.Title))
	sb.WriteString("\n")

	if chart.NotEnoughData {
		sb.WriteString(mutedStyle.Render("  not enough data"))
		sb.WriteString("\n")
		return sb.String()
	}

	labelWidth, maxValue := 0, 0
	for i, label := range chart.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(label))
		maxValue = max(maxValue, chart.Values[i])
	}

	for i, label := range chart.Labels {
		value := chart.Values[i]
		sb.WriteString("  ")
		sb.WriteString(labelStyle.Render(padRight(label, labelWidth)))
		sb.WriteString(" ")
		sb.WriteString(barStyle.Render(bar(value, maxValue)))
		sb.WriteString(fmt.Sprintf(" %d %s\n", value, chart.Unit))
	}

	for _, caption := range chart.Captions {
		sb.WriteString(captionStyle.Render(caption))
		sb.WriteString("\n")
	}
	return sb.String()
}

// bar scales value against maxValue; any positive value gets at least one block.
func bar(value, maxValue int) string {
	if value <= 0 || maxValue <= 0 {
		return ""
	}
	width := value * maxBarWidth / maxValue
	if width == 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
