package workouts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/workoutwrapped/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type AnalyzerParams struct {
	Window Window
	// Viewer is the location hours of day are reported in. Defaults to time.Local.
	Viewer *time.Location
	// TopN is the size of the ranked charts. Defaults to DefaultTopN.
	TopN int
}

// Analyzer derives the year in review charts from uploaded records.
type Analyzer struct {
	window Window
	viewer *time.Location
	topN   int
	now    func() time.Time
}

func NewAnalyzer(params AnalyzerParams) *Analyzer {
	if params.Window.Start.IsZero() && params.Window.End.IsZero() {
		params.Window = DefaultWindow
	}
	if params.Viewer == nil {
		params.Viewer = time.Local
	}
	if params.TopN <= 0 {
		params.TopN = DefaultTopN
	}
	return &Analyzer{
		window: params.Window,
		viewer: params.Viewer,
		topN:   params.TopN,
		now:    time.Now,
	}
}

func (a *Analyzer) Window() Window { return a.window }
func (a *Analyzer) Viewer() *time.Location { return a.viewer }
func (a *Analyzer) TopN() int { return a.topN }

// Analyze filters the records to the window once and runs every aggregator on that snapshot.
// A window without any workout yields a report whose charts are all flagged NotEnoughData.
func (a *Analyzer) Analyze(ctx context.Context, records []Record) (_ *Report, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.analyze")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := a.window.Validate(); err != nil {
		return nil, err
	}

	filtered := FilterByWindow(records, a.window)
	span.SetAttributes(
		attribute.Int("records.uploaded", len(records)),
		attribute.Int("records.in_window", len(filtered)),
		attribute.String("window", a.window.String()),
		attribute.String("viewer.tz", a.viewer.String()),
	)

	report := &Report{
		ID:              uuid.NewString(),
		GeneratedAt:     a.now().UTC(),
		Window:          a.window,
		TimeZone:        a.viewer.String(),
		UploadedRecords: len(records),
		TotalWorkouts:   len(filtered),
		NotEnoughData:   len(filtered) == 0,
	}

	report.Charts.WorkoutMinutes = a.WorkoutMinutes(filtered, &report.Highlights)
	report.Charts.FavoriteInstructors = a.FavoriteInstructors(filtered, &report.Highlights)
	report.Charts.FavoriteDisciplines = a.FavoriteDisciplines(filtered, &report.Highlights)
	report.Charts.TotalDistance = a.TotalDistance(filtered, &report.Highlights)
	report.Charts.FavoriteTimesOfDay = a.FavoriteTimesOfDay(filtered, &report.Highlights)

	if !report.NotEnoughData {
		if year, ok := a.window.Year(); ok {
			report.Closing = fmt.Sprintf(
				"You crushed %d! Can't wait to see what you accomplish in %d",
				year, year+1,
			)
		}
	}

	return report, nil
}

// WorkoutMinutes sums the workout length per month of the window.
func (a *Analyzer) WorkoutMinutes(filtered []Record, highlights *Highlights) Chart {
	const title, unit = "Workout Minutes", "minutes"
	if len(filtered) == 0 {
		return notEnoughDataChart(title, unit)
	}

	minutes := SumPerMonth(filtered, FieldMinutes)
	highlights.TotalMinutes = minutes.Total
	return Chart{
		Title:  title,
		Labels: append([]string(nil), MonthNames...),
		Values: minutes.Values(),
		Captions: []string{
			fmt.Sprintf(
				"Way to reach %d minutes over %d workouts in %s",
				minutes.Total, minutes.Records, a.window.Label(),
			),
		},
		Unit: unit,
	}
}

func (a *Analyzer) FavoriteInstructors(filtered []Record, highlights *Highlights) Chart {
	const title, unit = "Favorite Instructors", "workouts"
	instructors := TopN(filtered, FieldInstructor, a.topN)
	favorite, err := Favorite(instructors)
	if err != nil {
		return notEnoughDataChart(title, unit)
	}

	highlights.FavoriteInstructor = favorite.Label
	return Chart{
		Title:    title,
		Labels:   Labels(instructors),
		Values:   Values(instructors),
		Captions: []string{"Your favorite instructor was " + favorite.Label},
		Unit:     unit,
	}
}

// FavoriteDisciplines ranks the disciplines and reports the most common class type
// of the favorite one.
func (a *Analyzer) FavoriteDisciplines(filtered []Record, highlights *Highlights) Chart {
	const title, unit = "Favorite Discipline", "workouts"
	disciplines := TopN(filtered, FieldDiscipline, a.topN)
	favorite, err := Favorite(disciplines)
	if err != nil {
		return notEnoughDataChart(title, unit)
	}

	highlights.FavoriteDiscipline = favorite.Label
	caption := "Your favorite discipline was " + favorite.Label
	if classType, err := TopWhere(filtered, FieldDiscipline, favorite.Label, FieldClassType); err == nil {
		highlights.FavoriteClassType = classType.Label
		caption += " with a class type of " + classType.Label
	}

	return Chart{
		Title:    title,
		Labels:   Labels(disciplines),
		Values:   Values(disciplines),
		Captions: []string{caption},
		Unit:     unit,
	}
}

func (a *Analyzer) TotalDistance(filtered []Record, highlights *Highlights) Chart {
	const title, unit = "Total Distance", "miles"
	if len(filtered) == 0 {
		return notEnoughDataChart(title, unit)
	}

	distance := SumPerMonth(filtered, FieldDistance)
	highlights.TotalDistance = distance.Total
	return Chart{
		Title:    title,
		Labels:   append([]string(nil), MonthNames...),
		Values:   distance.Values(),
		Captions: []string{"You travelled " + strconv.Itoa(distance.Total) + " miles"},
		Unit:     unit,
	}
}

func (a *Analyzer) FavoriteTimesOfDay(filtered []Record, highlights *Highlights) Chart {
	const title, unit = "Favorite Time To Workout", "workouts"
	times := TopTimesOfDay(filtered, a.viewer, a.topN)
	favorite, err := Favorite(times)
	if err != nil {
		return notEnoughDataChart(title, unit)
	}

	highlights.FavoriteTimeOfDay = favorite.Label
	return Chart{
		Title:    title,
		Labels:   Labels(times),
		Values:   Values(times),
		Captions: []string{"And you loved working out at " + favorite.Label},
		Unit:     unit,
	}
}
