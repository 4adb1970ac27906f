package workouts

import (
	"time"
)

// Chart is what a chart renderer is handed for one statistic: parallel labels and values,
// plus the caption lines shown next to it. The renderer owns every visual decision.
type Chart struct {
	Title    string   `json:"title"`
	Labels   []string `json:"labels"`
	Values   []int    `json:"values"`
	Captions []string `json:"captions,omitempty"`
	// Unit is the tooltip suffix, e.g. "workouts" or "miles".
	Unit string `json:"unit"`
	// NotEnoughData is set when the chart has nothing to show; Labels and Values are then empty.
	NotEnoughData bool `json:"notEnoughData"`
}

func notEnoughDataChart(title, unit string) Chart {
	return Chart{
		Title:         title,
		Labels:        []string{},
		Values:        []int{},
		Unit:          unit,
		NotEnoughData: true,
	}
}

// Highlights are the headline values of a report. Empty strings mean not enough data.
type Highlights struct {
	FavoriteInstructor string `json:"favoriteInstructor,omitempty"`
	FavoriteDiscipline string `json:"favoriteDiscipline,omitempty"`
	FavoriteClassType  string `json:"favoriteClassType,omitempty"`
	FavoriteTimeOfDay  string `json:"favoriteTimeOfDay,omitempty"`
	TotalMinutes       int    `json:"totalMinutes"`
	TotalDistance      int    `json:"totalDistance"`
}

type Charts struct {
	WorkoutMinutes      Chart `json:"workoutMinutes"`
	FavoriteInstructors Chart `json:"favoriteInstructors"`
	FavoriteDisciplines Chart `json:"favoriteDisciplines"`
	TotalDistance       Chart `json:"totalDistance"`
	FavoriteTimesOfDay  Chart `json:"favoriteTimesOfDay"`
}

// Report is the year in review derived from one upload.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Window      Window    `json:"window"`
	TimeZone    string    `json:"timeZone"`
	// UploadedRecords counts every parsed row, TotalWorkouts only the rows inside the window.
	UploadedRecords int        `json:"uploadedRecords"`
	TotalWorkouts   int        `json:"totalWorkouts"`
	NotEnoughData   bool       `json:"notEnoughData"`
	Highlights      Highlights `json:"highlights"`
	Charts          Charts     `json:"charts"`
	Closing         string     `json:"closing,omitempty"`
}
