package testing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// WorkoutsCSVHeader is the header row of a workouts export.
var WorkoutsCSVHeader = []string{
	"Workout Timestamp", "Live/On-Demand", "Instructor Name", "Length (minutes)",
	"Fitness Discipline", "Type", "Title", "Class Timestamp", "Total Output",
	"Avg. Watts", "Avg. Resistance", "Avg. Cadence (RPM)", "Avg. Speed (mph)",
	"Distance (mi)", "Calories Burned", "Avg. Heartrate", "Avg. Incline", "Avg. Pace (min/mi)",
}

var (
	fakeDisciplines = []string{"Cycling", "Running", "Walking", "Strength", "Yoga", "Stretching"}
	fakeClassTypes  = []string{"Intervals", "Climb", "Low Impact", "Power Zone", "Music", ""}
	fakeZones       = []string{"(EST)", "(EDT)", "(PST)", "(UTC)", "(-04)", "(+01)", "(XYZ)"}
)

// FakeWorkoutRow returns a random export row whose workout took place in the given year.
func FakeWorkoutRow(faker *gofakeit.Faker, year int) []string {
	date := faker.DateRange(
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 23, 59, 0, 0, time.UTC),
	)
	timestamp := date.Format("2006-01-02 15:04") + " " + faker.RandomString(fakeZones)

	return []string{
		timestamp,
		faker.RandomString([]string{"Live", "On Demand"}),
		faker.RandomString([]string{"Alex", "Robin", "Sam", "Jess", "Matt", "Cody", ""}),
		fmt.Sprintf("%d", faker.IntRange(5, 90)),
		faker.RandomString(fakeDisciplines),
		faker.RandomString(fakeClassTypes),
		faker.Sentence(3),
		timestamp,
		fmt.Sprintf("%d", faker.IntRange(0, 900)),
		fmt.Sprintf("%d", faker.IntRange(0, 300)),
		fmt.Sprintf("%.2f%%", faker.Float64Range(20, 60)),
		fmt.Sprintf("%d", faker.IntRange(60, 110)),
		fmt.Sprintf("%.2f", faker.Float64Range(10, 25)),
		fmt.Sprintf("%.2f", faker.Float64Range(0, 30)),
		fmt.Sprintf("%d", faker.IntRange(50, 1200)),
		fmt.Sprintf("%.2f", faker.Float64Range(90, 180)),
		"",
		"",
	}
}

// FakeWorkoutsCSV renders a header and rows into CSV bytes.
func FakeWorkoutsCSV(rows [][]string) []byte {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(WorkoutsCSVHeader)
	_ = w.WriteAll(rows)
	return buf.Bytes()
}
