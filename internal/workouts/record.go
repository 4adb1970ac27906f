package workouts

// Column names of the workouts export, as they appear in the CSV header.
const (
	ColWorkoutTimestamp  = "Workout Timestamp"
	ColLiveOnDemand      = "Live/On-Demand"
	ColInstructorName    = "Instructor Name"
	ColLengthMinutes     = "Length (minutes)"
	ColFitnessDiscipline = "Fitness Discipline"
	ColType              = "Type"
	ColTitle             = "Title"
	ColClassTimestamp    = "Class Timestamp"
	ColTotalOutput       = "Total Output"
	ColAvgWatts          = "Avg. Watts"
	ColAvgResistance     = "Avg. Resistance"
	ColAvgCadence        = "Avg. Cadence (RPM)"
	ColAvgSpeed          = "Avg. Speed (mph)"
	ColDistanceMiles     = "Distance (mi)"
	ColCaloriesBurned    = "Calories Burned"
	ColAvgHeartrate      = "Avg. Heartrate"
	ColAvgIncline        = "Avg. Incline"
	ColAvgPace           = "Avg. Pace (min/mi)"
)

// Record is a single row of the uploaded export, keyed by header name.
// All values are kept as free text; a missing column reads as "".
type Record map[string]string

// Field extracts a single value out of a record.
type Field func(Record) string

// Column returns a Field reading the given header name.
func Column(name string) Field {
	return func(r Record) string {
		return r[name]
	}
}

var (
	FieldInstructor = Column(ColInstructorName)
	FieldDiscipline = Column(ColFitnessDiscipline)
	FieldClassType  = Column(ColType)
	FieldMinutes    = Column(ColLengthMinutes)
	FieldDistance   = Column(ColDistanceMiles)
)

func (r Record) Timestamp() string { return r[ColWorkoutTimestamp] }
func (r Record) InstructorName() string { return r[ColInstructorName] }
func (r Record) FitnessDiscipline() string { return r[ColFitnessDiscipline] }
func (r Record) ClassType() string { return r[ColType] }
func (r Record) LengthMinutes() string { return r[ColLengthMinutes] }
func (r Record) DistanceMiles() string { return r[ColDistanceMiles] }
