package workouts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disciplineRecord(discipline, classType string) Record {
	return Record{ColFitnessDiscipline: discipline, ColType: classType}
}

func TestCountWhere(t *testing.T) {
	records := []Record{
		disciplineRecord("Cycling", "Intervals"),
		disciplineRecord("Cycling", "Climb"),
		disciplineRecord("Cycling", "Intervals"),
		disciplineRecord("Cycling", ""),
		disciplineRecord("cycling", "Music"),
		disciplineRecord("Running", "Intervals"),
	}

	counts := CountWhere(records, FieldDiscipline, "Cycling", FieldClassType)
	assert.Equal(t, map[string]int{"Intervals": 2, "Climb": 1}, counts)

	top, err := TopWhere(records, FieldDiscipline, "Cycling", FieldClassType)
	require.NoError(t, err)
	assert.Equal(t, Ranked{Label: "Intervals", Value: 2}, top)

	// exact, case sensitive match on the primary value
	top, err = TopWhere(records, FieldDiscipline, "cycling", FieldClassType)
	require.NoError(t, err)
	assert.Equal(t, "Music", top.Label)
}

func TestTopWhere_None(t *testing.T) {
	records := []Record{
		disciplineRecord("Cycling", "Intervals"),
		disciplineRecord("Yoga", ""),
	}

	_, err := TopWhere(records, FieldDiscipline, "Rowing", FieldClassType)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	// matches exist, but all secondary values are empty
	_, err = TopWhere(records, FieldDiscipline, "Yoga", FieldClassType)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = TopWhere(nil, FieldDiscipline, "Cycling", FieldClassType)
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestTopWhere_TieBreak(t *testing.T) {
	records := []Record{
		disciplineRecord("Strength", "Upper Body"),
		disciplineRecord("Strength", "Core"),
	}
	top, err := TopWhere(records, FieldDiscipline, "Strength", FieldClassType)
	require.NoError(t, err)
	assert.Equal(t, "Core", top.Label)
}
