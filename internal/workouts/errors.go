package workouts

import "errors"

var (
	// ErrNotCSV is returned when the uploaded document is not of the text/csv media type.
	ErrNotCSV = errors.New("please upload a CSV file")
	// ErrEmptyInput is returned when the uploaded document has no header row.
	ErrEmptyInput = errors.New("empty input, header row missing")
	// ErrNotEnoughData signals that an aggregate has no value to report.
	ErrNotEnoughData = errors.New("not enough data")
	// ErrInvalidTimestamp is returned for timestamps not in the "YYYY-MM-DD HH:MM (ZONE)" layout.
	ErrInvalidTimestamp = errors.New("invalid workout timestamp")
)
