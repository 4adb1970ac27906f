package workouts

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Window is the date range used to admit records into any aggregate.
// Start is inclusive, End is exclusive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DefaultWindow covers the 2023 calendar year.
var DefaultWindow = YearWindow(2023)

// YearWindow returns the window spanning the whole given calendar year.
func YearWindow(year int) Window {
	return Window{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (w Window) Contains(date time.Time) bool {
	return !date.Before(w.Start) && date.Before(w.End)
}

// Year returns the calendar year when the window spans exactly one, and false otherwise.
func (w Window) Year() (int, bool) {
	yw := YearWindow(w.Start.Year())
	if w.Start.Equal(yw.Start) && w.End.Equal(yw.End) {
		return w.Start.Year(), true
	}
	return 0, false
}

// Label is used in captions, e.g. "2023" or "2023-03-01 to 2023-06-01".
func (w Window) Label() string {
	if year, ok := w.Year(); ok {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%s to %s", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

// WorkoutDate parses the date part (first space separated token) of the record timestamp.
// The date is returned as midnight UTC, no zone adjustment is applied.
func WorkoutDate(r Record) (time.Time, error) {
	ts := strings.TrimSpace(r.Timestamp())
	if ts == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	datePart, _, _ := strings.Cut(ts, " ")
	date, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, err)
	}
	return date, nil
}

// FilterByWindow keeps, in their original order, the records whose workout date lies in the window.
// Records with a missing or unparseable timestamp are dropped.
func FilterByWindow(records []Record, window Window) []Record {
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		date, err := WorkoutDate(r)
		if err != nil {
			continue
		}
		if window.Contains(date) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ParseWindow builds a window from two "YYYY-MM-DD" dates, from inclusive and to exclusive.
func ParseWindow(from, to string) (Window, error) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(from))
	if err != nil {
		return Window{}, fmt.Errorf("parse window start: %w", err)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(to))
	if err != nil {
		return Window{}, fmt.Errorf("parse window end: %w", err)
	}
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("invalid window %s: end must be after start", w)
	}
	return nil
}
