package workouts

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// MonthNames are the chart labels of month-bucketed sums, January first.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthlyTotals holds a numeric field summed per calendar month.
type MonthlyTotals struct {
	Sums [12]int `json:"sums"`
	// Total is the sum of all twelve buckets.
	Total int `json:"total"`
	// Records is the number of records that were bucketed.
	Records int `json:"records"`
}

// SumPerMonth sums the numeric field per calendar month of the workout date.
// Empty or non-numeric values count as zero. Records without a parseable date are skipped.
func SumPerMonth(records []Record, field Field) MonthlyTotals {
	var totals MonthlyTotals
	for _, r := range records {
		date, err := WorkoutDate(r)
		if err != nil {
			continue
		}
		v := ParseCount(field(r))
		totals.Sums[date.Month()-1] = addClamped(totals.Sums[date.Month()-1], v)
		totals.Total = addClamped(totals.Total, v)
		totals.Records++
	}
	return totals
}

// Values returns the twelve monthly sums as a slice.
func (m MonthlyTotals) Values() []int {
	values := make([]int, len(m.Sums))
	copy(values, m.Sums[:])
	return values
}

// ParseCount reads the leading integer of s, e.g. "8.52" -> 8.
// Empty, negative and non-numeric values are 0, values beyond the int range are math.MaxInt.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}

// addClamped adds two non-negative counts, saturating at math.MaxInt.
func addClamped(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
