package workouts

import (
	"sort"
)

// DefaultTopN is the number of entries kept by top-N rankings.
const DefaultTopN = 5

// Ranked is a single (label, value) pair of an aggregation result.
type Ranked struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// CountBy counts the occurrences of each distinct non-empty field value.
func CountBy(records []Record, field Field) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if v := field(r); v != "" {
			counts[v]++
		}
	}
	return counts
}

// Rank orders the counts by value descending. Equal values are ordered by label,
// so the result does not depend on map iteration order.
func Rank(counts map[string]int) []Ranked {
	ranked := make([]Ranked, 0, len(counts))
	for label, value := range counts {
		ranked = append(ranked, Ranked{Label: label, Value: value})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value == ranked[j].Value {
			return ranked[i].Label < ranked[j].Label
		}
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}

// Top truncates a ranking to its first n entries; n <= 0 means DefaultTopN.
func Top(ranked []Ranked, n int) []Ranked {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}

// TopN returns the n most frequent non-empty values of the field.
func TopN(records []Record, field Field, n int) []Ranked {
	return Top(Rank(CountBy(records, field)), n)
}

// Favorite returns the first entry of a ranking, or ErrNotEnoughData if it is empty.
func Favorite(ranked []Ranked) (Ranked, error) {
	if len(ranked) == 0 {
		return Ranked{}, ErrNotEnoughData
	}
	return ranked[0], nil
}

// Labels and Values split a ranking into the parallel sequences a chart is drawn from.
func Labels(ranked []Ranked) []string {
	labels := make([]string, len(ranked))
	for i, r := range ranked {
		labels[i] = r.Label
	}
	return labels
}

func Values(ranked []Ranked) []int {
	values := make([]int, len(ranked))
	for i, r := range ranked {
		values[i] = r.Value
	}
	return values
}
