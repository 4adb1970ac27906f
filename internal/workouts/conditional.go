package workouts

// CountWhere counts the non-empty values of secondary among the records whose
// primary value equals target (case sensitive).
func CountWhere(records []Record, primary Field, target string, secondary Field) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if primary(r) != target {
			continue
		}
		if v := secondary(r); v != "" {
			counts[v]++
		}
	}
	return counts
}

// TopWhere returns the most frequent secondary value among the records matching target,
// e.g. the favorite class type within the favorite discipline.
// ErrNotEnoughData is returned when no record matches.
func TopWhere(records []Record, primary Field, target string, secondary Field) (Ranked, error) {
	return Favorite(Rank(CountWhere(records, primary, target, secondary)))
}
