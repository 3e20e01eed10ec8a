package record

import (
	"sort"
	"strconv"
	"strings"
)

// Search returns the records having any field that contains query, ignoring case.
// An empty query matches everything. Matches keep their input order.
func Search(query string, records []AcquisitionRecord) []AcquisitionRecord {
	query = strings.ToLower(query)
	matches := make([]AcquisitionRecord, 0, len(records))
	for _, r := range records {
		if matchesQuery(r, query) {
			matches = append(matches, r)
		}
	}
	return matches
}

func matchesQuery(r AcquisitionRecord, query string) bool {
	if query == "" {
		return true
	}
	for _, v := range r.Values() {
		if strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

/* Returns a sorted copy of records. Values that both parse as numbers compare numerically. */
func SortRecords(records []AcquisitionRecord, sortBy, sortDirection string) []AcquisitionRecord {
	sorted := make([]AcquisitionRecord, len(records))
	copy(sorted, records)
	if sortBy == "" {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := sorted[i].Field(sortBy)
		b, _ := sorted[j].Field(sortBy)
		c := compareValues(a, b)
		if sortDirection == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
