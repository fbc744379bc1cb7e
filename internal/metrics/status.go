package metrics

import "sort"

// StatusBucket represents the aggregated count for a scenario/category pair.
type StatusBucket struct {
	Scenario string `json:"scenario" yaml:"scenario"`
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// FlattenStatusBuckets converts a nested scenario->category map into a sorted slice of StatusBucket rows.
// Rows are sorted by descending count, then by scenario/category for stability.
func FlattenStatusBuckets(buckets map[string]map[string]int) []StatusBucket {
	if len(buckets) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0)
	for scenario, categories := range buckets {
		for category, count := range categories {
			rows = append(rows, StatusBucket{Scenario: scenario, Category: category, Count: count})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			if rows[i].Scenario == rows[j].Scenario {
				return rows[i].Category < rows[j].Category
			}
			return rows[i].Scenario < rows[j].Scenario
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
