package metrics

import (
	"reflect"
	"testing"
)

func TestFlattenStatusBuckets(t *testing.T) {
	tests := []struct {
		name    string
		buckets map[string]map[string]int
		want    []StatusBucket
	}{
		{
			name:    "nil buckets",
			buckets: nil,
			want:    nil,
		},
		{
			name:    "empty buckets",
			buckets: map[string]map[string]int{},
			want:    nil,
		},
		{
			name: "single bucket",
			buckets: map[string]map[string]int{
				"fetch-post": {"200": 10},
			},
			want: []StatusBucket{
				{Scenario: "fetch-post", Category: "200", Count: 10},
			},
		},
		{
			name: "multiple buckets sorted by count desc",
			buckets: map[string]map[string]int{
				"fetch-post": {
					"200": 10,
					"500": 5,
				},
				"create-post": {
					"201": 20,
				},
			},
			want: []StatusBucket{
				{Scenario: "create-post", Category: "201", Count: 20},
				{Scenario: "fetch-post", Category: "200", Count: 10},
				{Scenario: "fetch-post", Category: "500", Count: 5},
			},
		},
		{
			name: "tie breaking by scenario then category",
			buckets: map[string]map[string]int{
				"fetch-post": {
					"200":     10,
					"TIMEOUT": 10,
				},
				"create-post": {
					"201": 10,
				},
			},
			want: []StatusBucket{
				{Scenario: "create-post", Category: "201", Count: 10},
				{Scenario: "fetch-post", Category: "200", Count: 10},
				{Scenario: "fetch-post", Category: "TIMEOUT", Count: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlattenStatusBuckets(tt.buckets)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FlattenStatusBuckets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"TIMEOUT", "Timed out"},
		{"UNKNOWN", "Unknown failure"},
		{"", "Unknown failure"},
		{"200", "HTTP 200 OK"},
		{"404", "HTTP 404 Not Found"},
		{"599", "HTTP 599"},
		{"OP_ERROR", "Op Error"},
		{"ERROR", "Error"},
	}
	for _, tt := range tests {
		if got := CategoryLabel(tt.category); got != tt.want {
			t.Errorf("CategoryLabel(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}
