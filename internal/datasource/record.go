package datasource

import "strings"

// Record is a single row of tabular data. Column lookups are
// case-insensitive regardless of how the source spelled the header.
// Records are immutable once loaded and safe to share across goroutines.
type Record struct {
	columns []string
	values  map[string]string
}

// NewRecord builds a Record from parallel column/value slices.
// Duplicate column names keep the last value.
func NewRecord(columns, values []string) Record {
	cols := make([]string, 0, len(columns))
	vals := make(map[string]string, len(columns))
	for i, col := range columns {
		key := strings.ToLower(col)
		if _, seen := vals[key]; !seen {
			cols = append(cols, col)
		}
		if i < len(values) {
			vals[key] = values[i]
		} else {
			vals[key] = ""
		}
	}
	return Record{columns: cols, values: vals}
}

// Get returns the value for the named column, matched case-insensitively.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.values[strings.ToLower(name)]
	return v, ok
}

// Columns returns the column names in load order, original casing.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.values)
}

// RecordSet is the ordered, non-empty collection of records loaded from
// one source for one scenario.
type RecordSet struct {
	records []Record
	source  string
}

// NewRecordSet wraps loaded records. Emptiness is enforced where it
// matters: loaders reject zero-row sources and feeds reject empty sets.
func NewRecordSet(source string, records []Record) *RecordSet {
	return &RecordSet{records: records, source: source}
}

// Len returns the number of records in the set.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the record at index i.
func (s *RecordSet) At(i int) Record {
	return s.records[i]
}

// Source describes where the set was loaded from, for diagnostics.
func (s *RecordSet) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}
