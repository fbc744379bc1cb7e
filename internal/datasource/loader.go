// Package datasource loads tabular test data from CSV files, JSON files
// and SQL queries into immutable record sets. Loading happens once at
// scenario initialization; the resulting RecordSet is shared read-only
// across all workers for the lifetime of the run.
package datasource

import (
	"context"
	"fmt"
	"strings"
)

// Kind selects the backend a Descriptor points at.
type Kind string

const (
	KindCSV      Kind = "csv"
	KindJSON     Kind = "json"
	KindDatabase Kind = "database"
)

// supportedKinds is the set enumerated in ErrUnsupported messages.
var supportedKinds = []Kind{KindCSV, KindJSON, KindDatabase}

// Descriptor names one data source for one scenario.
type Descriptor struct {
	Kind Kind

	// File-backed sources.
	Path string

	// Query-backed sources.
	Provider string
	DSN      string
	Query    string
}

// Load reads the described source into a RecordSet. It opens exactly one
// file handle or connection, closes it before returning, and never caches
// across calls.
func Load(ctx context.Context, d Descriptor) (*RecordSet, error) {
	switch Kind(strings.ToLower(string(d.Kind))) {
	case KindCSV:
		return loadCSV(d.Path)
	case KindJSON:
		return loadJSON(d.Path)
	case KindDatabase:
		return loadDatabase(ctx, d)
	default:
		return nil, fmt.Errorf("%w: kind %q (supported kinds: %s)",
			ErrUnsupported, d.Kind, kindList())
	}
}

func kindList() string {
	names := make([]string, len(supportedKinds))
	for i, k := range supportedKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
