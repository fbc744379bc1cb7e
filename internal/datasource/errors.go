package datasource

import "errors"

// Load failures are fatal at scenario initialization: running traffic
// against missing or empty data would silently produce meaningless
// results, so callers are expected to abort the scenario.
var (
	// ErrNotFound indicates the backing file or table does not exist.
	ErrNotFound = errors.New("data source not found")

	// ErrSchema indicates the source has no header row or the query
	// returned no columns.
	ErrSchema = errors.New("data source has no columns")

	// ErrEmpty indicates the source produced zero data rows.
	ErrEmpty = errors.New("data source produced no rows")

	// ErrUnsupported indicates an unknown source kind or provider name.
	ErrUnsupported = errors.New("unsupported data source")
)
