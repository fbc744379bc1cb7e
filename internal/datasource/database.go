package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
)

// ProviderFunc opens a database handle for a DSN. Providers are looked up
// by name at load time, so adding a backend is a registration, not an
// edit to the load path.
type ProviderFunc func(dsn string) (*sql.DB, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFunc{
		"mysql": func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}
)

// RegisterProvider makes a named database provider available to
// query-backed descriptors. Registering an existing name replaces it.
func RegisterProvider(name string, open ProviderFunc) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[strings.ToLower(name)] = open
}

func lookupProvider(name string) (ProviderFunc, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	open, ok := providers[strings.ToLower(name)]
	return open, ok
}

func providerList() string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// loadDatabase runs the descriptor's query against the named provider.
// Each result row becomes one record using the result's column names;
// NULL values map to the empty string.
func loadDatabase(ctx context.Context, d Descriptor) (*RecordSet, error) {
	open, ok := lookupProvider(d.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: database provider %q (supported providers: %s)",
			ErrUnsupported, d.Provider, providerList())
	}

	db, err := open(d.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", d.Provider, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, d.Query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.Provider, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: query returned no columns", ErrSchema)
	}

	var records []Record
	scanned := make([]sql.NullString, len(columns))
	ptrs := make([]any, len(columns))
	for i := range scanned {
		ptrs[i] = &scanned[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		values := make([]string, len(columns))
		for i, v := range scanned {
			if v.Valid {
				values[i] = v.String
			}
		}
		records = append(records, NewRecord(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: query produced an empty result", ErrEmpty)
	}

	source := fmt.Sprintf("%s query", d.Provider)
	return NewRecordSet(source, records), nil
}
