package datasource

import (
	"encoding/csv"
	"fmt"
	"os"
)

// loadCSV reads a comma-delimited UTF-8 file. The first row is the header
// and defines column names; every subsequent row becomes one record.
func loadCSV(path string) (*RecordSet, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open CSV file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrSchema, path)
	}
	header := rows[0]
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: %s has an empty header row", ErrSchema, path)
	}
	dataRows := rows[1:]
	if len(dataRows) == 0 {
		return nil, fmt.Errorf("%w: %s has a header but no data rows", ErrEmpty, path)
	}

	records := make([]Record, 0, len(dataRows))
	for _, row := range dataRows {
		records = append(records, NewRecord(header, row))
	}
	return NewRecordSet(path, records), nil
}
