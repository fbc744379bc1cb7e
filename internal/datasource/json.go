package datasource

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// loadJSON reads a file containing JSON test data. The usual shape is an
// array of flat objects; each object becomes one record and its keys
// define the column names. A top-level object holding the array under a
// "records" or "data" key is unwrapped, and a bare flat object loads as
// a single record. Non-string scalar values are kept in their literal
// JSON rendering.
func loadJSON(path string) (*RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read JSON file %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrSchema, path)
	}
	parsed := gjson.ParseBytes(data)
	if parsed.IsObject() {
		unwrapped := false
		for _, key := range []string{"records", "data"} {
			if inner := parsed.Get(key); inner.IsArray() {
				parsed = inner
				unwrapped = true
				break
			}
		}
		if !unwrapped {
			// A flat object is one record.
			parsed = gjson.Parse("[" + parsed.Raw + "]")
		}
	}
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: %s must contain a JSON array of objects", ErrSchema, path)
	}

	var records []Record
	var badElement error
	parsed.ForEach(func(_, element gjson.Result) bool {
		if !element.IsObject() {
			badElement = fmt.Errorf("%w: %s element %d is not an object", ErrSchema, path, len(records))
			return false
		}
		var columns, values []string
		element.ForEach(func(key, value gjson.Result) bool {
			columns = append(columns, key.String())
			values = append(values, value.String())
			return true
		})
		records = append(records, NewRecord(columns, values))
		return true
	})
	if badElement != nil {
		return nil, badElement
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s contains an empty array", ErrEmpty, path)
	}
	return NewRecordSet(path, records), nil
}
