package output

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// WriteFile renders the report into path, holding an advisory lock for
// the duration of the write so concurrent runs appending to a shared
// report location do not interleave.
func WriteFile(path string, report Report, format Format) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking report file: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening report file: %w", err)
	}

	if err := report.Render(f, format); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}
