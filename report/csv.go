package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes the final table as CSV, header first. Amounts use a dot
// decimal separator.
func WriteCSV(w io.Writer, r Report) error {
	if err := gocsv.Marshal(r.Rows(), w); err != nil {
		return fmt.Errorf("report: write csv: %w", err)
	}
	return nil
}

// SaveCSV writes the CSV export to a file.
func SaveCSV(path string, r Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := WriteCSV(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
