// Package export writes reconciliation outputs as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricesync/internal/model"
)

// SheetColumn is the leading column of the uncreated items file.
const SheetColumn = "SHEET"

// timestampLayout formats the run time in output file names.
const timestampLayout = "20060102-150405"

// Paths holds the output file locations of one run.
type Paths struct {
	Updated string
	Create  string
}

// OutputPaths returns the timestamped output files for a run at t.
func OutputPaths(dir, updatedPrefix, createPrefix string, t time.Time) Paths {
	stamp := t.Format(timestampLayout)
	return Paths{
		Updated: filepath.Join(dir, fmt.Sprintf("%s_%s.csv", updatedPrefix, stamp)),
		Create:  filepath.Join(dir, fmt.Sprintf("%s_%s.csv", createPrefix, stamp)),
	}
}

// WriteCatalogCSV writes catalog rows using the catalog's column order.
func WriteCatalogCSV(path string, columns []string, rows []model.CatalogRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Values(columns))
	}
	return writeCSV(path, columns, records)
}

// WriteUncreatedCSV writes supplier records under the union of their
// columns, in first-seen order, after the sheet name.
func WriteUncreatedCSV(path string, recs []model.SupplierRecord) error {
	header := UncreatedColumns(recs)
	records := make([][]string, 0, len(recs))
	for _, rec := range recs {
		out := make([]string, len(header))
		out[0] = rec.Sheet
		for i, col := range header[1:] {
			out[i+1] = rec.Values[col]
		}
		records = append(records, out)
	}
	return writeCSV(path, header, records)
}

// UncreatedColumns returns the header of the uncreated items file.
func UncreatedColumns(recs []model.SupplierRecord) []string {
	header := []string{SheetColumn}
	seen := map[string]bool{SheetColumn: true}
	for _, rec := range recs {
		for _, col := range rec.Columns {
			if col == "" || seen[col] {
				continue
			}
			seen[col] = true
			header = append(header, col)
		}
	}
	return header
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	if err := w.WriteAll(records); err != nil {
		return eris.Wrap(err, "export: write rows")
	}
	if err := f.Sync(); err != nil {
		return eris.Wrap(err, "export: sync")
	}
	return nil
}
