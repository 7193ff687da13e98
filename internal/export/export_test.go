package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricesync/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestOutputPaths(t *testing.T) {
	at := time.Date(2024, 3, 7, 14, 5, 9, 0, time.UTC)
	p := OutputPaths("out", "Updated Prices to be uploaded", "Create these Products", at)

	assert.Equal(t, filepath.Join("out", "Updated Prices to be uploaded_20240307-140509.csv"), p.Updated)
	assert.Equal(t, filepath.Join("out", "Create these Products_20240307-140509.csv"), p.Create)
}

func TestWriteCatalogCSV(t *testing.T) {
	columns := []string{"ID", "Desc1", "Desc2", "LIST PRICE", "Vendor"}
	rows := []model.CatalogRow{
		{
			ID:        42,
			Desc:      [5]string{"PR205TL-PN", `1 1/4" knob`},
			ListPrice: model.ParsePrice("45"),
			Extra:     map[string]string{"Vendor": "HS"},
		},
		{ID: 43, Desc: [5]string{"ZZ900"}},
	}

	path := filepath.Join(t.TempDir(), "updated.csv")
	require.NoError(t, WriteCatalogCSV(path, columns, rows))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, columns, records[0])
	assert.Equal(t, []string{"42", "PR205TL-PN", `1 1/4" knob`, "45.00", "HS"}, records[1])
	assert.Equal(t, []string{"43", "ZZ900", "", "", ""}, records[2])
}

func TestWriteUncreatedCSV(t *testing.T) {
	recs := []model.SupplierRecord{
		{
			Sheet:   "Cabinet Knobs",
			Columns: []string{"Item #", "PRICE"},
			Values:  map[string]string{"Item #": "XY999-BN", "PRICE": "30.00"},
		},
		{
			Sheet:   "Accessories",
			Columns: []string{"Item", "Description", "PRICE"},
			Values:  map[string]string{"Item": "AC1", "Description": "Stop", "PRICE": "5"},
		},
	}

	path := filepath.Join(t.TempDir(), "create.csv")
	require.NoError(t, WriteUncreatedCSV(path, recs))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"SHEET", "Item #", "PRICE", "Item", "Description"}, records[0])
	assert.Equal(t, []string{"Cabinet Knobs", "XY999-BN", "30.00", "", ""}, records[1])
	assert.Equal(t, []string{"Accessories", "", "5", "AC1", "Stop"}, records[2])
}

func TestWriteUncreatedCSV_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "create.csv")
	require.NoError(t, WriteUncreatedCSV(path, nil))

	records := readCSV(t, path)
	assert.Equal(t, [][]string{{"SHEET"}}, records)
}

func TestWriteCatalogCSV_BadPath(t *testing.T) {
	err := WriteCatalogCSV(filepath.Join(t.TempDir(), "missing", "x.csv"), []string{"ID"}, nil)
	assert.Error(t, err)
}
