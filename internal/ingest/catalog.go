// Package ingest loads the catalog export and supplier price lists into model tables.
package ingest

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricesync/internal/fetcher"
	"github.com/sells-group/pricesync/internal/model"
)

// Header renames applied to the raw ERP export.
var catalogRenames = map[string]string{
	"DESC": "Desc5",
	"Sta":  model.ColStatus,
}

// CatalogOptions describes the layout of the catalog export.
type CatalogOptions struct {
	HeaderRow        int    // rows preceding the header row
	SkipDataRows     int    // rows discarded directly after the header
	EncodingFallback string // charset used when the file is not valid UTF-8
}

// DefaultCatalogOptions matches the ERP "All products information" export.
func DefaultCatalogOptions() CatalogOptions {
	return CatalogOptions{HeaderRow: 8, SkipDataRows: 2, EncodingFallback: "ISO-8859-1"}
}

// CatalogStats counts rows dropped during catalog parsing.
type CatalogStats struct {
	Read       int
	Malformed  int
	Duplicates int
}

// LoadCatalog reads and parses the catalog CSV at path.
func LoadCatalog(ctx context.Context, path string, opts CatalogOptions) (model.Catalog, CatalogStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Catalog{}, CatalogStats{}, eris.Wrapf(err, "ingest: read catalog %s", path)
	}
	r, err := fetcher.DecodeReader(data, opts.EncodingFallback)
	if err != nil {
		return model.Catalog{}, CatalogStats{}, eris.Wrap(err, "ingest: decode catalog")
	}
	rows, err := fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{LazyQuotes: true})
	if err != nil {
		return model.Catalog{}, CatalogStats{}, eris.Wrap(err, "ingest: parse catalog csv")
	}
	return ParseCatalog(rows, opts)
}

// ParseCatalog converts raw export rows into catalog rows. Rows without an
// integer ID or a Desc1 are dropped, as are repeated IDs.
func ParseCatalog(rows [][]string, opts CatalogOptions) (model.Catalog, CatalogStats, error) {
	var stats CatalogStats
	if len(rows) <= opts.HeaderRow {
		return model.Catalog{}, stats, eris.Errorf("ingest: catalog has no header row (expected at row %d)", opts.HeaderRow+1)
	}

	columns := catalogHeader(rows[opts.HeaderRow])
	colIdx := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, ok := colIdx[col]; !ok {
			colIdx[col] = i
		}
	}
	for _, required := range []string{model.ColID, model.DescColumns[0]} {
		if _, ok := colIdx[required]; !ok {
			return model.Catalog{}, stats, eris.Errorf("ingest: catalog missing required column %q", required)
		}
	}

	start := opts.HeaderRow + 1 + opts.SkipDataRows
	if start > len(rows) {
		start = len(rows)
	}

	catalog := model.Catalog{Columns: orderColumns(columns)}
	seen := make(map[int64]bool)
	for _, raw := range rows[start:] {
		stats.Read++
		row, ok := parseCatalogRow(raw, columns, colIdx)
		if !ok {
			stats.Malformed++
			continue
		}
		if seen[row.ID] {
			stats.Duplicates++
			continue
		}
		seen[row.ID] = true
		catalog.Rows = append(catalog.Rows, row)
	}

	zap.L().Debug("ingest: catalog parsed",
		zap.Int("rows", len(catalog.Rows)),
		zap.Int("malformed", stats.Malformed),
		zap.Int("duplicates", stats.Duplicates),
	)
	return catalog, stats, nil
}

func catalogHeader(raw []string) []string {
	columns := make([]string, len(raw))
	for i, col := range raw {
		col = strings.TrimSpace(col)
		if renamed, ok := catalogRenames[col]; ok {
			col = renamed
		}
		columns[i] = col
	}
	return columns
}

// orderColumns places Desc5 directly after Desc4 when both exist.
func orderColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	hasDesc4 := false
	for _, c := range columns {
		if c == "Desc4" {
			hasDesc4 = true
		}
	}
	for _, c := range columns {
		if c == "Desc5" && hasDesc4 {
			continue
		}
		out = append(out, c)
		if c == "Desc4" && contains(columns, "Desc5") {
			out = append(out, "Desc5")
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func parseCatalogRow(raw []string, columns []string, colIdx map[string]int) (model.CatalogRow, bool) {
	get := func(col string) string {
		idx, ok := colIdx[col]
		if !ok || idx >= len(raw) {
			return ""
		}
		return unescapeInches(strings.TrimSpace(raw[idx]))
	}

	id, err := strconv.ParseInt(get(model.ColID), 10, 64)
	if err != nil {
		return model.CatalogRow{}, false
	}
	row := model.CatalogRow{
		ID:        id,
		Status:    parseStatus(get(model.ColStatus)),
		BuyLine:   get(model.ColBuyLine),
		PriceLine: get(model.ColPriceLine),
		ListPrice: model.ParsePrice(get(model.ColListPrice)),
		RepCost:   model.ParsePrice(get(model.ColRepCost)),
	}
	for i, dc := range model.DescColumns {
		row.Desc[i] = get(dc)
	}
	if row.Description() == "" {
		return model.CatalogRow{}, false
	}

	for _, col := range columns {
		if isTypedColumn(col) {
			continue
		}
		if row.Extra == nil {
			row.Extra = make(map[string]string)
		}
		row.Extra[col] = get(col)
	}
	return row, true
}

func isTypedColumn(col string) bool {
	switch col {
	case model.ColID, model.ColStatus, model.ColBuyLine, model.ColPriceLine, model.ColListPrice, model.ColRepCost:
		return true
	}
	return contains(model.DescColumns[:], col)
}

// parseStatus coerces the status cell to an int; anything non-numeric is 0.
func parseStatus(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// unescapeInches restores inch marks the ERP exports as '^'. A leading '^' is kept.
func unescapeInches(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[:1] + strings.ReplaceAll(s[1:], "^", `"`)
}
