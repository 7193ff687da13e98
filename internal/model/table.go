// Package model defines the tabular types shared by ingestion, reconciliation and export.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// ErrMissingColumn is returned when a sheet has no column matching a required keyword.
var ErrMissingColumn = eris.New("missing column")

// Column keywords used to infer semantically named columns.
const (
	KeywordPrice       = "price"
	KeywordItem        = "item"
	KeywordDescription = "desc"
)

// Table is a header plus string cells. Rows may be shorter than Columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// FindColumn returns the first column whose name contains keyword,
// compared case-insensitively. The second result is false when no column matches.
func FindColumn(columns []string, keyword string) (string, bool) {
	kw := strings.ToLower(keyword)
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), kw) {
			return col, true
		}
	}
	return "", false
}

// Index returns the position of col in the header, or -1.
func (t Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Value returns the trimmed cell at (row, col). Missing cells read as "".
func (t Table) Value(row int, col string) string {
	idx := t.Index(col)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return cell(t.Rows[row], idx)
}

// Record returns the row as a column-name keyed map.
func (t Table) Record(row int) map[string]string {
	rec := make(map[string]string, len(t.Columns))
	for i, col := range t.Columns {
		rec[col] = cell(t.Rows[row], i)
	}
	return rec
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParsePrice parses a price cell. Currency symbols and thousands separators
// are ignored. Empty or non-numeric cells yield an invalid NullDecimal.
func ParsePrice(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// FormatPrice renders a price with two decimals, or "" when missing.
func FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.StringFixed(2)
}
