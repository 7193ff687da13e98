package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindColumn(t *testing.T) {
	cols := []string{"Item #", "Description", "List Price", "Net Price"}

	tests := []struct {
		keyword string
		want    string
		found   bool
	}{
		{"price", "List Price", true},
		{"PRICE", "List Price", true},
		{"item", "Item #", true},
		{"desc", "Description", true},
		{"finish", "", false},
	}
	for _, tt := range tests {
		got, ok := FindColumn(cols, tt.keyword)
		assert.Equal(t, tt.found, ok, "keyword: %q", tt.keyword)
		assert.Equal(t, tt.want, got, "keyword: %q", tt.keyword)
	}
}

func TestFindColumn_Empty(t *testing.T) {
	_, ok := FindColumn(nil, "price")
	assert.False(t, ok)
}

func TestTable_Value(t *testing.T) {
	tbl := Table{
		Columns: []string{"ITEM", "PRICE"},
		Rows:    [][]string{{" PR205TL-PN ", "45.00"}, {"short"}},
	}
	assert.Equal(t, "PR205TL-PN", tbl.Value(0, "ITEM"))
	assert.Equal(t, "", tbl.Value(1, "PRICE"))
	assert.Equal(t, "", tbl.Value(0, "MISSING"))
	assert.Equal(t, "", tbl.Value(5, "ITEM"))
	assert.Equal(t, map[string]string{"ITEM": "short", "PRICE": ""}, tbl.Record(1))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"45", "45", true},
		{"45.50", "45.5", true},
		{"$1,234.00", "1234", true},
		{" 12.5 ", "12.5", true},
		{"", "", false},
		{"N/A", "", false},
	}
	for _, tt := range tests {
		got := ParsePrice(tt.in)
		require.Equal(t, tt.valid, got.Valid, "input: %q", tt.in)
		if tt.valid {
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)), "input: %q", tt.in)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "120.00", FormatPrice(decimal.NewNullDecimal(decimal.NewFromInt(120))))
	assert.Equal(t, "", FormatPrice(decimal.NullDecimal{}))
}
