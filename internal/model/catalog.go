package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Catalog column names as exported by the ERP.
const (
	ColID        = "ID"
	ColStatus    = "Status"
	ColBuyLine   = "Buy Line"
	ColPriceLine = "Price Line"
	ColListPrice = "LIST PRICE"
	ColRepCost   = "REP COST"
)

// DescColumns are the five description columns, in order.
var DescColumns = [5]string{"Desc1", "Desc2", "Desc3", "Desc4", "Desc5"}

// CatalogRow is one product record of the internal catalog.
type CatalogRow struct {
	ID        int64
	Desc      [5]string
	Status    int
	BuyLine   string
	PriceLine string
	ListPrice decimal.NullDecimal
	RepCost   decimal.NullDecimal

	// Extra holds columns the catalog carries beyond the typed fields.
	Extra map[string]string
}

// Description returns the primary description (Desc1).
func (r CatalogRow) Description() string {
	return r.Desc[0]
}

// Catalog is the ingested product table with its original column order.
type Catalog struct {
	Columns []string
	Rows    []CatalogRow
}

// Values renders the row in the given column order.
func (r CatalogRow) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = r.Field(col)
	}
	return out
}

// Field returns a single column value as text.
func (r CatalogRow) Field(col string) string {
	switch col {
	case ColID:
		return strconv.FormatInt(r.ID, 10)
	case ColStatus:
		return strconv.Itoa(r.Status)
	case ColBuyLine:
		return r.BuyLine
	case ColPriceLine:
		return r.PriceLine
	case ColListPrice:
		return FormatPrice(r.ListPrice)
	case ColRepCost:
		return FormatPrice(r.RepCost)
	}
	for i, dc := range DescColumns {
		if col == dc {
			return r.Desc[i]
		}
	}
	return r.Extra[col]
}
