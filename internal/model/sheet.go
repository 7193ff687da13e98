package model

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Category classifies a supplier sheet.
type Category string

// Sheet categories.
const (
	CategoryIndividual   Category = "individual"
	CategoryKit          Category = "kit"
	CategoryUnclassified Category = "unclassified"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryIndividual, CategoryKit, CategoryUnclassified:
		return true
	}
	return false
}

// Sheet is one named supplier price table.
type Sheet struct {
	Name     string
	Category Category
	Table

	// AltPriceColumns lists numeric columns kept as alternate prices.
	AltPriceColumns []string
}

// SupplierItem is one priced line of a supplier sheet.
type SupplierItem struct {
	Sheet string
	Row   int
	Code  string
	Price decimal.NullDecimal
}

// ItemColumns returns the inferred item and price columns of the sheet.
func (s Sheet) ItemColumns() (item, price string, err error) {
	item, ok := FindColumn(s.Columns, KeywordItem)
	if !ok {
		return "", "", eris.Wrapf(ErrMissingColumn, "sheet %q: no %s column", s.Name, KeywordItem)
	}
	price, ok = FindColumn(s.Columns, KeywordPrice)
	if !ok {
		return "", "", eris.Wrapf(ErrMissingColumn, "sheet %q: no %s column", s.Name, KeywordPrice)
	}
	return item, price, nil
}

// Items returns every row with a non-empty item code. The row's price falls
// back to the first alternate price column holding a value.
func (s Sheet) Items() ([]SupplierItem, error) {
	itemCol, priceCol, err := s.ItemColumns()
	if err != nil {
		return nil, err
	}

	items := make([]SupplierItem, 0, len(s.Rows))
	for i := range s.Rows {
		code := s.Value(i, itemCol)
		if code == "" {
			continue
		}
		price := ParsePrice(s.Value(i, priceCol))
		for _, alt := range s.AltPriceColumns {
			if price.Valid {
				break
			}
			price = ParsePrice(s.Value(i, alt))
		}
		items = append(items, SupplierItem{Sheet: s.Name, Row: i, Code: code, Price: price})
	}
	return items, nil
}

// SupplierRecord is a supplier row reported as not present in the catalog.
type SupplierRecord struct {
	Sheet   string
	Columns []string
	Values  map[string]string
}
