package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/pricesync/internal/model"
)

func price(s string) decimal.NullDecimal {
	return model.ParsePrice(s)
}

func catRow(id int64, desc, listPrice string) model.CatalogRow {
	return model.CatalogRow{
		ID:        id,
		Desc:      [5]string{desc},
		Status:    1,
		ListPrice: price(listPrice),
	}
}

// priceSheet builds a sheet with item and price columns from code/price pairs.
func priceSheet(name string, cat model.Category, pairs ...string) model.Sheet {
	s := model.Sheet{
		Name:     name,
		Category: cat,
		Table:    model.Table{Columns: []string{"Item #", "Description", "PRICE"}},
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Rows = append(s.Rows, []string{pairs[i], "", pairs[i+1]})
	}
	return s
}

func matchByID(matches []Match) map[int64]Match {
	out := make(map[int64]Match, len(matches))
	for _, m := range matches {
		out[m.Row.ID] = m
	}
	return out
}
