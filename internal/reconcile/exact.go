package reconcile

import (
	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/normalize"
)

// ExactStage matches catalog descriptions to supplier item codes by equal
// normalized keys. Every sheet takes part. When a key repeats, the last
// present price in sheet and row order wins.
type ExactStage struct {
	norm *normalize.Normalizer
}

// NewExactStage returns the exact-key stage.
func NewExactStage(norm *normalize.Normalizer) *ExactStage {
	return &ExactStage{norm: norm}
}

// Name implements Stage.
func (s *ExactStage) Name() string { return StageExact }

// Match implements Stage.
func (s *ExactStage) Match(residual Residual, sheets []model.Sheet) (StageResult, error) {
	var res StageResult
	table := NewPriceTable(PolicyLastWrite)
	for _, sheet := range sheets {
		items, ok, err := sheetItems(StageExact, sheet, &res)
		if err != nil {
			return StageResult{}, err
		}
		if !ok {
			continue
		}
		for _, it := range items {
			table.Put(s.norm.Key(it.Code), it.Price)
		}
	}

	for _, row := range residual.Rows() {
		key := s.norm.Key(row.Description())
		if !table.Has(key) {
			continue
		}
		incoming, _ := table.Get(key)
		accept(&res, StageExact, row, key, incoming)
	}
	return res, nil
}
