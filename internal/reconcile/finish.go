package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/normalize"
	"github.com/sells-group/pricesync/internal/rules"
)

// CustomFinishStage prices catalog items offered in finishes the supplier
// does not list. Supplier codes from individual sheets are reduced to base
// codes by stripping known finishes. A catalog key that contains a base code
// is a candidate. Keys ending in the standard suffix take the exact base
// price; all others take the highest substring base price plus the upcharge.
type CustomFinishStage struct {
	norm     *normalize.Normalizer
	finishes []string
	suffix   string
	factor   decimal.Decimal
}

// NewCustomFinishStage returns the custom-finish stage.
func NewCustomFinishStage(norm *normalize.Normalizer, finishes []string, cfg rules.CustomFinish) *CustomFinishStage {
	return &CustomFinishStage{
		norm:     norm,
		finishes: finishes,
		suffix:   cfg.StandardSuffix,
		factor:   decimal.NewFromInt(1).Add(decimal.NewFromFloat(cfg.UpchargeRate)),
	}
}

// Name implements Stage.
func (s *CustomFinishStage) Name() string { return StageCustomFinish }

// Match implements Stage.
func (s *CustomFinishStage) Match(residual Residual, sheets []model.Sheet) (StageResult, error) {
	var res StageResult
	bases := NewPriceTable(PolicyLastWrite)
	for _, sheet := range sheets {
		if sheet.Category != model.CategoryIndividual {
			continue
		}
		items, ok, err := sheetItems(StageCustomFinish, sheet, &res)
		if err != nil {
			return StageResult{}, err
		}
		if !ok {
			continue
		}
		for _, it := range items {
			bases.Put(s.norm.Base(it.Code, s.finishes), it.Price)
		}
	}
	if bases.Len() == 0 {
		return res, nil
	}

	for _, row := range residual.Rows() {
		key := s.norm.Key(row.Description())
		if key == "" || !bases.ContainsKeyOf(key) {
			continue
		}
		incoming := s.price(key, bases)
		if !incoming.Valid {
			res.Unpriced++
			continue
		}
		accept(&res, StageCustomFinish, row, key, incoming)
	}
	return res, nil
}

// price returns the custom-finish price for a candidate key, or an invalid
// value when none can be resolved.
func (s *CustomFinishStage) price(key string, bases *PriceTable) decimal.NullDecimal {
	if s.suffix != "" && strings.HasSuffix(key, s.suffix) {
		p, _ := bases.Get(key)
		return p
	}
	// Several unrelated base codes may be substrings of one key; the highest wins.
	p, ok := bases.MaxSubstring(key)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(p.Decimal.Mul(s.factor).Round(2))
}
