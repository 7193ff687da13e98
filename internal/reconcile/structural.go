package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/normalize"
	"github.com/sells-group/pricesync/internal/rules"
)

// Pattern is a supplier code decomposed around a mechanism type fragment.
type Pattern struct {
	Prefix    string
	Numeric   string
	Suffix    string
	Mechanism string
}

// Specificity is the number of characters the pattern pins down.
func (p Pattern) Specificity() int {
	return len(p.Prefix) + len(p.Numeric) + len(p.Suffix)
}

// Matches reports whether key contains prefix and numeric together, followed
// somewhere later by the suffix.
func (p Pattern) Matches(key string) bool {
	head := p.Prefix + p.Numeric
	i := strings.Index(key, head)
	if i < 0 {
		return false
	}
	return strings.Contains(key[i+len(head):], p.Suffix)
}

// Decompose splits code at the first mechanism fragment found, trying longer
// fragments first. The prefix runs through the fragment, the numeric part is
// the digit run right after it and the suffix is whatever remains.
func Decompose(code string, group rules.MechanismGroup) (Pattern, bool) {
	for _, frag := range group.SortedKeys() {
		i := strings.Index(code, frag)
		if i < 0 {
			continue
		}
		end := i + len(frag)
		j := end
		for j < len(code) && code[j] >= '0' && code[j] <= '9' {
			j++
		}
		return Pattern{
			Prefix:    code[:end],
			Numeric:   code[end:j],
			Suffix:    code[j:],
			Mechanism: group.Types[frag],
		}, true
	}
	return Pattern{}, false
}

// StructuralStage matches mechanism sub-kits by pattern containment. One
// stage covers one mechanism group; the driver runs a stage per group.
type StructuralStage struct {
	norm     *normalize.Normalizer
	finishes []string
	group    rules.MechanismGroup
	sheets   map[string]bool
}

// NewStructuralStage returns the structural stage for one mechanism group.
func NewStructuralStage(norm *normalize.Normalizer, finishes []string, cfg rules.Structural, group rules.MechanismGroup) *StructuralStage {
	s := &StructuralStage{
		norm:     norm,
		finishes: finishes,
		group:    group,
		sheets:   make(map[string]bool, len(cfg.Sheets)),
	}
	for _, name := range cfg.Sheets {
		s.sheets[name] = true
	}
	return s
}

// Name implements Stage.
func (s *StructuralStage) Name() string { return StageStructural + "/" + s.group.Name }

type pricedPattern struct {
	Pattern
	base  string
	price decimal.Decimal
}

// Match implements Stage.
func (s *StructuralStage) Match(residual Residual, sheets []model.Sheet) (StageResult, error) {
	var res StageResult
	table := NewPriceTable(PolicyFirstWrite)
	patterns := make(map[string]Pattern)
	for _, sheet := range sheets {
		if !s.sheets[sheet.Name] {
			continue
		}
		items, ok, err := sheetItems(s.Name(), sheet, &res)
		if err != nil {
			return StageResult{}, err
		}
		if !ok {
			continue
		}
		for _, it := range items {
			base := s.norm.Base(it.Code, s.finishes)
			p, ok := Decompose(base, s.group)
			if !ok {
				continue
			}
			patterns[base] = p
			table.Put(base, it.Price)
		}
	}

	var priced []pricedPattern
	for _, base := range table.Keys() {
		price, ok := table.Get(base)
		if !ok {
			continue
		}
		priced = append(priced, pricedPattern{Pattern: patterns[base], base: base, price: price.Decimal})
	}
	if len(priced) == 0 {
		return res, nil
	}

	for _, row := range residual.Rows() {
		key := s.norm.Base(row.Description(), s.finishes)
		if key == "" {
			continue
		}
		best, ok := bestPattern(key, priced)
		if !ok {
			continue
		}
		accept(&res, s.Name(), row, best.base, decimal.NewNullDecimal(best.price))
	}
	return res, nil
}

// bestPattern picks the most specific matching pattern, breaking ties by the
// higher price.
func bestPattern(key string, priced []pricedPattern) (pricedPattern, bool) {
	var best pricedPattern
	found := false
	for _, p := range priced {
		if !p.Matches(key) {
			continue
		}
		switch {
		case !found:
		case p.Specificity() > best.Specificity():
		case p.Specificity() == best.Specificity() && p.price.GreaterThan(best.price):
		default:
			continue
		}
		best, found = p, true
	}
	return best, found
}
