package reconcile

import (
	"strings"
	"unicode"

	"github.com/sells-group/pricesync/internal/model"
)

// KitStage matches composite kit codes whose finish is a separate token.
// Catalog descriptions and supplier codes are split into the text before the
// first separator and the text after the last one; both parts must agree.
// Structural sheets are left to the structural stage.
type KitStage struct {
	structural map[string]bool
}

// NewKitStage returns the kit stage. Sheets named in structural are ignored.
func NewKitStage(structural []string) *KitStage {
	s := &KitStage{structural: make(map[string]bool, len(structural))}
	for _, name := range structural {
		s.structural[name] = true
	}
	return s
}

// Name implements Stage.
func (s *KitStage) Name() string { return StageKit }

// Match implements Stage.
func (s *KitStage) Match(residual Residual, sheets []model.Sheet) (StageResult, error) {
	var res StageResult
	table := NewPriceTable(PolicyLastWrite)
	for _, sheet := range sheets {
		if sheet.Category != model.CategoryKit || s.structural[sheet.Name] {
			continue
		}
		items, ok, err := sheetItems(StageKit, sheet, &res)
		if err != nil {
			return StageResult{}, err
		}
		if !ok {
			continue
		}
		for _, it := range items {
			if key, ok := kitKey(it.Code); ok {
				table.Put(key, it.Price)
			}
		}
	}
	if table.Len() == 0 {
		return res, nil
	}

	for _, row := range residual.Rows() {
		key, ok := kitKey(row.Description())
		if !ok || !table.Has(key) {
			continue
		}
		incoming, ok := table.Get(key)
		if !ok {
			res.Unpriced++
			continue
		}
		accept(&res, StageKit, row, key, incoming)
	}
	return res, nil
}

// SplitKit splits a kit code into its leading part and its finish. ok is
// false when the code has fewer than two parts.
func SplitKit(code string) (left, finish string, ok bool) {
	parts := strings.FieldsFunc(code, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	if len(parts) < 2 {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[len(parts)-1]), true
}

func kitKey(code string) (string, bool) {
	left, finish, ok := SplitKit(code)
	if !ok {
		return "", false
	}
	return left + "|" + finish, true
}
