package reconcile

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/pricesync/internal/model"
)

// Stage names.
const (
	StageExact        = "exact"
	StageCustomFinish = "custom_finish"
	StageKit          = "kit"
	StageStructural   = "structural"
	StageUncreated    = "uncreated"
)

// Match is one catalog row accepted by a stage, carrying its resolved price.
type Match struct {
	Row      model.CatalogRow
	Stage    string
	Key      string
	Incoming decimal.NullDecimal
}

// SkippedSheet records a sheet a stage could not use.
type SkippedSheet struct {
	Stage  string
	Sheet  string
	Reason string
}

// StageResult is the output of one stage run.
type StageResult struct {
	Matches  []Match
	Skipped  []SkippedSheet
	Unpriced int
}

// Stage matches residual catalog rows against supplier sheets. A stage reads
// its inputs only; it never modifies the residual or the sheets.
type Stage interface {
	Name() string
	Match(residual Residual, sheets []model.Sheet) (StageResult, error)
}

// sheetItems returns the sheet's priced items, or records the sheet as
// skipped when it lacks an item or price column.
func sheetItems(stage string, sheet model.Sheet, res *StageResult) ([]model.SupplierItem, bool, error) {
	items, err := sheet.Items()
	if err == nil {
		return items, true, nil
	}
	if !eris.Is(err, model.ErrMissingColumn) {
		return nil, false, eris.Wrapf(err, "reconcile: %s: read sheet %q", stage, sheet.Name)
	}
	zap.L().Warn("reconcile: sheet skipped",
		zap.String("stage", stage),
		zap.String("sheet", sheet.Name),
		zap.Error(err),
	)
	res.Skipped = append(res.Skipped, SkippedSheet{Stage: stage, Sheet: sheet.Name, Reason: err.Error()})
	return nil, false, nil
}

// accept resolves the row price and appends the match, or counts the row as
// unpriced when neither the catalog nor the supplier has a price.
func accept(res *StageResult, stage string, row model.CatalogRow, key string, incoming decimal.NullDecimal) {
	resolved := ResolvePrice(row.ListPrice, incoming)
	if !resolved.Valid {
		res.Unpriced++
		return
	}
	row.ListPrice = resolved
	res.Matches = append(res.Matches, Match{Row: row, Stage: stage, Key: key, Incoming: incoming})
}
