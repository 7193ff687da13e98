// Package reconcile matches catalog rows against supplier price sheets in
// ordered stages and assembles the accepted and uncreated outputs.
package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/normalize"
	"github.com/sells-group/pricesync/internal/rules"
)

var (
	// ErrStageOrder is returned when a stage sees or returns a row that an
	// earlier stage already matched, or when stages are configured out of order.
	ErrStageOrder = eris.New("stage order violation")

	// ErrUnknownStage is returned for a stage whose name is not recognized.
	ErrUnknownStage = eris.New("unknown stage")
)

// stageRank orders the recognized stage kinds.
var stageRank = map[string]int{
	StageExact:        0,
	StageCustomFinish: 1,
	StageKit:          2,
	StageStructural:   3,
}

// StageSummary records the outcome of one stage.
type StageSummary struct {
	Name     string
	Before   int
	Matched  int
	After    int
	Unpriced int
	Skipped  int
	Duration time.Duration
}

// Result is the output of a reconciliation run.
type Result struct {
	RunID     string
	Catalog   int
	Sheets    int
	Accepted  []model.CatalogRow
	Matches   []Match
	Uncreated []model.SupplierRecord
	Stages    []StageSummary
	Skipped   []SkippedSheet
	Excluded  int
	Residual  int
}

// Reconciler runs the matching stages in order.
type Reconciler struct {
	rules  rules.Rules
	norm   *normalize.Normalizer
	stages []Stage
}

// New returns a Reconciler with the standard stages: exact, custom finish,
// kit, then one structural stage per mechanism group.
func New(r rules.Rules) *Reconciler {
	norm := normalize.New(r.Normalization)
	stages := []Stage{
		NewExactStage(norm),
		NewCustomFinishStage(norm, r.Finishes, r.CustomFinish),
		NewKitStage(r.Structural.Sheets),
	}
	for _, g := range r.Structural.Groups {
		stages = append(stages, NewStructuralStage(norm, r.Finishes, r.Structural, g))
	}
	return &Reconciler{rules: r, norm: norm, stages: stages}
}

// NewWithStages returns a Reconciler running the given stages. Stage kinds
// must be recognized and appear in exact, custom finish, kit, structural order.
func NewWithStages(r rules.Rules, stages ...Stage) (*Reconciler, error) {
	last := -1
	for _, s := range stages {
		rank, ok := stageRank[stageKind(s.Name())]
		if !ok {
			return nil, eris.Wrapf(ErrUnknownStage, "reconcile: stage %q", s.Name())
		}
		if rank < last {
			return nil, eris.Wrapf(ErrStageOrder, "reconcile: stage %q out of order", s.Name())
		}
		last = rank
	}
	return &Reconciler{rules: r, norm: normalize.New(r.Normalization), stages: stages}, nil
}

// Stages returns the stage names in run order.
func (rc *Reconciler) Stages() []string {
	names := make([]string, len(rc.stages))
	for i, s := range rc.stages {
		names[i] = s.Name()
	}
	return names
}

func stageKind(name string) string {
	kind, _, _ := strings.Cut(name, "/")
	return kind
}

// Run reconciles the catalog against the supplier sheets. Neither input is
// modified. Any stage error aborts the run.
func (rc *Reconciler) Run(ctx context.Context, catalog []model.CatalogRow, sheets []model.Sheet) (*Result, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("component", "reconcile.driver"), zap.String("run_id", runID))
	log.Info("reconcile: starting run",
		zap.Int("catalog_rows", len(catalog)),
		zap.Int("sheets", len(sheets)),
	)

	result := &Result{RunID: runID, Catalog: len(catalog), Sheets: len(sheets)}
	residual := NewResidual(catalog)
	matched := make(map[int64]bool)

	for _, stage := range rc.stages {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "reconcile: run cancelled")
		}
		name := stage.Name()
		for _, row := range residual.Rows() {
			if matched[row.ID] {
				return nil, eris.Wrapf(ErrStageOrder, "reconcile: %s: residual holds matched row %d", name, row.ID)
			}
		}

		start := time.Now()
		sr, err := stage.Match(residual, sheets)
		if err != nil {
			log.Error("reconcile: stage failed", zap.String("stage", name), zap.Error(err))
			return nil, eris.Wrapf(err, "reconcile: stage %s", name)
		}

		ids := make(map[int64]bool, len(sr.Matches))
		for _, m := range sr.Matches {
			if !residual.Contains(m.Row.ID) || ids[m.Row.ID] || matched[m.Row.ID] {
				return nil, eris.Wrapf(ErrStageOrder, "reconcile: %s: matched row %d not in residual", name, m.Row.ID)
			}
			ids[m.Row.ID] = true
			matched[m.Row.ID] = true
			result.Matches = append(result.Matches, m)
		}

		before := residual.Len()
		residual = residual.Without(ids)
		summary := StageSummary{
			Name:     name,
			Before:   before,
			Matched:  len(sr.Matches),
			After:    residual.Len(),
			Unpriced: sr.Unpriced,
			Skipped:  len(sr.Skipped),
			Duration: time.Since(start),
		}
		result.Stages = append(result.Stages, summary)
		result.Skipped = append(result.Skipped, sr.Skipped...)

		log.Info("reconcile: stage complete",
			zap.String("stage", name),
			zap.Int("before", summary.Before),
			zap.Int("matched", summary.Matched),
			zap.Int("after", summary.After),
			zap.Int("unpriced", summary.Unpriced),
			zap.Int("skipped_sheets", summary.Skipped),
			zap.Int64("duration_ms", summary.Duration.Milliseconds()),
		)
	}
	result.Residual = residual.Len()

	for _, m := range result.Matches {
		if rc.excluded(m.Row) {
			result.Excluded++
			continue
		}
		result.Accepted = append(result.Accepted, m.Row)
	}

	result.Uncreated = rc.uncreated(catalog, sheets)

	log.Info("reconcile: run complete",
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("excluded", result.Excluded),
		zap.Int("residual", result.Residual),
		zap.Int("uncreated", len(result.Uncreated)),
	)
	return result, nil
}

func (rc *Reconciler) excluded(row model.CatalogRow) bool {
	marker := rc.rules.ExcludeMarker
	return marker != "" && strings.Contains(row.Description(), marker)
}

// uncreated returns the rows of individual sheets whose item code has no
// catalog counterpart under the exact key.
func (rc *Reconciler) uncreated(catalog []model.CatalogRow, sheets []model.Sheet) []model.SupplierRecord {
	known := make(map[string]bool, len(catalog))
	for _, row := range catalog {
		known[rc.norm.Key(row.Description())] = true
	}

	var out []model.SupplierRecord
	for _, sheet := range sheets {
		if sheet.Category != model.CategoryIndividual {
			continue
		}
		itemCol, ok := model.FindColumn(sheet.Columns, model.KeywordItem)
		if !ok {
			continue
		}
		for i := range sheet.Rows {
			key := rc.norm.Key(sheet.Value(i, itemCol))
			if key == "" || known[key] {
				continue
			}
			out = append(out, model.SupplierRecord{
				Sheet:   sheet.Name,
				Columns: sheet.Columns,
				Values:  sheet.Record(i),
			})
		}
	}
	return out
}
