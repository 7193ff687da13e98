package reconcile

import (
	"github.com/sells-group/pricesync/internal/model"
)

// Residual is an immutable snapshot of catalog rows not matched by any stage so far.
type Residual struct {
	rows []model.CatalogRow
	ids  map[int64]bool
}

// NewResidual snapshots rows. Later changes to rows do not affect the residual.
func NewResidual(rows []model.CatalogRow) Residual {
	cp := make([]model.CatalogRow, len(rows))
	copy(cp, rows)
	ids := make(map[int64]bool, len(cp))
	for _, r := range cp {
		ids[r.ID] = true
	}
	return Residual{rows: cp, ids: ids}
}

// Rows returns a copy of the residual rows in catalog order.
func (r Residual) Rows() []model.CatalogRow {
	cp := make([]model.CatalogRow, len(r.rows))
	copy(cp, r.rows)
	return cp
}

// Len returns the number of residual rows.
func (r Residual) Len() int {
	return len(r.rows)
}

// Contains reports whether the catalog ID is still unmatched.
func (r Residual) Contains(id int64) bool {
	return r.ids[id]
}

// Without returns a new residual excluding the given IDs. Removal is by
// identifier only, never by key.
func (r Residual) Without(ids map[int64]bool) Residual {
	kept := make([]model.CatalogRow, 0, len(r.rows))
	for _, row := range r.rows {
		if !ids[row.ID] {
			kept = append(kept, row)
		}
	}
	return NewResidual(kept)
}
