package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/normalize"
)

func TestExactStage_Match(t *testing.T) {
	stage := NewExactStage(normalize.Default())
	residual := NewResidual([]model.CatalogRow{
		catRow(1, "PR205TLPN", "40.00"),
		catRow(2, "HK100", "20.00"),
		catRow(3, "ZZ900", "5.00"),
	})
	sheets := []model.Sheet{
		priceSheet("Cabinet Knobs", model.CategoryIndividual, "PR205TL-PN", "45.00", "HK100-RHR", "22"),
	}

	res, err := stage.Match(residual, sheets)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)

	byID := matchByID(res.Matches)
	assert.Equal(t, "45.00", model.FormatPrice(byID[1].Row.ListPrice))
	assert.Equal(t, "PR205TLPN", byID[1].Key)
	assert.Equal(t, StageExact, byID[1].Stage)
	assert.Equal(t, "22.00", model.FormatPrice(byID[2].Row.ListPrice))
	assert.NotContains(t, byID, int64(3))
}

func TestExactStage_LastPriceWins(t *testing.T) {
	stage := NewExactStage(normalize.Default())
	residual := NewResidual([]model.CatalogRow{catRow(1, "AP101PN", "9.00")})
	sheets := []model.Sheet{
		priceSheet("Cabinet Pulls", model.CategoryIndividual, "AP101-PN", "10"),
		priceSheet("Appliance Pulls", model.CategoryIndividual, "AP101.PN", "12.50", "AP101PN", ""),
	}

	res, err := stage.Match(residual, sheets)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "12.50", model.FormatPrice(res.Matches[0].Row.ListPrice))
}

func TestExactStage_MissingSupplierPrice(t *testing.T) {
	stage := NewExactStage(normalize.Default())
	residual := NewResidual([]model.CatalogRow{
		catRow(1, "AP101PN", "9.00"),
		catRow(2, "AP102PN", ""),
	})
	sheets := []model.Sheet{
		priceSheet("Cabinet Pulls", model.CategoryIndividual, "AP101PN", "", "AP102PN", ""),
	}

	res, err := stage.Match(residual, sheets)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, int64(1), res.Matches[0].Row.ID)
	assert.Equal(t, "9.00", model.FormatPrice(res.Matches[0].Row.ListPrice))
	assert.False(t, res.Matches[0].Incoming.Valid)
	assert.Equal(t, 1, res.Unpriced)
}

func TestExactStage_SkipsSheetWithoutPriceColumn(t *testing.T) {
	stage := NewExactStage(normalize.Default())
	residual := NewResidual([]model.CatalogRow{catRow(1, "AP101PN", "9.00")})
	sheets := []model.Sheet{{
		Name:     "Notes",
		Category: model.CategoryUnclassified,
		Table:    model.Table{Columns: []string{"Item", "Comment"}, Rows: [][]string{{"AP101PN", "x"}}},
	}}

	res, err := stage.Match(residual, sheets)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Notes", res.Skipped[0].Sheet)
	assert.Equal(t, StageExact, res.Skipped[0].Stage)
}

func TestExactStage_DoesNotMutateInputs(t *testing.T) {
	stage := NewExactStage(normalize.Default())
	rows := []model.CatalogRow{catRow(1, "AP101PN", "9.00")}
	residual := NewResidual(rows)
	sheets := []model.Sheet{priceSheet("Cabinet Pulls", model.CategoryIndividual, "AP101PN", "10")}

	_, err := stage.Match(residual, sheets)
	require.NoError(t, err)

	assert.Equal(t, "9.00", model.FormatPrice(residual.Rows()[0].ListPrice))
	assert.Equal(t, "9.00", model.FormatPrice(rows[0].ListPrice))
	assert.Equal(t, "AP101PN", sheets[0].Rows[0][0])
}
