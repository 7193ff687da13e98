package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/normalize"
	"github.com/sells-group/pricesync/internal/rules"
)

func TestPrintKeys(t *testing.T) {
	r := rules.Default()
	var out bytes.Buffer
	printKeys(&out, normalize.New(r.Normalization), r.Finishes, []string{"PR205TL-PN", "HK100-RHR"})

	s := out.String()
	assert.Contains(t, s, "INPUT")
	assert.Contains(t, s, "PR205TLPN")
	assert.Contains(t, s, "PR205TL\n")
	assert.Contains(t, s, "HK100")
}

func TestPrintSheets(t *testing.T) {
	sheets := []model.Sheet{
		{
			Name:     "Cabinet Knobs",
			Category: model.CategoryIndividual,
			Table:    model.Table{Columns: []string{"Item", "Description", "PRICE"}, Rows: [][]string{{"A", "B", "1"}}},
		},
		{
			Name:     "Metro Tubular",
			Category: model.CategoryKit,
			Table:    model.Table{Columns: []string{"Item", "PRICE"}},
		},
		{
			Name:     "Notes",
			Category: model.CategoryUnclassified,
			Table:    model.Table{Columns: []string{"Comment"}},
		},
	}

	var out bytes.Buffer
	printSheets(&out, sheets, rules.Default())

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Contains(t, string(lines[2]), "Cabinet Knobs")
	assert.Contains(t, string(lines[2]), "Description")
	assert.Contains(t, string(lines[3]), "structural")
	assert.Contains(t, string(lines[4]), "missing column")
}

func TestRulesCmd(t *testing.T) {
	cfg = nil
	var out bytes.Buffer
	rulesCmd.SetOut(&out)

	require.NoError(t, rulesCmd.RunE(rulesCmd, nil))
	assert.Contains(t, out.String(), "exclude_marker: DPAM")
	assert.Contains(t, out.String(), "Cabinet Knobs: individual")
}

func TestSheetsCmd_SingleSheet(t *testing.T) {
	dir := t.TempDir()
	sheetsPriceList = writePriceList(t, dir)
	sheetsName = "Cabinet Pulls"
	t.Cleanup(func() { sheetsPriceList, sheetsName = "", "" })
	cfg = testConfig(dir)

	var out bytes.Buffer
	sheetsCmd.SetOut(&out)
	require.NoError(t, sheetsCmd.RunE(sheetsCmd, nil))

	assert.Contains(t, out.String(), "Cabinet Pulls")
	assert.NotContains(t, out.String(), "Cabinet Knobs")
	assert.Contains(t, out.String(), "PRICE")
}
