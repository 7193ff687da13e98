package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricesync/internal/model"
)

func TestDefault_Valid(t *testing.T) {
	r := Default()
	require.NoError(t, Validate(r))
	assert.Equal(t, Version, r.Version)
	assert.Len(t, r.Sheets, 18)
	assert.Len(t, r.Finishes, 20)
	assert.Equal(t, "DPAM", r.ExcludeMarker)
	assert.InDelta(t, 0.20, r.CustomFinish.UpchargeRate, 0.0001)
}

func TestCategory(t *testing.T) {
	r := Default()
	assert.Equal(t, model.CategoryIndividual, r.Category("Cabinet Knobs"))
	assert.Equal(t, model.CategoryKit, r.Category("Heritage"))
	assert.Equal(t, model.CategoryUnclassified, r.Category("Discontinued"))
}

func TestIsStructural(t *testing.T) {
	r := Default()
	assert.True(t, r.IsStructural("Metro Tubular"))
	assert.False(t, r.IsStructural("Revival Classic"))
}

func TestMechanismGroup_SortedKeys(t *testing.T) {
	g := MechanismGroup{Types: map[string]string{"MPD": "a", "MPDTT": "b", "MKPS": "c", "MKDM": "d"}}
	assert.Equal(t, []string{"MPDTT", "MKDM", "MKPS", "MPD"}, g.SortedKeys())
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), r)
}

func TestLoad_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
version: test-1
finishes: [PN, BN]
sheets:
  Closeouts: individual
custom_finish:
  upcharge_rate: 0.15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-1", r.Version)
	assert.Equal(t, []string{"PN", "BN"}, r.Finishes)
	assert.InDelta(t, 0.15, r.CustomFinish.UpchargeRate, 0.0001)
	// Sheet entries merge with the defaults.
	assert.Equal(t, model.CategoryIndividual, r.Category("Closeouts"))
	assert.Equal(t, model.CategoryKit, r.Category("Heritage"))
	// Untouched sections keep their defaults.
	assert.Equal(t, "XX", r.CustomFinish.StandardSuffix)
	assert.Equal(t, "BTB", r.Normalization.PairedMarker)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules: read")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("finishes: [unterminated"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules: parse")
}

func TestValidate_Errors(t *testing.T) {
	r := Default()
	r.Sheets["Odd"] = model.Category("bundle")
	r.Finishes = nil
	r.CustomFinish.UpchargeRate = -1
	r.Structural.Sheets = append(r.Structural.Sheets, "Cabinet Knobs")
	r.Structural.Groups = append(r.Structural.Groups, MechanismGroup{})

	err := Validate(r)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unknown category")
	assert.Contains(t, msg, "finishes must not be empty")
	assert.Contains(t, msg, "upcharge_rate")
	assert.Contains(t, msg, `structural sheet "Cabinet Knobs" must be categorized kit`)
	assert.Contains(t, msg, "has no name")
	assert.Contains(t, msg, "has no types")
}

func TestMarshal_RoundTripsThroughLoad(t *testing.T) {
	out, err := Marshal(Default())
	require.NoError(t, err)
	assert.Contains(t, string(out), "exclude_marker: DPAM")

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), r)
}
