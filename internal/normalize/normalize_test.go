package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/pricesync/internal/rules"
)

func TestKey_Empty(t *testing.T) {
	n := Default()
	assert.Equal(t, "", n.Key(""))
	assert.Equal(t, "", n.Key("   "))
}

func TestKey(t *testing.T) {
	n := Default()
	tests := []struct {
		input, expected string
	}{
		{"PR205TL-PN", "PR205TLPN"},
		{"1.5.PR", "15PR"},
		{"PH206RR", "PH206R"},
		{"PH206RL", "PH206R"},
		{"PH206RL.2", "PH206R2"},
		{"PH206RL-BN", "PH206RLBN"},    // handedness letter followed by a letter stays
		{"HK100RR", "HK100"},           // trigger present: indicator stripped
		{"HK100-LHR", "HK100"},         // three-letter indicator
		{"K100RR", "K100RR"},           // no trigger: indicator kept
		{"ML20RL", "ML20"},             // trigger is itself protected
		{"HL101RRR", "HL101RRR"},       // protected token survives stripping
		{"HLPRM-RL", "HLPRM"},          // PRM wins over PR at the same position
		{"AP101-BTB-PN", "AP101PNBTB"}, // paired marker moved to the end
		{"BTB", "BTB"},
		{" PR205TL-PN ", "PR205TLPN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, n.Key(tt.input), "input: %q", tt.input)
	}
}

func TestKey_SettlesToFixedPoint(t *testing.T) {
	n := Default()
	// A single pass leaves HKLHR, which itself contains an indicator.
	assert.Equal(t, "HK", n.Key("HKLRLHR"))
}

func TestKey_Idempotent(t *testing.T) {
	n := Default()
	inputs := []string{
		"PR205TL-PN", "PH206RR", "PH206RL-BN", "HK100RR", "HKLRLHR", "HL101RRR",
		"HLPRM-RL", "AP101-BTB-PN", "BTB-AP101", "XBTBBTB", "- X", "MKPS100L-PN",
		"PR205TL-HL101-PN", "ML-RL-RR-LHR", "R.R.L", "",
	}
	for _, in := range inputs {
		once := n.Key(in)
		assert.Equal(t, once, n.Key(once), "input: %q", in)
	}
}

func TestKey_PreservesProtectedTokens(t *testing.T) {
	n := Default()
	cfg := rules.Default().Normalization
	for _, tok := range cfg.Protected {
		// Each token sits inside a string that triggers indicator stripping.
		in := "HK-" + tok + "-9"
		assert.Contains(t, n.Key(in), tok, "token: %q", tok)
	}
}

func TestKeys(t *testing.T) {
	n := Default()
	assert.Equal(t, []string{"PR205TLPN", "", "HK100"}, n.Keys([]string{"PR205TL-PN", "", "HK100RR"}))
}

func TestNew_EmptyRules(t *testing.T) {
	n := New(rules.Normalization{})
	assert.Equal(t, "A-B.RR", n.Key("A-B.RR"))
}

func TestStripFinishes(t *testing.T) {
	finishes := rules.Default().Finishes
	tests := []struct {
		input, expected string
	}{
		{"PR205TLBRN", "PR205TL"},
		{"PR205TLPN", "PR205TL"},
		{"CK1BRAB", "CK1"},
		{"CK1BBML", "CK1"},
		{"CK1", "CK1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StripFinishes(tt.input, finishes), "input: %q", tt.input)
	}
}

func TestStripFinishes_LongestFirst(t *testing.T) {
	assert.Equal(t, "K1", StripFinishes("K1BRN", []string{"BN", "BRN"}))
	// Removing AB first would leave BR behind.
	assert.Equal(t, "K1", StripFinishes("K1BRAB", []string{"AB", "BRAB"}))
}

func TestStripFinishes_DoesNotMutateInput(t *testing.T) {
	finishes := []string{"BN", "BRN"}
	StripFinishes("K1BRN", finishes)
	assert.Equal(t, []string{"BN", "BRN"}, finishes)
}

func TestBase(t *testing.T) {
	n := Default()
	assert.Equal(t, "PR205TL", n.Base("PR205TL-PN", rules.Default().Finishes))
}
