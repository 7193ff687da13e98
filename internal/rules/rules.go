// Package rules holds the classification tables that drive price list reconciliation.
package rules

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/pricesync/internal/model"
)

// Version identifies the built-in rule set.
const Version = "2024.1"

// Rules is the full set of static tables used by the matching stages.
type Rules struct {
	Version       string                    `yaml:"version"`
	Sheets        map[string]model.Category `yaml:"sheets"`
	Finishes      []string                  `yaml:"finishes"`
	Normalization Normalization             `yaml:"normalization"`
	CustomFinish  CustomFinish              `yaml:"custom_finish"`
	Structural    Structural                `yaml:"structural"`
	ExcludeMarker string                    `yaml:"exclude_marker"`
}

// Normalization configures the key normalizer.
type Normalization struct {
	PairedMarker   string   `yaml:"paired_marker"`
	Separators     []string `yaml:"separators"`
	HandedPrefix   string   `yaml:"handed_prefix"`
	HandedSuffixes string   `yaml:"handed_suffixes"`
	Protected      []string `yaml:"protected"`
	Triggers       []string `yaml:"triggers"`
	Indicators     []string `yaml:"indicators"`
}

// CustomFinish configures pricing of finishes missing from the price list.
type CustomFinish struct {
	StandardSuffix string  `yaml:"standard_suffix"`
	UpchargeRate   float64 `yaml:"upcharge_rate"`
}

// Structural configures prefix/numeric/suffix matching of mechanism sub-kits.
type Structural struct {
	Sheets []string         `yaml:"sheets"`
	Groups []MechanismGroup `yaml:"groups"`
}

// MechanismGroup maps code fragments to mechanism types. Each group runs as
// its own pass over the residual catalog.
type MechanismGroup struct {
	Name  string            `yaml:"name"`
	Types map[string]string `yaml:"types"`
}

// SortedKeys returns the group's code fragments, longest first.
func (g MechanismGroup) SortedKeys() []string {
	keys := make([]string, 0, len(g.Types))
	for k := range g.Types {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Default returns the built-in rule set for the Hamilton Sinkler price list.
func Default() Rules {
	return Rules{
		Version: Version,
		Sheets: map[string]model.Category{
			"Cabinet Knobs":                  model.CategoryIndividual,
			"Cabinet Pulls":                  model.CategoryIndividual,
			"Appliance Pulls":                model.CategoryIndividual,
			"Back to Back Appliance Pulls":   model.CategoryIndividual,
			"Revival Modern":                 model.CategoryKit,
			"Revival Modern Special Finish":  model.CategoryKit,
			"Revival Classic":                model.CategoryKit,
			"Revival Classic Special Finish": model.CategoryKit,
			"Revival Components":             model.CategoryIndividual,
			"Revival Components Special Fin": model.CategoryIndividual,
			"Vents & Registers":              model.CategoryIndividual,
			"Artisan Door Pulls":             model.CategoryIndividual,
			"Bath Suites":                    model.CategoryIndividual,
			"Heritage":                       model.CategoryKit,
			"Metro Knobs + Levers":           model.CategoryKit,
			"Metro Tubular":                  model.CategoryKit,
			"Metro Pocket Door + Thumb Turn": model.CategoryKit,
			"Accessories":                    model.CategoryIndividual,
		},
		Finishes: []string{
			"AB", "BAB", "BN", "BRAB", "BRB", "BBML", "BRN", "DB", "BP", "NB", "MB", "SN",
			"ORB", "PW", "BLN", "PB", "PC", "PN", "SB", "UB",
		},
		Normalization: Normalization{
			PairedMarker:   "BTB",
			Separators:     []string{".", "-"},
			HandedPrefix:   "PH206R",
			HandedSuffixes: "RL",
			Protected:      []string{"RRR", "PRM", "PR", "HL", "ML", "PH206R", "NL", "OL"},
			Triggers:       []string{"HK", "HL", "PH", "ML"},
			Indicators:     []string{"LHR", "RHR", "RL", "RR"},
		},
		CustomFinish: CustomFinish{
			StandardSuffix: "XX",
			UpchargeRate:   0.20,
		},
		Structural: Structural{
			Sheets: []string{
				"Metro Knobs + Levers",
				"Metro Pocket Door + Thumb Turn",
				"Metro Tubular",
			},
			Groups: []MechanismGroup{
				{
					Name: "mortise",
					Types: map[string]string{
						"MKPS":  "passage",
						"MKPV":  "privacy",
						"MKDM":  "dummy",
						"MKSD":  "single dummy",
						"MKEN":  "entry",
						"MPD":   "pocket door",
						"MPDTT": "pocket door thumb turn",
					},
				},
				{
					Name: "tubular",
					Types: map[string]string{
						"MTPS": "passage",
						"MTPV": "privacy",
						"MTDM": "dummy",
					},
				},
			},
		},
		ExcludeMarker: "DPAM",
	}
}

// Load reads a YAML rules file layered over Default. Scalar and list keys
// present in the file replace the default; sheet entries are merged.
func Load(path string) (Rules, error) {
	r := Default()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "rules: read %s", path)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, eris.Wrap(err, "rules: parse")
	}
	if err := Validate(r); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// Marshal renders the rules as YAML.
func Marshal(r Rules) ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "rules: marshal")
	}
	return out, nil
}

// Category returns the category of a sheet. Unknown sheets are unclassified.
func (r Rules) Category(sheet string) model.Category {
	if c, ok := r.Sheets[sheet]; ok {
		return c
	}
	return model.CategoryUnclassified
}

// IsStructural reports whether a sheet is handled by the structural stage.
func (r Rules) IsStructural(sheet string) bool {
	for _, s := range r.Structural.Sheets {
		if s == sheet {
			return true
		}
	}
	return false
}

// Validate checks that a rule set is internally consistent.
func Validate(r Rules) error {
	var errs []string

	for name, c := range r.Sheets {
		if !c.Valid() {
			errs = append(errs, fmt.Sprintf("sheet %q has unknown category %q", name, c))
		}
	}
	if len(r.Finishes) == 0 {
		errs = append(errs, "finishes must not be empty")
	}
	for _, f := range r.Finishes {
		if strings.TrimSpace(f) == "" {
			errs = append(errs, "finishes must not contain blank entries")
			break
		}
	}
	if r.CustomFinish.UpchargeRate < 0 {
		errs = append(errs, "custom_finish.upcharge_rate must be >= 0")
	}
	for _, list := range [][]string{r.Normalization.Protected, r.Normalization.Triggers, r.Normalization.Indicators} {
		for _, tok := range list {
			if tok == "" {
				errs = append(errs, "normalization token lists must not contain blank entries")
			}
		}
	}
	for _, s := range r.Structural.Sheets {
		if r.Category(s) != model.CategoryKit {
			errs = append(errs, fmt.Sprintf("structural sheet %q must be categorized kit", s))
		}
	}
	for i, g := range r.Structural.Groups {
		if g.Name == "" {
			errs = append(errs, fmt.Sprintf("structural group %d has no name", i))
		}
		if len(g.Types) == 0 {
			errs = append(errs, fmt.Sprintf("structural group %q has no types", g.Name))
		}
		for k := range g.Types {
			if k == "" {
				errs = append(errs, fmt.Sprintf("structural group %q has a blank type key", g.Name))
			}
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return eris.Errorf("rules: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
