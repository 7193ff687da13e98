// Package normalize canonicalizes supplier item codes and catalog descriptions
// into join keys.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/pricesync/internal/rules"
)

// protectMark separates protected tokens from the surrounding text when
// testing for trigger substrings, so a trigger never spans a token boundary.
const protectMark = "\x00"

// Normalizer produces canonical keys. It is immutable and safe for concurrent use.
type Normalizer struct {
	paired         string
	separators     *strings.Replacer
	handedPrefix   string
	handedSuffixes string
	protected      *regexp.Regexp
	triggers       []string
	indicators     *regexp.Regexp
}

// New builds a Normalizer from the normalization rules. Token lists keep their
// configured order: earlier alternatives win when two match at the same position.
func New(cfg rules.Normalization) *Normalizer {
	pairs := make([]string, 0, 2*len(cfg.Separators))
	for _, sep := range cfg.Separators {
		pairs = append(pairs, sep, "")
	}
	return &Normalizer{
		paired:         cfg.PairedMarker,
		separators:     strings.NewReplacer(pairs...),
		handedPrefix:   cfg.HandedPrefix,
		handedSuffixes: cfg.HandedSuffixes,
		protected:      alternation(cfg.Protected),
		triggers:       cfg.Triggers,
		indicators:     alternation(cfg.Indicators),
	}
}

// Default returns a Normalizer for the built-in rules.
func Default() *Normalizer {
	return New(rules.Default().Normalization)
}

func alternation(tokens []string) *regexp.Regexp {
	if len(tokens) == 0 {
		return nil
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// Key returns the canonical form of s. The rule pass is repeated until the
// output stops changing, so Key(Key(s)) == Key(s).
func (n *Normalizer) Key(s string) string {
	key := strings.TrimSpace(s)
	if key == "" {
		return ""
	}
	// Each pass either shortens the key or only moves the paired marker,
	// so this settles within len(key)+2 passes.
	for range len(key) + 2 {
		next := n.pass(key)
		if next == key {
			break
		}
		key = next
	}
	return key
}

// Keys applies Key element-wise.
func (n *Normalizer) Keys(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = n.Key(s)
	}
	return out
}

func (n *Normalizer) pass(s string) string {
	s = strings.TrimSpace(s)
	paired := n.paired != "" && strings.Contains(s, n.paired)
	if paired {
		s = strings.ReplaceAll(s, n.paired, "")
	}

	s = n.separators.Replace(s)
	s = n.collapseHanded(s)

	segs := n.protect(s)
	if n.triggered(segs) && n.indicators != nil {
		for i := range segs {
			if !segs[i].protected {
				segs[i].text = n.indicators.ReplaceAllString(segs[i].text, "")
			}
		}
	}

	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.text)
	}
	if paired {
		b.WriteString(n.paired)
	}
	return b.String()
}

// collapseHanded rewrites prefix+R / prefix+L to prefix when the handedness
// letter is not followed by another letter (PH206RR -> PH206R).
func (n *Normalizer) collapseHanded(s string) string {
	if n.handedPrefix == "" || n.handedSuffixes == "" {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], n.handedPrefix)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		end := i + j + len(n.handedPrefix)
		b.WriteString(s[i:end])
		i = end
		if end < len(s) && strings.IndexByte(n.handedSuffixes, s[end]) >= 0 &&
			(end+1 == len(s) || !isLetter(s[end+1])) {
			i = end + 1
		}
	}
	return b.String()
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

type segment struct {
	text      string
	protected bool
}

// protect splits s into protected tokens and the free text between them.
func (n *Normalizer) protect(s string) []segment {
	if n.protected == nil {
		return []segment{{text: s}}
	}
	var segs []segment
	last := 0
	for _, loc := range n.protected.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			segs = append(segs, segment{text: s[last:loc[0]]})
		}
		segs = append(segs, segment{text: s[loc[0]:loc[1]], protected: true})
		last = loc[1]
	}
	if last < len(s) {
		segs = append(segs, segment{text: s[last:]})
	}
	return segs
}

func (n *Normalizer) triggered(segs []segment) bool {
	var b strings.Builder
	for _, seg := range segs {
		if seg.protected {
			b.WriteString(protectMark)
			b.WriteString(seg.text)
			b.WriteString(protectMark)
			continue
		}
		b.WriteString(seg.text)
	}
	marked := b.String()
	for _, t := range n.triggers {
		if strings.Contains(marked, t) {
			return true
		}
	}
	return false
}

// StripFinishes removes every occurrence of each finish code from code,
// longest finishes first so a short finish never splits a longer one.
func StripFinishes(code string, finishes []string) string {
	sorted := make([]string, len(finishes))
	copy(sorted, finishes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	for _, f := range sorted {
		if f == "" {
			continue
		}
		code = strings.ReplaceAll(code, f, "")
	}
	return code
}

// Base returns the finish-free key of an item code.
func (n *Normalizer) Base(code string, finishes []string) string {
	return StripFinishes(n.Key(code), finishes)
}
