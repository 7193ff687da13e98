package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ResolvePrice applies the single price update rule shared by every stage:
// a present incoming price overwrites the authoritative one.
func ResolvePrice(authoritative, incoming decimal.NullDecimal) decimal.NullDecimal {
	if incoming.Valid {
		return incoming
	}
	return authoritative
}

// Policy decides which price a PriceTable keeps when a key repeats.
type Policy int

// Price table policies.
const (
	PolicyLastWrite Policy = iota
	PolicyFirstWrite
	PolicyMax
)

// PriceTable maps a normalized key to a price under an explicit policy.
// Keys are remembered even when none of their rows carried a price.
type PriceTable struct {
	policy Policy
	order  []string
	seen   map[string]bool
	prices map[string]decimal.Decimal
}

// NewPriceTable returns an empty table with the given policy.
func NewPriceTable(p Policy) *PriceTable {
	return &PriceTable{
		policy: p,
		seen:   make(map[string]bool),
		prices: make(map[string]decimal.Decimal),
	}
}

// Put records key and, when price is present, applies the table policy.
// Empty keys are ignored.
func (t *PriceTable) Put(key string, price decimal.NullDecimal) {
	if key == "" {
		return
	}
	if !t.seen[key] {
		t.seen[key] = true
		t.order = append(t.order, key)
	}
	if !price.Valid {
		return
	}
	cur, ok := t.prices[key]
	switch {
	case !ok:
		t.prices[key] = price.Decimal
	case t.policy == PolicyLastWrite:
		t.prices[key] = price.Decimal
	case t.policy == PolicyMax && price.Decimal.GreaterThan(cur):
		t.prices[key] = price.Decimal
	}
}

// Has reports whether key was ever recorded.
func (t *PriceTable) Has(key string) bool {
	return t.seen[key]
}

// Get returns the price held for key. ok is false when the key is unknown or
// never carried a price.
func (t *PriceTable) Get(key string) (decimal.NullDecimal, bool) {
	p, ok := t.prices[key]
	if !ok {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(p), true
}

// Keys returns the recorded keys in first-insertion order.
func (t *PriceTable) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of distinct keys.
func (t *PriceTable) Len() int {
	return len(t.order)
}

// ContainsKeyOf reports whether any recorded key is a substring of s.
func (t *PriceTable) ContainsKeyOf(s string) bool {
	if t.seen[s] {
		return true
	}
	for _, k := range t.order {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// MaxSubstring returns the highest price among priced keys that are
// substrings of s.
func (t *PriceTable) MaxSubstring(s string) (decimal.NullDecimal, bool) {
	var best decimal.NullDecimal
	for _, k := range t.order {
		p, ok := t.prices[k]
		if !ok || !strings.Contains(s, k) {
			continue
		}
		if !best.Valid || p.GreaterThan(best.Decimal) {
			best = decimal.NewNullDecimal(p)
		}
	}
	return best, best.Valid
}
