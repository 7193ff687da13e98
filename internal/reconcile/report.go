package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// FormatReport renders a Markdown summary of a reconciliation run.
func FormatReport(r *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Price Reconciliation Report\n")
	fmt.Fprintf(&b, "Run ID: %s\n\n", r.RunID)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Catalog rows: %d\n", r.Catalog)
	fmt.Fprintf(&b, "- Supplier sheets: %d\n", r.Sheets)
	fmt.Fprintf(&b, "- Matched: %d\n", len(r.Matches))
	fmt.Fprintf(&b, "- Accepted: %d\n", len(r.Accepted))
	fmt.Fprintf(&b, "- Excluded: %d\n", r.Excluded)
	fmt.Fprintf(&b, "- Unmatched: %d\n", r.Residual)
	fmt.Fprintf(&b, "- Items to create: %d\n\n", len(r.Uncreated))

	b.WriteString("## Stages\n")
	if len(r.Stages) == 0 {
		b.WriteString("No stages run.\n\n")
	} else {
		b.WriteString("| Stage | Before | Matched | After | Unpriced | Skipped sheets |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, s := range r.Stages {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d |\n",
				s.Name, s.Before, s.Matched, s.After, s.Unpriced, s.Skipped)
		}
		b.WriteString("\n")
	}

	if len(r.Skipped) > 0 {
		b.WriteString("## Skipped Sheets\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "- %s / %s: %s\n", s.Stage, s.Sheet, s.Reason)
		}
		b.WriteString("\n")
	}

	if len(r.Uncreated) > 0 {
		counts := make(map[string]int)
		for _, u := range r.Uncreated {
			counts[u.Sheet]++
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("## Items to Create by Sheet\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d\n", name, counts[name])
		}
	}

	return b.String()
}
