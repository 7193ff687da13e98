package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/pricesync/internal/normalize"
	"github.com/sells-group/pricesync/internal/rules"
)

var normalizeRules string

var normalizeCmd = &cobra.Command{
	Use:   "normalize CODE...",
	Short: "Print the normalized key and finish-free base of item codes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := normalizeRules
		if path == "" && cfg != nil {
			path = cfg.Rules.Path
		}
		r, err := rules.Load(path)
		if err != nil {
			return err
		}

		printKeys(cmd.OutOrStdout(), normalize.New(r.Normalization), r.Finishes, args)
		return nil
	},
}

func printKeys(out io.Writer, n *normalize.Normalizer, finishes []string, codes []string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INPUT\tKEY\tBASE")
	for _, code := range codes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", code, n.Key(code), n.Base(code, finishes))
	}
	_ = w.Flush()
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeRules, "rules", "", "path to a YAML rules override file")
	rootCmd.AddCommand(normalizeCmd)
}
