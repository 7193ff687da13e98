package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/pricesync/internal/rules"
)

var rulesPath string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective classification rules as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := rulesPath
		if path == "" && cfg != nil {
			path = cfg.Rules.Path
		}
		r, err := rules.Load(path)
		if err != nil {
			return err
		}
		out, err := rules.Marshal(r)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesPath, "rules", "", "path to a YAML rules override file")
	rootCmd.AddCommand(rulesCmd)
}
