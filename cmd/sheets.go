package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/pricesync/internal/ingest"
	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/rules"
)

var (
	sheetsPriceList string
	sheetsRules     string
	sheetsName      string
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Show each price list sheet with its category and inferred columns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if sheetsPriceList != "" {
			cfg.PriceList.Path = sheetsPriceList
		}
		if sheetsRules != "" {
			cfg.Rules.Path = sheetsRules
		}
		if err := cfg.Validate("sheets"); err != nil {
			return err
		}

		r, err := rules.Load(cfg.Rules.Path)
		if err != nil {
			return err
		}
		path, err := resolvePriceList(cfg.PriceList)
		if err != nil {
			return err
		}
		var sheets []model.Sheet
		if sheetsName != "" {
			s, err := ingest.LoadSheet(path, sheetsName, r)
			if err != nil {
				return err
			}
			sheets = []model.Sheet{s}
		} else {
			sheets, err = ingest.LoadPriceList(path, r)
			if err != nil {
				return err
			}
		}

		printSheets(cmd.OutOrStdout(), sheets, r)
		return nil
	},
}

func printSheets(out io.Writer, sheets []model.Sheet, r rules.Rules) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SHEET\tCATEGORY\tROWS\tITEM\tPRICE\tDESC\tALT PRICES\tNOTE")
	_, _ = fmt.Fprintln(w, "-----\t--------\t----\t----\t-----\t----\t----------\t----")

	for _, s := range sheets {
		item, _ := model.FindColumn(s.Columns, model.KeywordItem)
		price, _ := model.FindColumn(s.Columns, model.KeywordPrice)
		desc, _ := model.FindColumn(s.Columns, model.KeywordDescription)

		note := ""
		switch {
		case item == "" || price == "":
			note = "missing column"
		case r.IsStructural(s.Name):
			note = "structural"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%d\t%s\n",
			s.Name, s.Category, len(s.Rows), dash(item), dash(price), dash(desc), len(s.AltPriceColumns), note)
	}
	_ = w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	sheetsCmd.Flags().StringVar(&sheetsPriceList, "price-list", "", "path to the supplier workbook (default: latest in price_list.dir)")
	sheetsCmd.Flags().StringVar(&sheetsRules, "rules", "", "path to a YAML rules override file")
	sheetsCmd.Flags().StringVar(&sheetsName, "sheet", "", "show only this sheet")
	rootCmd.AddCommand(sheetsCmd)
}
