package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/pricesync/internal/config"
	"github.com/sells-group/pricesync/internal/export"
	"github.com/sells-group/pricesync/internal/ingest"
	"github.com/sells-group/pricesync/internal/model"
	"github.com/sells-group/pricesync/internal/reconcile"
	"github.com/sells-group/pricesync/internal/rules"
)

var (
	reconcileCatalog   string
	reconcilePriceList string
	reconcileRules     string
	reconcileOutDir    string
	reconcileReport    string
	reconcileDryRun    bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the catalog against the latest supplier price list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyReconcileFlags(cfg)

		if err := cfg.Validate("reconcile"); err != nil {
			return err
		}

		r, err := rules.Load(cfg.Rules.Path)
		if err != nil {
			return err
		}

		priceList, err := resolvePriceList(cfg.PriceList)
		if err != nil {
			return err
		}

		catalog, sheets, err := loadInputs(ctx, cfg.Catalog, priceList, r)
		if err != nil {
			return err
		}

		res, err := reconcile.New(r).Run(ctx, catalog.Rows, sheets)
		if err != nil {
			return eris.Wrap(err, "reconcile")
		}

		if !reconcileDryRun {
			paths, err := writeOutputs(cfg.Output, catalog.Columns, res, time.Now())
			if err != nil {
				return err
			}
			zap.L().Info("outputs written",
				zap.String("updated", paths.Updated),
				zap.String("create", paths.Create),
			)
		}

		if cfg.Output.Report != "" {
			if err := os.WriteFile(cfg.Output.Report, []byte(reconcile.FormatReport(res)), 0o644); err != nil {
				return eris.Wrap(err, "write report")
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d prices updated, %d excluded, %d unmatched, %d items to create\n",
			res.RunID, len(res.Accepted), res.Excluded, res.Residual, len(res.Uncreated))
		return nil
	},
}

// applyReconcileFlags lets explicit flags override loaded configuration.
func applyReconcileFlags(c *config.Config) {
	if reconcileCatalog != "" {
		c.Catalog.Path = reconcileCatalog
	}
	if reconcilePriceList != "" {
		c.PriceList.Path = reconcilePriceList
	}
	if reconcileRules != "" {
		c.Rules.Path = reconcileRules
	}
	if reconcileOutDir != "" {
		c.Output.Dir = reconcileOutDir
	}
	if reconcileReport != "" {
		c.Output.Report = reconcileReport
	}
}

// resolvePriceList returns the configured workbook path, or discovers the
// latest one in the configured directory.
func resolvePriceList(pl config.PriceListConfig) (string, error) {
	if pl.Path != "" {
		return pl.Path, nil
	}
	path, err := ingest.LatestPriceList(pl.Dir, pl.Pattern)
	if err != nil {
		return "", err
	}
	zap.L().Info("using price list", zap.String("path", path))
	return path, nil
}

// loadInputs reads the catalog and the price list concurrently.
func loadInputs(ctx context.Context, cc config.CatalogConfig, priceList string, r rules.Rules) (model.Catalog, []model.Sheet, error) {
	var (
		catalog model.Catalog
		sheets  []model.Sheet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := ingest.CatalogOptions{
			HeaderRow:        cc.HeaderRow,
			SkipDataRows:     cc.SkipDataRows,
			EncodingFallback: cc.EncodingFallback,
		}
		c, stats, err := ingest.LoadCatalog(gctx, cc.Path, opts)
		if err != nil {
			return err
		}
		zap.L().Info("catalog loaded",
			zap.String("path", cc.Path),
			zap.Int("rows", stats.Read),
			zap.Int("malformed", stats.Malformed),
			zap.Int("duplicates", stats.Duplicates),
		)
		catalog = c
		return nil
	})
	g.Go(func() error {
		s, err := ingest.LoadPriceList(priceList, r)
		if err != nil {
			return err
		}
		zap.L().Info("price list loaded", zap.String("path", priceList), zap.Int("sheets", len(s)))
		sheets = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Catalog{}, nil, eris.Wrap(err, "load inputs")
	}
	return catalog, sheets, nil
}

// writeOutputs writes the accepted and uncreated files for a run at t.
func writeOutputs(oc config.OutputConfig, columns []string, res *reconcile.Result, t time.Time) (export.Paths, error) {
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return export.Paths{}, eris.Wrapf(err, "create output dir %s", oc.Dir)
	}
	paths := export.OutputPaths(oc.Dir, oc.UpdatedPrefix, oc.CreatePrefix, t)
	if err := export.WriteCatalogCSV(paths.Updated, columns, res.Accepted); err != nil {
		return export.Paths{}, err
	}
	if err := export.WriteUncreatedCSV(paths.Create, res.Uncreated); err != nil {
		return export.Paths{}, err
	}
	return paths, nil
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileCatalog, "catalog", "", "path to the catalog CSV export (overrides catalog.path)")
	reconcileCmd.Flags().StringVar(&reconcilePriceList, "price-list", "", "path to the supplier workbook (default: latest in price_list.dir)")
	reconcileCmd.Flags().StringVar(&reconcileRules, "rules", "", "path to a YAML rules override file")
	reconcileCmd.Flags().StringVar(&reconcileOutDir, "out-dir", "", "directory for output CSVs (overrides output.dir)")
	reconcileCmd.Flags().StringVar(&reconcileReport, "report", "", "write a Markdown run report to this path")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "run without writing output CSVs")
	rootCmd.AddCommand(reconcileCmd)
}
