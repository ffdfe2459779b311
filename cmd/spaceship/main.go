package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wrangle/internal/chart"
	"wrangle/internal/config"
	"wrangle/internal/logging"
	"wrangle/internal/merge"
	"wrangle/internal/passenger"
)

type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "spaceship",
		Short: "Merge the Spaceship Titanic CSVs and chart outcome by age decade",
		Long: `Concatenates the configured passenger CSVs into one file (header taken
from the first) and renders bar charts of the outcome rate per age decade and
of passenger counts per decade for every destination.

Run without a subcommand to merge and then analyse.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.merge(); err != nil {
				return err
			}
			return a.analyze()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "wrangle.yaml", "Config file (defaults apply when missing)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "merge",
			Short: "Concatenate the input CSVs into the merged CSV",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.merge() },
		},
		&cobra.Command{
			Use:   "analyze",
			Short: "Chart the merged CSV by age decade",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.analyze() },
		},
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		logger.Error("load config", zap.String("path", a.configPath), zap.Error(err))
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.String("path", a.configPath), zap.Error(err))
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) merge() error {
	sc := a.cfg.Spaceship
	res, err := merge.Merge(sc.MergedCSV, sc.Inputs...)
	if err != nil {
		a.logger.Error("merge failed", zap.Strings("inputs", sc.Inputs), zap.Error(err))
		return err
	}
	for _, d := range res.Drift {
		a.logger.Warn("header differs from first input; rows copied unchanged",
			zap.String("source", d.Source),
			zap.Strings("missing", d.Missing),
			zap.Strings("extra", d.Extra),
			zap.Float64("similarity", d.Similarity))
	}
	a.logger.Info("merged", zap.String("stage", "load"), zap.String("path", sc.MergedCSV), zap.Ints("rows", res.Rows))

	for _, in := range sc.Inputs {
		fmt.Fprintf(a.out, "Input:  %s\n", in)
	}
	fmt.Fprintf(a.out, "Output: %s\n", sc.MergedCSV)
	fmt.Fprintf(a.out, "Rows:   %d\n", res.Total())
	fmt.Fprintf(a.out, "Cols:   %d\n", len(res.Header))
	return nil
}

func (a *app) analyze() error {
	sc := a.cfg.Spaceship
	an, err := passenger.Load(sc.MergedCSV, passenger.Columns{
		Target:   sc.TargetColumn,
		Age:      sc.AgeColumn,
		Category: sc.CategoryColumn,
	})
	if err != nil {
		a.logger.Error("load merged csv", zap.String("path", sc.MergedCSV), zap.Error(err))
		return err
	}
	a.logger.Info("loaded", zap.String("stage", "extract"), zap.String("path", sc.MergedCSV), zap.Int("rows", an.Rows()))

	if err := chart.UseFont(a.cfg.Chart.FontPath, a.cfg.Chart.Typeface); err != nil {
		a.logger.Debug("using default chart font", zap.Error(err))
	}
	opts := chart.OptionsFrom(a.cfg.Chart)

	ratePath := filepath.Join(sc.OutputDir, passenger.RateChartName)
	ok, err := an.PlotRate(ratePath, opts)
	if err != nil {
		a.logger.Error("plot rate", zap.String("path", ratePath), zap.Error(err))
		return err
	}
	var saved []string
	if ok {
		saved = append(saved, ratePath)
	} else {
		a.logger.Info("no rate to plot", zap.String("column", sc.TargetColumn))
	}

	written, err := an.PlotCategoryCounts(sc.OutputDir, opts)
	if err != nil {
		a.logger.Error("plot category counts", zap.String("dir", sc.OutputDir), zap.Error(err))
		return err
	}
	saved = append(saved, written...)

	fmt.Fprintf(a.out, "Charts: %d\n", len(saved))
	for _, p := range saved {
		fmt.Fprintf(a.out, "  %s\n", p)
	}
	return nil
}
