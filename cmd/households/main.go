package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wrangle/internal/config"
	"wrangle/internal/household"
	"wrangle/internal/logging"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		configPath string
		verbose    bool
		logger     *zap.Logger
	)

	root := &cobra.Command{
		Use:   "households",
		Short: "Reshape the KOSIS household-member table and report on the latest year",
		Long: `Reads the wide CP949 household-member CSV, melts it into long records,
aggregates general household members by year, gender and age bucket, and
writes three CSV views, a line chart of the latest year, a text report and
a console summary. An XLSX workbook and a SQLite/Postgres sink are written
when configured.

The database DSN can also be given with WRANGLE_DB_DSN or DATABASE_URL.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				logger.Error("load config", zap.String("path", configPath), zap.Error(err))
				return err
			}
			if err := cfg.Validate(); err != nil {
				logger.Error("invalid config", zap.String("path", configPath), zap.Error(err))
				return err
			}
			if err := household.Run(cmd.Context(), cfg, logger, out); err != nil {
				logger.Error("household pipeline failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "wrangle.yaml", "Config file (defaults apply when missing)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	return root
}
