package household

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"wrangle/internal/chart"
	"wrangle/internal/config"
	"wrangle/internal/filewriter"
	"wrangle/internal/store"
)

// Run executes the household pipeline end to end: load, aggregate, save,
// plot, report, then print a summary to out.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	hc := cfg.Households
	s := hc.Schema

	f, err := os.Open(hc.Input)
	if err != nil {
		return err
	}
	wide, err := ReadWide(f, hc.Encoding)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %v: %w", hc.Input, err)
	}
	recs, err := Tidy(wide, s)
	if err != nil {
		return fmt.Errorf("tidy %v: %w", hc.Input, err)
	}
	logger.Info("loaded wide table",
		zap.String("stage", "extract"),
		zap.String("path", hc.Input),
		zap.Int("rows", len(wide.Rows)),
		zap.Int("columns", len(wide.Header)),
		zap.Int("records", len(recs)))

	agg := Aggregate(recs, s)
	logger.Info("aggregated",
		zap.String("stage", "transform"),
		zap.String("indicator", s.Indicator),
		zap.Int("min_year", s.MinYear),
		zap.Strings("bucket_order", agg.Order),
		zap.Int("year_gender", len(agg.YearGender)),
		zap.Int("year_age", len(agg.YearAge)),
		zap.Int("year_gender_age", len(agg.YearGenderAge)))

	if err := WriteCSVs(agg, s, hc.YearGenderCSV, hc.YearAgeCSV, hc.YearGenderAgeCSV); err != nil {
		return err
	}
	logger.Debug("wrote csv views", zap.String("stage", "load"),
		zap.Strings("paths", []string{hc.YearGenderCSV, hc.YearAgeCSV, hc.YearGenderAgeCSV}))

	if hc.Workbook != "" {
		if err := WriteWorkbook(hc.Workbook, agg, s); err != nil {
			return fmt.Errorf("write %v: %w", hc.Workbook, err)
		}
		logger.Debug("wrote workbook", zap.String("stage", "load"), zap.String("path", hc.Workbook))
	}

	if hc.Database.DSN != "" {
		runID, err := saveToDB(ctx, hc, recs, agg)
		if err != nil {
			return fmt.Errorf("store run: %w", err)
		}
		logger.Info("stored run", zap.String("stage", "load"),
			zap.String("driver", hc.Database.Driver), zap.String("run_id", runID))
	}

	if err := chart.UseFont(cfg.Chart.FontPath, cfg.Chart.Typeface); err != nil {
		logger.Debug("using default chart font", zap.Error(err))
	}
	plotted, err := PlotGenderAge(hc.Figure, agg.YearGenderAge, agg.Order, s, chart.OptionsFrom(cfg.Chart))
	if err != nil {
		return fmt.Errorf("plot %v: %w", hc.Figure, err)
	}
	if !plotted {
		logger.Info("nothing to plot", zap.String("path", hc.Figure))
	}

	if err := filewriter.WriteFile(hc.Report, []byte(BuildReport(agg, s))); err != nil {
		return fmt.Errorf("write %v: %w", hc.Report, err)
	}

	PrintSummary(out, agg, s)
	fmt.Fprintf(out, "\n리포트 저장: %s\n", filepath.Base(hc.Report))
	if _, err := os.Stat(hc.Figure); err == nil {
		fmt.Fprintf(out, "그래프 저장: %s\n", filepath.Base(hc.Figure))
	}
	return nil
}

func saveToDB(ctx context.Context, hc config.HouseholdConfig, recs []Record, agg Aggregates) (string, error) {
	st, err := store.Open(ctx, hc.Database.Driver, hc.Database.DSN)
	if err != nil {
		return "", err
	}
	defer st.Close()
	return st.SaveRun(ctx, hc.Input, storeTables(recs, agg)...)
}

func storeTables(recs []Record, agg Aggregates) []store.Table {
	long := store.Table{
		Name: "household_records",
		Columns: []store.Column{
			{Name: "region", Type: store.Text},
			{Name: "gender", Type: store.Text},
			{Name: "age_bucket", Type: store.Text},
			{Name: "year", Type: store.Integer},
			{Name: "metric", Type: store.Text},
			{Name: "value", Type: store.Real},
		},
	}
	for _, r := range recs {
		long.Rows = append(long.Rows, []any{r.Region, r.Gender, r.AgeBucket, r.Year, r.Metric, r.Value})
	}

	yg := store.Table{
		Name: "household_by_gender_year",
		Columns: []store.Column{
			{Name: "year", Type: store.Integer},
			{Name: "gender", Type: store.Text},
			{Name: "value", Type: store.Real},
		},
	}
	for _, r := range agg.YearGender {
		yg.Rows = append(yg.Rows, []any{r.Year, r.Gender, r.Value})
	}

	ya := store.Table{
		Name: "household_by_age",
		Columns: []store.Column{
			{Name: "year", Type: store.Integer},
			{Name: "age_bucket", Type: store.Text},
			{Name: "bucket_rank", Type: store.Integer},
			{Name: "value", Type: store.Real},
		},
	}
	for _, r := range agg.YearAge {
		ya.Rows = append(ya.Rows, []any{r.Year, r.AgeBucket, agg.Order.rank(r.AgeBucket), r.Value})
	}

	yga := store.Table{
		Name: "household_by_gender_age",
		Columns: []store.Column{
			{Name: "year", Type: store.Integer},
			{Name: "gender", Type: store.Text},
			{Name: "age_bucket", Type: store.Text},
			{Name: "bucket_rank", Type: store.Integer},
			{Name: "value", Type: store.Real},
		},
	}
	for _, r := range agg.YearGenderAge {
		yga.Rows = append(yga.Rows, []any{r.Year, r.Gender, r.AgeBucket, agg.Order.rank(r.AgeBucket), r.Value})
	}
	return []store.Table{long, yg, ya, yga}
}
