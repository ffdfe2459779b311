// Package config loads the YAML configuration shared by the spaceship and
// households commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for both pipelines.
type Config struct {
	Spaceship  SpaceshipConfig `yaml:"spaceship"`
	Households HouseholdConfig `yaml:"households"`
	Chart      ChartConfig     `yaml:"chart"`
}

// SpaceshipConfig configures the passenger merge and analysis pipeline.
type SpaceshipConfig struct {
	Inputs    []string `yaml:"inputs"`     // merged in order, header taken from the first
	MergedCSV string   `yaml:"merged_csv"` // merge output, analysis input
	OutputDir string   `yaml:"output_dir"` // bar chart PNGs

	TargetColumn   string `yaml:"target_column"`   // boolean-like, mapped to 0/1
	AgeColumn      string `yaml:"age_column"`      // bucketed into decades
	CategoryColumn string `yaml:"category_column"` // one count chart per distinct value
}

// HouseholdConfig configures the wide-to-long household pipeline.
type HouseholdConfig struct {
	Input    string `yaml:"input"`
	Encoding string `yaml:"encoding"` // cp949, euc-kr, utf-8 or any WHATWG label

	YearGenderCSV    string `yaml:"year_gender_csv"`
	YearAgeCSV       string `yaml:"year_age_csv"`
	YearGenderAgeCSV string `yaml:"year_gender_age_csv"`
	Figure           string `yaml:"figure"`
	Report           string `yaml:"report"`
	Workbook         string `yaml:"workbook"` // optional XLSX, empty to skip

	Database DatabaseConfig `yaml:"database"`
	Schema   Schema         `yaml:"schema"`
}

// DatabaseConfig selects the optional SQL sink for long records and aggregates.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or pgx
	DSN    string `yaml:"dsn"`    // empty disables the sink
}

// Schema names the columns and labels the household transform depends on.
type Schema struct {
	RegionColumn string `yaml:"region_column"`
	GenderColumn string `yaml:"gender_column"`
	AgeColumn    string `yaml:"age_column"`
	YearColumn   string `yaml:"year_column"`
	MetricColumn string `yaml:"metric_column"`
	ValueColumn  string `yaml:"value_column"`

	Sentinels []string `yaml:"sentinels"`
	Indicator string   `yaml:"indicator"`
	MinYear   int      `yaml:"min_year"`

	TotalGender  string `yaml:"total_gender"`
	MaleGender   string `yaml:"male_gender"`
	FemaleGender string `yaml:"female_gender"`

	GrandTotalBucket string   `yaml:"grand_total_bucket"`
	SeniorBucket     string   `yaml:"senior_bucket"`
	SummaryBuckets   []string `yaml:"summary_buckets"` // excluded from charts and rankings
}

// ChartConfig controls PNG rendering.
type ChartConfig struct {
	DPI      int     `yaml:"dpi"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	FontPath string  `yaml:"font_path"` // optional TTF/OTF; failure to load is ignored
	Typeface string  `yaml:"typeface"`
}

// DefaultConfig returns the configuration the pipelines were written against.
func DefaultConfig() *Config {
	return &Config{
		Spaceship: SpaceshipConfig{
			Inputs:         []string{"train.csv", "test.csv"},
			MergedCSV:      "data.csv",
			OutputDir:      "charts",
			TargetColumn:   "Transported",
			AgeColumn:      "Age",
			CategoryColumn: "Destination",
		},
		Households: HouseholdConfig{
			Input:            "gender_list.csv",
			Encoding:         "cp949",
			YearGenderCSV:    "general_households_by_gender_year.csv",
			YearAgeCSV:       "general_households_by_age.csv",
			YearGenderAgeCSV: "general_households_by_gender_age.csv",
			Figure:           "gender_age_line.png",
			Report:           "general_household_trend_report.txt",
			Database:         DatabaseConfig{Driver: "sqlite"},
			Schema:           DefaultSchema(),
		},
		Chart: ChartConfig{
			DPI:      150,
			WidthIn:  8,
			HeightIn: 6,
			Typeface: "Malgun Gothic",
		},
	}
}

// DefaultSchema returns the KOSIS general-household layout.
func DefaultSchema() Schema {
	return Schema{
		RegionColumn:     "행정구역",
		GenderColumn:     "성별",
		AgeColumn:        "연령별",
		YearColumn:       "연도",
		MetricColumn:     "지표",
		ValueColumn:      "값",
		Sentinels:        []string{"X", "-"},
		Indicator:        "일반가구원",
		MinYear:          2015,
		TotalGender:      "계",
		MaleGender:       "남자",
		FemaleGender:     "여자",
		GrandTotalBucket: "합계",
		SeniorBucket:     "65세이상",
		SummaryBuckets:   []string{"합계", "15~64세", "65세이상"},
	}
}

// Load reads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets the database DSN come from the environment, so
// credentials don't have to live in the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WRANGLE_DB_DSN"); v != "" {
		c.Households.Database.DSN = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" && c.Households.Database.DSN == "" {
		c.Households.Database.DSN = v
		c.Households.Database.Driver = "pgx"
	}
}

// Validate reports the first setting that would make a pipeline fail early.
func (c *Config) Validate() error {
	if len(c.Spaceship.Inputs) == 0 {
		return errors.New("spaceship.inputs must name at least one CSV")
	}
	if c.Spaceship.MergedCSV == "" {
		return errors.New("spaceship.merged_csv is required")
	}
	if c.Households.Input == "" {
		return errors.New("households.input is required")
	}
	switch c.Households.Database.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("households.database.driver %q is not sqlite or pgx", c.Households.Database.Driver)
	}
	s := c.Households.Schema
	if s.Indicator == "" || s.TotalGender == "" || s.MaleGender == "" || s.FemaleGender == "" {
		return errors.New("households.schema needs indicator and gender labels")
	}
	if s.GrandTotalBucket == "" {
		return errors.New("households.schema.grand_total_bucket is required")
	}
	if c.Chart.DPI <= 0 || c.Chart.WidthIn <= 0 || c.Chart.HeightIn <= 0 {
		return errors.New("chart dpi and size must be positive")
	}
	return nil
}

// IsSummaryBucket reports whether bucket is a synthetic roll-up such as the
// grand total.
func (s Schema) IsSummaryBucket(bucket string) bool {
	for _, b := range s.SummaryBuckets {
		if b == bucket {
			return true
		}
	}
	return false
}
