package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrangle/internal/config"
)

func setupWorkspace(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	train := filepath.Join(dir, "train.csv")
	test := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(train, []byte("PassengerId,Destination,Age,Transported\n"+
		"0001_01,TRAPPIST-1e,39.0,False\n"+
		"0002_01,TRAPPIST-1e,24.0,True\n"+
		"0003_01,55 Cancri e,58.0,True\n"), 0o644))
	require.NoError(t, os.WriteFile(test, []byte("PassengerId,Destination,Age\n"+
		"0013_01,TRAPPIST-1e,27.0\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Spaceship.Inputs = []string{train, test}
	cfg.Spaceship.MergedCSV = filepath.Join(dir, "data.csv")
	cfg.Spaceship.OutputDir = filepath.Join(dir, "charts")
	cfg.Chart = config.ChartConfig{DPI: 40, WidthIn: 4, HeightIn: 3}

	path := filepath.Join(dir, "wrangle.yaml")
	require.NoError(t, cfg.Save(path))
	return path, cfg
}

func TestRoot_MergeThenAnalyze(t *testing.T) {
	cfgPath, cfg := setupWorkspace(t)

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--config", cfgPath})
	require.NoError(t, cmd.Execute())

	merged, err := os.ReadFile(cfg.Spaceship.MergedCSV)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(merged), "\r\n"))

	assert.Contains(t, out.String(), "Rows:   4\n")
	assert.Contains(t, out.String(), "Charts: 3\n")
	for _, name := range []string{"age_group_rate.png", "age_by_Destination_TRAPPIST-1e.png", "age_by_Destination_55_Cancri_e.png"} {
		assert.FileExists(t, filepath.Join(cfg.Spaceship.OutputDir, name))
	}
}

func TestMergeSubcommand(t *testing.T) {
	cfgPath, cfg := setupWorkspace(t)

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"merge", "--config", cfgPath})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, cfg.Spaceship.MergedCSV)
	assert.NoDirExists(t, cfg.Spaceship.OutputDir)
	assert.Contains(t, out.String(), "Output: "+cfg.Spaceship.MergedCSV+"\n")
}

func TestAnalyzeSubcommand_MissingInput(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", "--config", cfgPath})
	cmd.SetErr(&bytes.Buffer{})
	assert.ErrorIs(t, cmd.Execute(), os.ErrNotExist)
}
