package household

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/xuri/excelize/v2"

	"wrangle/internal/config"
	"wrangle/internal/csvio"
	"wrangle/internal/filewriter"
)

// view is one aggregate rendered as a header and typed cells
// (int years, string labels, float64 values).
type view struct {
	sheet  string
	title  string
	header []string
	rows   [][]any
}

func (a Aggregates) views(s config.Schema) []view {
	yg := view{
		sheet:  "by_gender_year",
		title:  fmt.Sprintf("연도별 %s/%s %s", s.MaleGender, s.FemaleGender, s.Indicator),
		header: []string{s.YearColumn, s.GenderColumn, s.ValueColumn},
	}
	for _, r := range a.YearGender {
		yg.rows = append(yg.rows, []any{r.Year, r.Gender, r.Value})
	}

	ya := view{
		sheet:  "by_age",
		title:  fmt.Sprintf("연령별 %s(%s)", s.Indicator, s.TotalGender),
		header: []string{s.YearColumn, s.AgeColumn, s.ValueColumn},
	}
	for _, r := range a.YearAge {
		ya.rows = append(ya.rows, []any{r.Year, r.AgeBucket, r.Value})
	}

	yga := view{
		sheet:  "by_gender_age",
		title:  fmt.Sprintf("%s·%s 연령별 %s", s.MaleGender, s.FemaleGender, s.Indicator),
		header: []string{s.YearColumn, s.GenderColumn, s.AgeColumn, s.ValueColumn},
	}
	for _, r := range a.YearGenderAge {
		yga.rows = append(yga.rows, []any{r.Year, r.Gender, r.AgeBucket, r.Value})
	}
	return []view{yg, ya, yga}
}

func (v view) records() [][]string {
	recs := make([][]string, len(v.rows))
	for i, row := range v.rows {
		rec := make([]string, len(row))
		for j, c := range row {
			rec[j] = cellString(c)
		}
		recs[i] = rec
	}
	return recs
}

func cellString(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case float64:
		return csvio.FormatFloat(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// WriteCSVs writes the year×gender, year×age and year×gender×age views to
// the three paths, in that order.
func WriteCSVs(a Aggregates, s config.Schema, yearGender, yearAge, yearGenderAge string) error {
	paths := []string{yearGender, yearAge, yearGenderAge}
	for i, v := range a.views(s) {
		if err := csvio.WriteTable(paths[i], v.header, v.records()); err != nil {
			return fmt.Errorf("write %v: %w", paths[i], err)
		}
	}
	return nil
}

// WriteWorkbook stores the three views as sheets of one XLSX file.
func WriteWorkbook(path string, a Aggregates, s config.Schema) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, v := range a.views(s) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", v.sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(v.sheet); err != nil {
			return err
		}
		for c, h := range v.header {
			cell, err := excelize.CoordinatesToCellName(c+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(v.sheet, cell, h); err != nil {
				return err
			}
		}
		for r, row := range v.rows {
			for c, val := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(v.sheet, cell, val); err != nil {
					return err
				}
			}
		}
	}

	fw, err := filewriter.New(path)
	if err != nil {
		return err
	}
	if err := f.Write(fw); err != nil {
		fw.Abort()
		return err
	}
	return fw.Close()
}

// PrintSummary writes the three views to w as bordered tables.
func PrintSummary(w io.Writer, a Aggregates, s config.Schema) {
	for i, v := range a.views(s) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, v.title)
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(v.header...).
			Rows(v.records()...)
		fmt.Fprintln(w, t.Render())
	}
}
