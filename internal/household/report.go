package household

import (
	"math"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"wrangle/internal/config"
)

// NoDataReport is returned by BuildReport when any view is empty.
const NoDataReport = "가용한 데이터가 부족하여 리포트를 생성할 수 없습니다."

// missingBucket labels a ranking that had no candidates.
const missingBucket = "-"

const reportTmpl = `{{.Year}}년 {{.Indicator}} 통계 요약

- 전체 {{.Indicator}}은 {{comma .Total}}명이며, {{.MaleLabel}} {{comma .Male}}명, {{.FemaleLabel}} {{comma .Female}}명으로 {{.GenderComparison}}.
- 연령대별로는 '{{.Top.Bucket}}' 구간의 {{.Indicator}}이 {{comma .Top.Value}}명으로 가장 많고, '{{.Bottom.Bucket}}' 구간이 {{comma .Bottom.Value}}명으로 가장 적습니다.
- {{.MaleLabel}}는 '{{.MaleTop.Bucket}}' 구간에서 {{comma .MaleTop.Value}}명으로 가장 많으며, {{.FemaleLabel}}는 '{{.FemaleTop.Bucket}}' 구간에서 {{comma .FemaleTop.Value}}명으로 정점을 이룹니다.
- {{.SeniorBucket}} {{.Indicator}}은 {{comma .Senior}}명으로 전체의 {{printf "%.1f" .SeniorRatio}}%를 차지하여 고령 가구원의 비중이 상당합니다.

위 지표를 바탕으로 보면 '{{.Top.Bucket}}' 전후 연령층이 {{.Indicator}}의 핵심을 이루고 있으며, 고령층 비중이 꾸준히 높아진다는 점에서 향후 고령 친화 정책과 중장년층 지원 전략이 중요해 보입니다.`

var report = template.Must(template.New("report").Funcs(template.FuncMap{
	"comma": func(v float64) string { return humanize.Comma(int64(math.Round(v))) },
}).Parse(reportTmpl))

type bucketValue struct {
	Bucket string
	Value  float64
}

type reportData struct {
	Year      int
	Indicator string

	MaleLabel, FemaleLabel string
	Total, Male, Female    float64
	GenderComparison       string

	Top, Bottom        bucketValue
	MaleTop, FemaleTop bucketValue

	SeniorBucket string
	Senior       float64
	SeniorRatio  float64
}

// BuildReport summarizes the latest year of agg as Korean prose.
//
// Values the views don't contain for the latest year count as zero, and a
// ranking with no candidate buckets is reported as "-" with zero members.
func BuildReport(agg Aggregates, s config.Schema) string {
	if len(agg.YearGender) == 0 || len(agg.YearAge) == 0 || len(agg.YearGenderAge) == 0 {
		return NoDataReport
	}
	year, _ := LatestYear(agg.YearGender)

	d := reportData{
		Year:         year,
		Indicator:    s.Indicator,
		MaleLabel:    s.MaleGender,
		FemaleLabel:  s.FemaleGender,
		SeniorBucket: s.SeniorBucket,
	}
	for _, r := range agg.YearGender {
		if r.Year != year {
			continue
		}
		switch r.Gender {
		case s.MaleGender:
			d.Male = r.Value
		case s.FemaleGender:
			d.Female = r.Value
		}
	}
	switch {
	case d.Female > d.Male:
		d.GenderComparison = "여성이 약간 더 많습니다"
	case d.Male > d.Female:
		d.GenderComparison = "남성이 약간 더 많습니다"
	default:
		d.GenderComparison = "남녀가 같습니다"
	}

	var groups []bucketValue
	for _, r := range agg.YearAge {
		if r.Year != year {
			continue
		}
		switch r.AgeBucket {
		case s.GrandTotalBucket:
			d.Total = r.Value
		case s.SeniorBucket:
			d.Senior = r.Value
		}
		if !s.IsSummaryBucket(r.AgeBucket) {
			groups = append(groups, bucketValue{r.AgeBucket, r.Value})
		}
	}
	if d.Total != 0 {
		d.SeniorRatio = d.Senior / d.Total * 100
	}
	d.Top = extreme(groups, func(a, b float64) bool { return a > b })
	d.Bottom = extreme(groups, func(a, b float64) bool { return a < b })

	var male, female []bucketValue
	for _, r := range agg.YearGenderAge {
		if r.Year != year || s.IsSummaryBucket(r.AgeBucket) {
			continue
		}
		switch r.Gender {
		case s.MaleGender:
			male = append(male, bucketValue{r.AgeBucket, r.Value})
		case s.FemaleGender:
			female = append(female, bucketValue{r.AgeBucket, r.Value})
		}
	}
	byMax := func(a, b float64) bool { return a > b }
	d.MaleTop = extreme(male, byMax)
	d.FemaleTop = extreme(female, byMax)

	var b strings.Builder
	if err := report.Execute(&b, d); err != nil {
		// The template and data types are fixed, so this can't happen.
		panic(err)
	}
	return b.String()
}

// extreme returns the first entry of vs that no later entry beats, or the
// missing placeholder for an empty slice.
func extreme(vs []bucketValue, beats func(a, b float64) bool) bucketValue {
	if len(vs) == 0 {
		return bucketValue{Bucket: missingBucket}
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if beats(v.Value, best.Value) {
			best = v
		}
	}
	return best
}
