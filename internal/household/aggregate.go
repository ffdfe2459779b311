package household

import (
	"sort"

	"wrangle/internal/config"
)

// BucketOrder is the categorical order of age buckets.
type BucketOrder []string

// rank returns b's position in the order. Buckets that aren't in the order
// rank after all of those that are.
func (o BucketOrder) rank(b string) int {
	for i, v := range o {
		if v == b {
			return i
		}
	}
	return len(o)
}

// less orders a before b. Unranked buckets fall back to lexical order among
// themselves.
func (o BucketOrder) less(a, b string) bool {
	ra, rb := o.rank(a), o.rank(b)
	if ra != rb {
		return ra < rb
	}
	return ra == len(o) && a < b
}

type GenderTotal struct {
	Year   int
	Gender string
	Value  float64
}

type AgeTotal struct {
	Year      int
	AgeBucket string
	Value     float64
}

type GenderAgeTotal struct {
	Year      int
	Gender    string
	AgeBucket string
	Value     float64
}

// Aggregates holds the three derived views plus the bucket order used to sort
// them.
type Aggregates struct {
	Order         BucketOrder
	YearGender    []GenderTotal
	YearAge       []AgeTotal
	YearGenderAge []GenderAgeTotal
}

type yearGenderKey struct {
	year   int
	gender string
}

type yearAgeKey struct {
	year   int
	bucket string
}

type yearGenderAgeKey struct {
	year   int
	gender string
	bucket string
}

// Aggregate sums the s.Indicator records from s.MinYear on into the three
// views. Regions are summed together.
func Aggregate(recs []Record, s config.Schema) Aggregates {
	var filtered []Record
	for _, r := range recs {
		if r.Metric == s.Indicator && r.Year >= s.MinYear {
			filtered = append(filtered, r)
		}
	}

	var agg Aggregates
	seen := make(map[string]struct{})
	for _, r := range filtered {
		if r.Gender != s.TotalGender {
			continue
		}
		if _, ok := seen[r.AgeBucket]; !ok {
			seen[r.AgeBucket] = struct{}{}
			agg.Order = append(agg.Order, r.AgeBucket)
		}
	}

	isSplit := func(g string) bool { return g == s.MaleGender || g == s.FemaleGender }

	gy := make(map[yearGenderKey]float64)
	ya := make(map[yearAgeKey]float64)
	yga := make(map[yearGenderAgeKey]float64)
	for _, r := range filtered {
		switch {
		case isSplit(r.Gender):
			if r.AgeBucket == s.GrandTotalBucket {
				gy[yearGenderKey{r.Year, r.Gender}] += r.Value
			}
			yga[yearGenderAgeKey{r.Year, r.Gender, r.AgeBucket}] += r.Value
		case r.Gender == s.TotalGender:
			ya[yearAgeKey{r.Year, r.AgeBucket}] += r.Value
		}
	}

	for k, v := range gy {
		agg.YearGender = append(agg.YearGender, GenderTotal{k.year, k.gender, v})
	}
	sort.Slice(agg.YearGender, func(i, j int) bool {
		a, b := agg.YearGender[i], agg.YearGender[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Gender < b.Gender
	})

	for k, v := range ya {
		agg.YearAge = append(agg.YearAge, AgeTotal{k.year, k.bucket, v})
	}
	sort.Slice(agg.YearAge, func(i, j int) bool {
		a, b := agg.YearAge[i], agg.YearAge[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return agg.Order.less(a.AgeBucket, b.AgeBucket)
	})

	for k, v := range yga {
		agg.YearGenderAge = append(agg.YearGenderAge, GenderAgeTotal{k.year, k.gender, k.bucket, v})
	}
	sort.Slice(agg.YearGenderAge, func(i, j int) bool {
		a, b := agg.YearGenderAge[i], agg.YearGenderAge[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Gender != b.Gender {
			return a.Gender < b.Gender
		}
		return agg.Order.less(a.AgeBucket, b.AgeBucket)
	})

	return agg
}

// LatestYear returns the largest year in rows, or false if rows is empty.
func LatestYear(rows []GenderTotal) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	y := rows[0].Year
	for _, r := range rows[1:] {
		if r.Year > y {
			y = r.Year
		}
	}
	return y, true
}
