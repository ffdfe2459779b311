// Package merge concatenates CSV files that share a header.
package merge

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"wrangle/internal/csvio"
	"wrangle/internal/filewriter"
)

// Drift describes a source whose header differs from the first source's.
type Drift struct {
	Source  string
	Missing []string // in the first header, absent here
	Extra   []string // here, absent from the first header

	// Similarity is the mean best-match header similarity of the first
	// header's columns against this header, in [0, 1].
	Similarity float64
}

// Result summarizes a merge.
type Result struct {
	Header []string
	Rows   []int // data rows copied per source, in source order
	Drift  []Drift
}

// Total is the number of data rows written.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Rows {
		n += c
	}
	return n
}

// Merge writes the header of srcs[0] followed by the data rows of every
// source, in order, to dst. Records are minimally quoted and end in "\r\n".
// Sources whose header differs from the first are still copied and reported
// in Result.Drift.
func Merge(dst string, srcs ...string) (Result, error) {
	var res Result
	if len(srcs) == 0 {
		return res, fmt.Errorf("merge %v: no sources", dst)
	}

	tables := make([]*csvio.Table, len(srcs))
	for i, src := range srcs {
		t, err := csvio.ReadFile(src, "utf-8")
		if err != nil {
			return res, err
		}
		tables[i] = t
	}
	res.Header = tables[0].Header
	for i, t := range tables[1:] {
		if d, ok := compareHeaders(res.Header, t.Header); !ok {
			d.Source = srcs[i+1]
			res.Drift = append(res.Drift, d)
		}
	}

	fw, err := filewriter.New(dst)
	if err != nil {
		return res, err
	}
	w := csvio.NewWriter(fw, csvio.PythonTerminator)
	if err := w.Write(res.Header); err != nil {
		fw.Abort()
		return res, err
	}
	for _, t := range tables {
		for _, rec := range t.Rows {
			if err := w.Write(rec); err != nil {
				fw.Abort()
				return res, err
			}
		}
		res.Rows = append(res.Rows, len(t.Rows))
	}
	if err := fw.Close(); err != nil {
		return res, fmt.Errorf("merge %v: %w", dst, err)
	}
	return res, nil
}

func compareHeaders(want, got []string) (Drift, bool) {
	if slices.Equal(want, got) {
		return Drift{}, true
	}
	var d Drift
	have := make(map[string]struct{}, len(got))
	for _, h := range got {
		have[h] = struct{}{}
	}
	wanted := make(map[string]struct{}, len(want))
	for _, h := range want {
		wanted[h] = struct{}{}
		if _, ok := have[h]; !ok {
			d.Missing = append(d.Missing, h)
		}
	}
	for _, h := range got {
		if _, ok := wanted[h]; !ok {
			d.Extra = append(d.Extra, h)
		}
	}

	var sum float64
	for _, w := range want {
		best := 0.0
		for _, g := range got {
			best = math.Max(best, headerSimilarity(w, g))
		}
		sum += best
	}
	if len(want) > 0 {
		d.Similarity = sum / float64(len(want))
	}
	return d, false
}

var reToken = regexp.MustCompile(`[\p{L}\p{N}]+`)

func headerTokens(name string) []string {
	return reToken.FindAllString(strings.ToLower(name), -1)
}

// headerSimilarity scores two column names by the better of their
// normalized edit distance and their token-set Jaccard index.
func headerSimilarity(a, b string) float64 {
	at := headerTokens(a)
	bt := headerTokens(b)
	aNorm := strings.Join(at, "")
	bNorm := strings.Join(bt, "")
	if aNorm == "" && bNorm == "" {
		return 1
	}
	seq := normalizedLevenshteinSimilarity(aNorm, bNorm)

	aSet := make(map[string]struct{}, len(at))
	for _, t := range at {
		aSet[t] = struct{}{}
	}
	inter := 0
	bSet := make(map[string]struct{}, len(bt))
	for _, t := range bt {
		if _, dup := bSet[t]; dup {
			continue
		}
		bSet[t] = struct{}{}
		if _, ok := aSet[t]; ok {
			inter++
		}
	}
	var jacc float64
	if union := len(aSet) + len(bSet) - inter; union > 0 {
		jacc = float64(inter) / float64(union)
	}
	return math.Max(seq, jacc)
}

func normalizedLevenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	denom := max(len([]rune(a)), len([]rune(b)))
	return math.Max(0, 1-float64(levenshteinDistance(a, b))/float64(denom))
}

func levenshteinDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) < len(br) {
		ar, br = br, ar
	}
	prev := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, len(br)+1)
	for i, ca := range ar {
		curr[0] = i + 1
		for j, cb := range br {
			sub := prev[j]
			if ca != cb {
				sub++
			}
			curr[j+1] = min(curr[j]+1, prev[j+1]+1, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
