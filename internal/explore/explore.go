package explore

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
)

// Options controls exploratory analysis behavior.
type Options struct {
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outliers counts robust Z-score (MAD) outliers per numeric column.
	Outliers         bool
	OutlierThreshold float64
	// TopValues limits how many categorical levels are reported per column.
	TopValues int
}

// DefaultOptions returns reasonable defaults for dataset exploration.
func DefaultOptions() Options {
	return Options{
		Correlations:     true,
		Outliers:         true,
		OutlierThreshold: 3.5,
		TopValues:        8,
	}
}

// Report is a markdown-friendly exploratory summary of a Frame.
type Report struct {
	Name      string
	Rows      int
	Target    string
	EventRate float64
	Events    int
	Cols      []ColumnSummary
	Corr      *CorrMatrix
	Warnings  []string
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Describe computes per-column summaries, the target event rate, and
// optionally a Pearson correlation matrix over the numeric columns.
func Describe(f *dataset.Frame, opt Options) (*Report, error) {
	if f == nil {
		return nil, errors.New("nil frame")
	}
	rep := &Report{Name: f.Name(), Rows: f.Rows(), Target: f.Target()}

	isNumeric := map[string]bool{}
	for _, col := range f.Schema().Columns {
		isNumeric[col.Name] = col.Kind == "numeric"
	}
	if f.Target() != "" {
		isNumeric[f.Target()] = true
	}

	numeric := map[string][]float64{}
	var numNames []string
	for _, name := range f.Columns() {
		if isNumeric[name] {
			vals, err := f.Floats(name)
			if err != nil {
				return nil, err
			}
			numeric[name] = vals
			numNames = append(numNames, name)
			rep.Cols = append(rep.Cols, numericSummary(name, vals, opt))
		} else {
			recs, err := f.Column(name)
			if err != nil {
				return nil, err
			}
			rep.Cols = append(rep.Cols, categoricalSummary(name, recs, opt))
		}
	}

	if f.Target() != "" {
		if labels, err := f.Labels(); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("target not usable for modeling: %v", err))
		} else {
			for _, v := range labels {
				if v == 1 {
					rep.Events++
				}
			}
			rep.EventRate = float64(rep.Events) / float64(len(labels))
		}
	}

	if opt.Correlations && len(numNames) >= 2 {
		rep.Corr = correlations(numNames, numeric)
	}
	return rep, nil
}

func numericSummary(name string, vals []float64, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: "numeric"}
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) {
			s.Missing++
			continue
		}
		clean = append(clean, v)
	}
	s.NonNull = len(clean)
	if len(clean) == 0 {
		return s
	}
	s.Min = clean[0]
	s.Max = clean[0]
	for _, v := range clean {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = stat.Mean(clean, nil)
	if len(clean) > 1 {
		s.Std = stat.StdDev(clean, nil)
	}
	if opt.Outliers && len(clean) >= 8 {
		median, mad := medianMAD(clean)
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		if mad > 0 {
			for _, v := range clean {
				z := math.Abs(0.6745 * (v - median) / mad)
				if z > thr {
					s.OutliersCount++
				}
				if z > s.OutliersMaxAbsZ {
					s.OutliersMaxAbsZ = z
				}
			}
		}
		s.OutlierThreshold = thr
	}
	return s
}

func categoricalSummary(name string, recs []string, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name, Kind: "categorical"}
	counts := map[string]int{}
	for _, v := range recs {
		v = strings.TrimSpace(v)
		if v == "" || v == "NaN" {
			s.Missing++
			continue
		}
		s.NonNull++
		counts[v]++
	}
	s.Unique = len(counts)
	tops := make([]CategoryCount, 0, len(counts))
	for k, c := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: c})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	limit := opt.TopValues
	if limit <= 0 {
		limit = 8
	}
	if len(tops) > limit {
		tops = tops[:limit]
	}
	s.TopValues = tops
	return s
}

// correlations builds a pairwise Pearson matrix, using for each pair only
// the rows where both columns are present.
func correlations(names []string, cols map[string][]float64) *CorrMatrix {
	n := len(names)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := cols[names[i]], cols[names[j]]
			var xs, ys []float64
			for k := range a {
				if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
					continue
				}
				xs = append(xs, a[k])
				ys = append(ys, b[k])
			}
			r := 0.0
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
				if math.IsNaN(r) || math.IsInf(r, 0) {
					r = 0
				}
				if r > 1 {
					r = 1
				} else if r < -1 {
					r = -1
				}
			}
			m[i][j] = r
			m[j][i] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: m}
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		d := v - median
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
