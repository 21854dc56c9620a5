// Package crossval assesses how well a fitted model generalizes by scoring
// stratified folds of a held-out partition and comparing the per-fold
// goodness-of-fit statistics.
package crossval

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/scoreloom/internal/assess"
	"github.com/KaramelBytes/scoreloom/internal/dataset"
	"github.com/KaramelBytes/scoreloom/internal/model"
	"github.com/KaramelBytes/scoreloom/internal/sampling"
)

// Options controls a cross-validation run.
type Options struct {
	Folds    int
	Seed     int64
	Cutoff   float64
	LiftBins int
}

// DefaultOptions returns the conventional 5-fold setup.
func DefaultOptions() Options {
	return Options{Folds: 5, Cutoff: 0.5, LiftBins: 10}
}

// FoldMetrics is the assessment of one fold.
type FoldMetrics struct {
	Fold    int            `json:"fold"`
	Records int            `json:"records"`
	Events  int            `json:"events"`
	Dropped int            `json:"dropped"`
	Metrics assess.Metrics `json:"metrics"`
}

// Stat aggregates one statistic across folds.
type Stat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary aggregates each statistic across all folds.
type Summary struct {
	AUC               Stat `json:"auc"`
	Gini              Stat `json:"gini"`
	KS                Stat `json:"ks"`
	Lift              Stat `json:"lift"`
	F1                Stat `json:"f1"`
	Accuracy          Stat `json:"accuracy"`
	Misclassification Stat `json:"misclassification"`
}

// Result is the outcome of one cross-validation pass.
type Result struct {
	Folds   []FoldMetrics `json:"folds"`
	Summary Summary       `json:"summary"`
	// Scored is the union of all scored folds with `fold` and `score`
	// columns appended; its row count equals the holdout's.
	Scored *dataset.Frame `json:"-"`
}

// Run partitions the holdout frame into stratified folds, scores each with
// the fixed model, computes per-fold statistics, and unions the scored folds
// back into a single frame.
func Run(m *model.Logit, holdout *dataset.Frame, opt Options) (*Result, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	if opt.Folds <= 0 {
		opt.Folds = DefaultOptions().Folds
	}
	if opt.Cutoff == 0 {
		opt.Cutoff = DefaultOptions().Cutoff
	} else if opt.Cutoff < 0 || opt.Cutoff >= 1 {
		return nil, fmt.Errorf("cutoff must be in (0,1), got %g", opt.Cutoff)
	}
	if opt.LiftBins <= 0 {
		opt.LiftBins = DefaultOptions().LiftBins
	}

	folds, err := sampling.Folds(holdout, opt.Folds, opt.Seed)
	if err != nil {
		return nil, fmt.Errorf("build folds: %w", err)
	}

	res := &Result{}
	var union *dataset.Frame
	for _, fold := range folds {
		part, err := holdout.Subset(fold.Rows)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Index, err)
		}
		scores, kept, dropped, err := m.ScoreFrame(part)
		if err != nil {
			return nil, fmt.Errorf("score fold %d: %w", fold.Index, err)
		}
		labels, err := part.Labels()
		if err != nil {
			return nil, fmt.Errorf("fold %d labels: %w", fold.Index, err)
		}
		keptLabels := make([]float64, len(kept))
		for i, row := range kept {
			keptLabels[i] = labels[row]
		}
		bins := opt.LiftBins
		if bins > len(scores) {
			bins = len(scores)
		}
		metrics, err := assess.Evaluate(scores, keptLabels, assess.Options{Cutoff: opt.Cutoff, LiftBins: bins})
		if err != nil {
			return nil, fmt.Errorf("assess fold %d: %w", fold.Index, err)
		}
		res.Folds = append(res.Folds, FoldMetrics{
			Fold:    fold.Index,
			Records: fold.Records,
			Events:  fold.Events,
			Dropped: dropped,
			Metrics: *metrics,
		})

		scored, err := scoredFrame(part, fold.Index, kept, scores)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Index, err)
		}
		if union == nil {
			union = scored
		} else if union, err = union.Append(scored); err != nil {
			return nil, fmt.Errorf("union fold %d: %w", fold.Index, err)
		}
	}
	res.Scored = union
	res.Summary = summarize(res.Folds)
	return res, nil
}

// scoredFrame appends fold and score columns to a fold's frame. Rows dropped
// during scoring (incomplete features) carry a NaN score.
func scoredFrame(part *dataset.Frame, foldIndex int, kept []int, scores []float64) (*dataset.Frame, error) {
	foldCol := make([]float64, part.Rows())
	scoreCol := make([]float64, part.Rows())
	for i := range scoreCol {
		foldCol[i] = float64(foldIndex)
		scoreCol[i] = math.NaN()
	}
	for i, row := range kept {
		scoreCol[row] = scores[i]
	}
	out, err := part.WithColumn("fold", foldCol)
	if err != nil {
		return nil, err
	}
	return out.WithColumn("score", scoreCol)
}

func summarize(folds []FoldMetrics) Summary {
	pick := func(get func(m assess.Metrics) float64) Stat {
		var s Stat
		if len(folds) == 0 {
			return s
		}
		s.Min = math.Inf(1)
		s.Max = math.Inf(-1)
		for _, f := range folds {
			v := get(f.Metrics)
			s.Mean += v
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		s.Mean /= float64(len(folds))
		if len(folds) > 1 {
			var ss float64
			for _, f := range folds {
				d := get(f.Metrics) - s.Mean
				ss += d * d
			}
			s.StdDev = math.Sqrt(ss / float64(len(folds)-1))
		}
		return s
	}
	return Summary{
		AUC:               pick(func(m assess.Metrics) float64 { return m.AUC }),
		Gini:              pick(func(m assess.Metrics) float64 { return m.Gini }),
		KS:                pick(func(m assess.Metrics) float64 { return m.KS }),
		Lift:              pick(func(m assess.Metrics) float64 { return m.Lift }),
		F1:                pick(func(m assess.Metrics) float64 { return m.F1 }),
		Accuracy:          pick(func(m assess.Metrics) float64 { return m.Accuracy }),
		Misclassification: pick(func(m assess.Metrics) float64 { return m.Misclassification }),
	}
}
