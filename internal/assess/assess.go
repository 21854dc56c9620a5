package assess

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Options controls metric computation.
type Options struct {
	// Cutoff classifies probabilities into events for the confusion matrix.
	Cutoff float64
	// LiftBins is the number of score-ordered quantile bins (10 = deciles).
	LiftBins int
}

// DefaultOptions returns the conventional assessment settings.
func DefaultOptions() Options {
	return Options{Cutoff: 0.5, LiftBins: 10}
}

// Metrics bundles the goodness-of-fit statistics for one scored set.
type Metrics struct {
	N                 int     `json:"n"`
	Events            int     `json:"events"`
	AUC               float64 `json:"auc"`
	Gini              float64 `json:"gini"`
	KS                float64 `json:"ks"`
	Lift              float64 `json:"lift_top_bin"`
	LiftDepth         float64 `json:"lift_depth"`
	Cutoff            float64 `json:"cutoff"`
	Accuracy          float64 `json:"accuracy"`
	Misclassification float64 `json:"misclassification"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1                float64 `json:"f1"`
}

// ROCCurve holds a receiver operating characteristic curve.
type ROCCurve struct {
	FPR        []float64
	TPR        []float64
	Thresholds []float64
	AUC        float64
	Positives  int
	Negatives  int
}

// Confusion is a 2x2 classification table at a fixed cutoff.
type Confusion struct {
	TP, FP, TN, FN int
}

// ROC computes the ROC curve and trapezoidal AUC for scores against binary
// labels. Labels must contain both classes.
func ROC(scores, labels []float64) (*ROCCurve, error) {
	if err := checkScored(scores, labels); err != nil {
		return nil, err
	}
	events := countEvents(labels)
	if events == 0 || events == len(labels) {
		return nil, errors.New("roc undefined: labels contain a single class")
	}
	ys := make([]float64, len(scores))
	copy(ys, scores)
	classes := make([]bool, len(labels))
	for i, v := range labels {
		classes[i] = v == 1
	}
	stat.SortWeightedLabeled(ys, classes, nil)
	tpr, fpr, thresh := stat.ROC(nil, ys, classes, nil)
	// stat.ROC reports the cutoff above the highest score as +Inf, which
	// encoding/json cannot represent. Clamp it to the highest score.
	if len(thresh) > 0 && math.IsInf(thresh[0], 1) {
		thresh[0] = ys[len(ys)-1]
	}
	return &ROCCurve{
		FPR:        fpr,
		TPR:        tpr,
		Thresholds: thresh,
		AUC:        integrate.Trapezoidal(fpr, tpr),
		Positives:  events,
		Negatives:  len(labels) - events,
	}, nil
}

// KS returns the Kolmogorov-Smirnov separation: the maximum distance between
// the cumulative event and non-event distributions over all thresholds.
func (c *ROCCurve) KS() float64 {
	ks := 0.0
	for i := range c.TPR {
		if d := c.TPR[i] - c.FPR[i]; d > ks {
			ks = d
		}
	}
	return ks
}

// Depths returns the cumulative share of the population scored at or above
// each threshold. Unlike the threshold index, it accounts for tied scores
// collapsing into a single curve point.
func (c *ROCCurve) Depths() []float64 {
	total := float64(c.Positives + c.Negatives)
	d := make([]float64, len(c.TPR))
	if total == 0 {
		return d
	}
	for i := range c.TPR {
		d[i] = (c.TPR[i]*float64(c.Positives) + c.FPR[i]*float64(c.Negatives)) / total
	}
	return d
}

// LiftBin is one score-ordered quantile bin of a lift table.
type LiftBin struct {
	Bin            int     `json:"bin"`
	Depth          float64 `json:"depth"` // cumulative population share
	Records        int     `json:"records"`
	Events         int     `json:"events"`
	ResponseRate   float64 `json:"response_rate"`
	Lift           float64 `json:"lift"`
	CumulativeLift float64 `json:"cumulative_lift"`
	CumulativeGain float64 `json:"cumulative_gain"` // share of all events captured
}

// Lift buckets observations into bins by descending score and reports
// per-bin and cumulative lift over the base event rate.
func Lift(scores, labels []float64, bins int) ([]LiftBin, error) {
	if err := checkScored(scores, labels); err != nil {
		return nil, err
	}
	if bins < 2 || bins > len(scores) {
		return nil, fmt.Errorf("lift bins must be in [2,%d], got %d", len(scores), bins)
	}
	totalEvents := countEvents(labels)
	if totalEvents == 0 {
		return nil, errors.New("lift undefined: no events in labels")
	}
	n := len(scores)
	baseRate := float64(totalEvents) / float64(n)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	out := make([]LiftBin, 0, bins)
	cumRecords, cumEvents := 0, 0
	pos := 0
	for b := 0; b < bins; b++ {
		size := n / bins
		if b < n%bins {
			size++
		}
		events := 0
		for i := 0; i < size; i++ {
			if labels[order[pos]] == 1 {
				events++
			}
			pos++
		}
		cumRecords += size
		cumEvents += events
		rr := float64(events) / float64(size)
		out = append(out, LiftBin{
			Bin:            b + 1,
			Depth:          float64(cumRecords) / float64(n),
			Records:        size,
			Events:         events,
			ResponseRate:   rr,
			Lift:           rr / baseRate,
			CumulativeLift: (float64(cumEvents) / float64(cumRecords)) / baseRate,
			CumulativeGain: float64(cumEvents) / float64(totalEvents),
		})
	}
	return out, nil
}

// Classify builds the confusion table at the given cutoff.
func Classify(scores, labels []float64, cutoff float64) (*Confusion, error) {
	if err := checkScored(scores, labels); err != nil {
		return nil, err
	}
	var c Confusion
	for i, s := range scores {
		predicted := s >= cutoff
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			c.TP++
		case predicted && !actual:
			c.FP++
		case !predicted && actual:
			c.FN++
		default:
			c.TN++
		}
	}
	return &c, nil
}

// Accuracy is the share of correct classifications.
func (c *Confusion) Accuracy() float64 {
	total := c.TP + c.FP + c.TN + c.FN
	if total == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(total)
}

// Misclassification is 1 - accuracy.
func (c *Confusion) Misclassification() float64 {
	total := c.TP + c.FP + c.TN + c.FN
	if total == 0 {
		return 0
	}
	return float64(c.FP+c.FN) / float64(total)
}

// Precision is TP / (TP + FP); 0 when nothing was predicted positive.
func (c *Confusion) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

// Recall is TP / (TP + FN); 0 when there are no positives.
func (c *Confusion) Recall() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// F1 is the harmonic mean of precision and recall.
func (c *Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Evaluate computes the full metric bundle for one scored set.
func Evaluate(scores, labels []float64, opt Options) (*Metrics, error) {
	if opt.Cutoff == 0 {
		opt.Cutoff = DefaultOptions().Cutoff
	} else if opt.Cutoff < 0 || opt.Cutoff >= 1 {
		return nil, fmt.Errorf("cutoff must be in (0,1), got %g", opt.Cutoff)
	}
	if opt.LiftBins <= 0 {
		opt.LiftBins = DefaultOptions().LiftBins
	}
	roc, err := ROC(scores, labels)
	if err != nil {
		return nil, err
	}
	bins := opt.LiftBins
	if bins > len(scores) {
		bins = len(scores)
	}
	lift, err := Lift(scores, labels, bins)
	if err != nil {
		return nil, err
	}
	conf, err := Classify(scores, labels, opt.Cutoff)
	if err != nil {
		return nil, err
	}
	return &Metrics{
		N:                 len(scores),
		Events:            countEvents(labels),
		AUC:               roc.AUC,
		Gini:              2*roc.AUC - 1,
		KS:                roc.KS(),
		Lift:              lift[0].Lift,
		LiftDepth:         lift[0].Depth,
		Cutoff:            opt.Cutoff,
		Accuracy:          conf.Accuracy(),
		Misclassification: conf.Misclassification(),
		Precision:         conf.Precision(),
		Recall:            conf.Recall(),
		F1:                conf.F1(),
	}, nil
}

func checkScored(scores, labels []float64) error {
	if len(scores) == 0 {
		return errors.New("no scored observations")
	}
	if len(scores) != len(labels) {
		return fmt.Errorf("%d scores for %d labels", len(scores), len(labels))
	}
	for i, v := range labels {
		if v != 0 && v != 1 {
			return fmt.Errorf("labels must be binary 0/1, got %g at %d", v, i)
		}
	}
	return nil
}

func countEvents(labels []float64) int {
	n := 0
	for _, v := range labels {
		if v == 1 {
			n++
		}
	}
	return n
}
