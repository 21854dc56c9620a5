package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
)

// PartitionFractions describes a three-way split. The fractions must sum to 1.
type PartitionFractions struct {
	Train    float64
	Test     float64
	Validate float64
}

// DefaultFractions returns the conventional 60/20/20 split.
func DefaultFractions() PartitionFractions {
	return PartitionFractions{Train: 0.6, Test: 0.2, Validate: 0.2}
}

// Split holds the three partitions of a dataset.
type Split struct {
	Train    *dataset.Frame
	Test     *dataset.Frame
	Validate *dataset.Frame
}

// Fold is one stratified cross-validation fold.
type Fold struct {
	Index   int
	Rows    []int
	Events  int
	Records int
}

// classIndices returns the frame row indices per response class.
func classIndices(f *dataset.Frame) (events, nonEvents []int, err error) {
	labels, err := f.Labels()
	if err != nil {
		return nil, nil, err
	}
	for i, v := range labels {
		if v == 1 {
			events = append(events, i)
		} else {
			nonEvents = append(nonEvents, i)
		}
	}
	return events, nonEvents, nil
}

// Oversample draws minority-class rows with replacement until the event rate
// reaches rate. Works in both directions: rare events are duplicated up to
// rate, rare non-events are duplicated down to it. The input frame is never
// mutated; the result appends the drawn rows.
func Oversample(f *dataset.Frame, rate float64, seed int64) (*dataset.Frame, error) {
	if rate <= 0 || rate >= 1 {
		return nil, fmt.Errorf("event rate must be in (0,1), got %g", rate)
	}
	events, nonEvents, err := classIndices(f)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 || len(nonEvents) == 0 {
		return nil, errors.New("oversampling requires both classes to be present")
	}
	n := float64(f.Rows())
	e := float64(len(events))
	current := e / n

	var pool []int
	var extra int
	switch {
	case current < rate:
		// (e + a) / (n + a) = rate
		extra = int(math.Ceil((rate*n - e) / (1 - rate)))
		pool = events
	case current > rate:
		// e / (n + a) = rate
		extra = int(math.Ceil(e/rate - n))
		pool = nonEvents
	default:
		return f, nil
	}
	if extra <= 0 {
		return f, nil
	}
	rng := rand.New(rand.NewSource(seed))
	drawn := make([]int, extra)
	for i := range drawn {
		drawn[i] = pool[rng.Intn(len(pool))]
	}
	add, err := f.Subset(drawn)
	if err != nil {
		return nil, err
	}
	return f.Append(add)
}

// Partition splits a frame into stratified train/test/validate partitions.
// Each class is shuffled independently and cut by the fractions; rounding
// remainders land in the validate partition so no row is lost.
func Partition(f *dataset.Frame, fracs PartitionFractions, seed int64) (*Split, error) {
	sum := fracs.Train + fracs.Test + fracs.Validate
	if math.Abs(sum-1) > 1e-9 {
		return nil, fmt.Errorf("partition fractions must sum to 1, got %g", sum)
	}
	if fracs.Train <= 0 {
		return nil, errors.New("train fraction must be positive")
	}
	events, nonEvents, err := classIndices(f)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	var trainIdx, testIdx, valIdx []int
	for _, class := range [][]int{events, nonEvents} {
		idx := make([]int, len(class))
		copy(idx, class)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTrain := int(math.Round(fracs.Train * float64(len(idx))))
		nTest := int(math.Round(fracs.Test * float64(len(idx))))
		if nTrain+nTest > len(idx) {
			nTest = len(idx) - nTrain
		}
		trainIdx = append(trainIdx, idx[:nTrain]...)
		testIdx = append(testIdx, idx[nTrain:nTrain+nTest]...)
		valIdx = append(valIdx, idx[nTrain+nTest:]...)
	}

	train, err := f.Subset(trainIdx)
	if err != nil {
		return nil, err
	}
	test, err := f.Subset(testIdx)
	if err != nil {
		return nil, err
	}
	validate, err := f.Subset(valIdx)
	if err != nil {
		return nil, err
	}
	return &Split{Train: train, Test: test, Validate: validate}, nil
}

// Folds assigns every row of f to one of k stratified folds. Within each
// class the shuffled indices are dealt round-robin, so each fold's event
// rate tracks the parent frame's.
func Folds(f *dataset.Frame, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	events, nonEvents, err := classIndices(f)
	if err != nil {
		return nil, err
	}
	minority := len(events)
	if len(nonEvents) < minority {
		minority = len(nonEvents)
	}
	if k > minority {
		return nil, fmt.Errorf("%d folds exceed the minority class count %d", k, minority)
	}
	rng := rand.New(rand.NewSource(seed))

	folds := make([]Fold, k)
	for i := range folds {
		folds[i].Index = i + 1
	}
	for classNo, class := range [][]int{events, nonEvents} {
		idx := make([]int, len(class))
		copy(idx, class)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for i, row := range idx {
			fd := &folds[i%k]
			fd.Rows = append(fd.Rows, row)
			fd.Records++
			if classNo == 0 {
				fd.Events++
			}
		}
	}
	return folds, nil
}
