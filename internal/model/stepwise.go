package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
)

// StepSummary records one action of the stepwise selection.
type StepSummary struct {
	Step     int     `json:"step"`
	Action   string  `json:"action"` // entered|removed
	Variable string  `json:"variable"`
	ChiSq    float64 `json:"chi_square"`
	PValue   float64 `json:"p_value"`
	LogLik   float64 `json:"log_likelihood"`
}

// Stepwise fits a logistic regression by forward selection with backward
// checks. At each step the candidate with the smallest likelihood-ratio
// p-value below SLEntry enters; any entered variable whose removal p-value
// exceeds SLStay is dropped again. Zero-variance candidates are skipped.
// Selection stops when no candidate qualifies.
func Stepwise(f *dataset.Frame, candidates []string, opt Options) (*Logit, []StepSummary, error) {
	if len(candidates) == 0 {
		return nil, nil, errors.New("no candidate variables")
	}
	if opt.SLEntry <= 0 {
		opt.SLEntry = DefaultOptions().SLEntry
	}
	if opt.SLStay <= 0 {
		opt.SLStay = DefaultOptions().SLStay
	}
	// One shared complete-case matrix keeps every sub-model on the same rows,
	// otherwise likelihood-ratio tests are not comparable.
	xAll, kept, _, err := f.Matrix(candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble candidates: %w", err)
	}
	labels, err := f.Labels()
	if err != nil {
		return nil, nil, err
	}
	y := make([]float64, len(kept))
	for i, row := range kept {
		y[i] = labels[row]
	}

	usable := usableColumns(xAll)
	if len(usable) == 0 {
		return nil, nil, errors.New("all candidates have zero variance")
	}

	chi2 := distuv.ChiSquared{K: 1}
	var steps []StepSummary
	var selected []int
	inModel := map[int]bool{}

	current, err := fitColumns(xAll, y, nil, candidates, opt)
	if err != nil {
		return nil, nil, err
	}

	for step := 1; step <= 2*len(usable); step++ {
		// Forward: best entering candidate by LR p-value.
		bestJ := -1
		var bestModel *Logit
		bestP := 1.0
		bestChi := 0.0
		for _, j := range usable {
			if inModel[j] {
				continue
			}
			trial, err := fitColumns(xAll, y, append(append([]int{}, selected...), j), candidates, opt)
			if err != nil {
				continue // singular with this candidate; treat as not eligible
			}
			chiSq := 2 * (trial.LogLik - current.LogLik)
			if chiSq < 0 {
				chiSq = 0
			}
			p := chi2.Survival(chiSq)
			if p < bestP || (p == bestP && bestJ == -1) {
				bestP, bestChi, bestJ, bestModel = p, chiSq, j, trial
			}
		}
		if bestJ < 0 || bestP >= opt.SLEntry {
			break
		}
		selected = append(selected, bestJ)
		inModel[bestJ] = true
		current = bestModel
		steps = append(steps, StepSummary{
			Step: len(steps) + 1, Action: "entered", Variable: candidates[bestJ],
			ChiSq: bestChi, PValue: bestP, LogLik: current.LogLik,
		})

		// Backward: drop anything that no longer earns its place.
		for changed := true; changed && len(selected) > 1; {
			changed = false
			worstI := -1
			var worstModel *Logit
			worstP := 0.0
			worstChi := 0.0
			for i := range selected {
				reduced := make([]int, 0, len(selected)-1)
				reduced = append(reduced, selected[:i]...)
				reduced = append(reduced, selected[i+1:]...)
				trial, err := fitColumns(xAll, y, reduced, candidates, opt)
				if err != nil {
					continue
				}
				chiSq := 2 * (current.LogLik - trial.LogLik)
				if chiSq < 0 {
					chiSq = 0
				}
				p := chi2.Survival(chiSq)
				if p > worstP {
					worstP, worstChi, worstI, worstModel = p, chiSq, i, trial
				}
			}
			if worstI >= 0 && worstP > opt.SLStay {
				removed := selected[worstI]
				selected = append(selected[:worstI], selected[worstI+1:]...)
				delete(inModel, removed)
				current = worstModel
				steps = append(steps, StepSummary{
					Step: len(steps) + 1, Action: "removed", Variable: candidates[removed],
					ChiSq: worstChi, PValue: worstP, LogLik: current.LogLik,
				})
				changed = true
			}
		}
	}

	return current, steps, nil
}

// usableColumns filters out zero-variance columns, which can never improve
// the likelihood and make the information matrix singular.
func usableColumns(x *mat.Dense) []int {
	n, p := x.Dims()
	var out []int
	for j := 0; j < p; j++ {
		first := x.At(0, j)
		varies := false
		for i := 1; i < n; i++ {
			if x.At(i, j) != first {
				varies = true
				break
			}
		}
		if varies {
			out = append(out, j)
		}
	}
	return out
}

// fitColumns fits a model on the selected columns of the shared matrix.
// An empty selection fits the intercept-only model.
func fitColumns(xAll *mat.Dense, y []float64, cols []int, names []string, opt Options) (*Logit, error) {
	if len(cols) == 0 {
		return Fit(nil, y, nil, opt)
	}
	n, _ := xAll.Dims()
	sub := mat.NewDense(n, len(cols), nil)
	subNames := make([]string, len(cols))
	for k, j := range cols {
		subNames[k] = names[j]
		for i := 0; i < n; i++ {
			sub.Set(i, k, xAll.At(i, j))
		}
	}
	return Fit(sub, y, subNames, opt)
}
