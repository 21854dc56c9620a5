package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
	"github.com/KaramelBytes/scoreloom/internal/utils"
)

// Options controls fitting and stepwise selection.
type Options struct {
	// MaxIter bounds the IRLS iterations per fit.
	MaxIter int
	// Tol is the convergence threshold on the coefficient update norm.
	Tol float64
	// SLEntry is the significance level a candidate must beat to enter the
	// model during stepwise selection.
	SLEntry float64
	// SLStay is the significance level an entered variable must keep to stay.
	SLStay float64
	// Cutoff classifies probabilities into events.
	Cutoff float64
}

// DefaultOptions returns conventional stepwise-logistic settings.
func DefaultOptions() Options {
	return Options{
		MaxIter: 50,
		Tol:     1e-8,
		SLEntry: 0.05,
		SLStay:  0.05,
		Cutoff:  0.5,
	}
}

// Logit is a fitted binary logistic regression model.
type Logit struct {
	Features   []string  `json:"features"`
	Intercept  float64   `json:"intercept"`
	Coef       []float64 `json:"coefficients"` // aligned with Features
	LogLik     float64   `json:"log_likelihood"`
	NullLogLik float64   `json:"null_log_likelihood"`
	AIC        float64   `json:"aic"`
	N          int       `json:"n"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

const (
	probFloor = 1e-10
	probCeil  = 1 - 1e-10
)

// Fit estimates a logistic regression by iteratively reweighted least
// squares (Newton-Raphson with a Cholesky solve). X may be nil for an
// intercept-only model. A model that hits MaxIter is returned with
// Converged=false rather than discarded, so callers can still report it.
func Fit(x *mat.Dense, y []float64, names []string, opt Options) (*Logit, error) {
	n := len(y)
	if n == 0 {
		return nil, errors.New("no observations")
	}
	p := 0
	if x != nil {
		var xr int
		xr, p = x.Dims()
		if xr != n {
			return nil, fmt.Errorf("design has %d rows for %d responses", xr, n)
		}
	}
	if len(names) != p {
		return nil, fmt.Errorf("got %d feature names for %d columns", len(names), p)
	}
	var events int
	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("response must be binary 0/1, got %g", v)
		}
		if v == 1 {
			events++
		}
	}
	if events == 0 || events == n {
		return nil, errors.New("response has a single class; nothing to fit")
	}

	// Design matrix with a leading intercept column.
	d := p + 1
	design := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}

	beta := make([]float64, d)
	mu := make([]float64, n)
	w := make([]float64, n)
	resid := mat.NewVecDense(n, nil)
	wx := mat.NewDense(n, d, nil)

	if opt.MaxIter <= 0 {
		opt.MaxIter = DefaultOptions().MaxIter
	}
	if opt.Tol <= 0 {
		opt.Tol = DefaultOptions().Tol
	}

	m := &Logit{Features: names, N: n}
	for iter := 1; iter <= opt.MaxIter; iter++ {
		m.Iterations = iter
		for i := 0; i < n; i++ {
			eta := 0.0
			for j := 0; j < d; j++ {
				eta += design.At(i, j) * beta[j]
			}
			mu[i] = clampProb(1 / (1 + math.Exp(-eta)))
			w[i] = mu[i] * (1 - mu[i])
			resid.SetVec(i, y[i]-mu[i])
			for j := 0; j < d; j++ {
				wx.Set(i, j, w[i]*design.At(i, j))
			}
		}

		// Gradient g = X^T (y - mu), information H = X^T W X.
		grad := mat.NewVecDense(d, nil)
		grad.MulVec(design.T(), resid)
		var h mat.Dense
		h.Mul(design.T(), wx)
		sym := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				sym.SetSym(i, j, (h.At(i, j)+h.At(j, i))/2)
			}
		}
		var chol mat.Cholesky
		if !chol.Factorize(sym) {
			return nil, errors.New("information matrix is singular (collinear or constant features)")
		}
		delta := mat.NewVecDense(d, nil)
		if err := chol.SolveVecTo(delta, grad); err != nil {
			return nil, fmt.Errorf("newton step: %w", err)
		}
		maxStep := 0.0
		for j := 0; j < d; j++ {
			beta[j] += delta.AtVec(j)
			if s := math.Abs(delta.AtVec(j)); s > maxStep {
				maxStep = s
			}
		}
		if maxStep < opt.Tol {
			m.Converged = true
			break
		}
	}

	m.Intercept = beta[0]
	m.Coef = beta[1:]
	m.LogLik = logLikelihood(design, beta, y)
	m.NullLogLik = nullLogLikelihood(y)
	m.AIC = -2*m.LogLik + 2*float64(d)
	return m, nil
}

func clampProb(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	if p > probCeil {
		return probCeil
	}
	return p
}

func logLikelihood(design *mat.Dense, beta, y []float64) float64 {
	n, d := design.Dims()
	ll := 0.0
	for i := 0; i < n; i++ {
		eta := 0.0
		for j := 0; j < d; j++ {
			eta += design.At(i, j) * beta[j]
		}
		p := clampProb(1 / (1 + math.Exp(-eta)))
		ll += y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
	}
	return ll
}

func nullLogLikelihood(y []float64) float64 {
	n := float64(len(y))
	var e float64
	for _, v := range y {
		e += v
	}
	p := clampProb(e / n)
	return e*math.Log(p) + (n-e)*math.Log(1-p)
}

// Predict returns event probabilities for a design matrix whose columns
// align with the model's features.
func (m *Logit) Predict(x *mat.Dense) ([]float64, error) {
	var n, p int
	if x != nil {
		n, p = x.Dims()
	}
	if p != len(m.Features) {
		return nil, fmt.Errorf("design has %d columns, model expects %d", p, len(m.Features))
	}
	if x == nil {
		return nil, errors.New("nil design matrix")
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		eta := m.Intercept
		for j := 0; j < p; j++ {
			eta += x.At(i, j) * m.Coef[j]
		}
		out[i] = 1 / (1 + math.Exp(-eta))
	}
	return out, nil
}

// ScoreFrame scores all rows of a frame that have complete feature values.
// kept maps scores back to frame rows; dropped counts excluded rows.
func (m *Logit) ScoreFrame(f *dataset.Frame) (scores []float64, kept []int, dropped int, err error) {
	if len(m.Features) == 0 {
		// Intercept-only model scores every row identically.
		p := 1 / (1 + math.Exp(-m.Intercept))
		scores = make([]float64, f.Rows())
		kept = make([]int, f.Rows())
		for i := range scores {
			scores[i] = p
			kept[i] = i
		}
		return scores, kept, 0, nil
	}
	x, kept, dropped, err := f.Matrix(m.Features)
	if err != nil {
		return nil, nil, 0, err
	}
	scores, err = m.Predict(x)
	if err != nil {
		return nil, nil, 0, err
	}
	return scores, kept, dropped, nil
}

// Classify maps probabilities to 0/1 at the given cutoff.
func Classify(scores []float64, cutoff float64) []float64 {
	out := make([]float64, len(scores))
	for i, p := range scores {
		if p >= cutoff {
			out[i] = 1
		}
	}
	return out
}

// Save writes the model as indented JSON using an atomic rename.
func (m *Logit) Save(path string) error {
	b, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// LoadModel reads a model previously written by Save.
func LoadModel(path string) (*Logit, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Logit
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if len(m.Coef) != len(m.Features) {
		return nil, fmt.Errorf("model has %d coefficients for %d features", len(m.Coef), len(m.Features))
	}
	return &m, nil
}
