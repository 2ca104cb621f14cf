// Package arima implements ARIMA(p, d, q) models fitted by conditional sum of squares.
//
// Missing observations (NaN) are allowed anywhere after the first observed value: the
// recursion replaces a missing point by its one-step prediction and contributes no residual.
package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData is returned when too few observations remain for the order.
	ErrInsufficientData = errors.New("arima: insufficient data points for the specified order")
	// ErrNotConverged is returned when the optimizer exhausts its iteration budget or fails.
	ErrNotConverged = errors.New("arima: optimizer did not converge")
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("arima: model must be fitted before prediction")
)

// DefaultMaxIter is the optimizer iteration budget used when Model.MaxIter is zero.
const DefaultMaxIter = 500

// ridgePenalty keeps the optimum finite when the sum of squares keeps decreasing towards
// the stationarity or invertibility boundary.
const ridgePenalty = 1e-4

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order
	D int // Differencing order
	Q int // MA order
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model.
type Model struct {
	Order      Order
	ARCoeffs   []float64 // phi
	MACoeffs   []float64 // theta
	Intercept  float64   // mean of the differenced series, only estimated when D == 0
	Variance   float64   // residual variance
	SSE        float64
	MaxIter    int
	Iterations int // optimizer iterations used by the last Fit

	fitted    bool
	data      []float64 // observed series with leading missing values trimmed
	filled    []float64 // data with gaps replaced by one-step predictions
	diffs     []float64 // differenced filled series, len(data)-D
	residuals []float64 // aligned with diffs
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// Fit estimates the AR and MA coefficients on y.
// AR coefficients are kept stationary and MA coefficients invertible through a
// reparameterization, and the conditional sum of squares is minimized by L-BFGS.
func (m *Model) Fit(y []float64) error {
	data := trimLeadingNaN(y)
	p, d, q := m.Order.P, m.Order.D, m.Order.Q
	if len(data) < p+q+d+10 {
		return ErrInsufficientData
	}

	m.data = data
	m.fitted = false
	m.Intercept = 0

	observed := observedDiffs(data, d)
	if len(observed) <= p+q+1 {
		return ErrInsufficientData
	}
	if d == 0 {
		m.Intercept = stat.Mean(observed, nil)
	}

	scale := stat.MomentAbout(2, observed, m.Intercept, nil)
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}

	x0 := make([]float64, p+q)
	if p > 0 {
		copy(x0, initialAR(observed, p))
	}

	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	objective := func(x []float64) float64 {
		ar, ma := m.unpack(x)
		sse, count := m.filter(ar, ma, nil)
		if count == 0 || math.IsNaN(sse) || math.IsInf(sse, 0) {
			return math.Inf(1)
		}
		penalty := 0.0
		for _, v := range x {
			penalty += v * v
		}
		return sse/(float64(count)*scale) + ridgePenalty*penalty
	}

	res := minimize(objective, x0, maxIter)
	m.Iterations = res.Iterations
	if !res.Converged {
		return fmt.Errorf("%w after %d iterations (%s)", ErrNotConverged, res.Iterations, res.Status)
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) {
		return fmt.Errorf("%w: non-finite objective", ErrNotConverged)
	}

	m.ARCoeffs, m.MACoeffs = m.unpack(res.X)

	state := &filterState{}
	sse, count := m.filter(m.ARCoeffs, m.MACoeffs, state)
	m.SSE = sse
	m.filled = state.filled
	m.diffs = state.diffs
	m.residuals = state.residuals
	if dof := count - p - q; dof > 0 {
		m.Variance = sse / float64(dof)
	} else {
		m.Variance = sse / float64(count)
	}

	m.fitted = true
	return nil
}

// Predict generates forecasts on the scale of the fitted series for the given number of
// steps after its last period. Future residuals are zero.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("arima: steps must be at least 1")
	}

	d := m.Order.D
	level := make([]float64, len(m.filled), len(m.filled)+steps)
	copy(level, m.filled)
	x := make([]float64, len(m.diffs), len(m.diffs)+steps)
	copy(x, m.diffs)
	e := make([]float64, len(m.residuals), len(m.residuals)+steps)
	copy(e, m.residuals)

	out := make([]float64, steps)
	for h := 0; h < steps; h++ {
		j := len(x)
		pred := m.predictDiff(m.ARCoeffs, m.MACoeffs, x, e, j)
		x = append(x, pred)
		e = append(e, 0)

		next := integrateStep(level, pred, d)
		level = append(level, next)
		out[h] = next
	}
	return out, nil
}

// Residuals returns the model residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// FilledValues returns the fitted series with missing observations imputed.
func (m *Model) FilledValues() []float64 {
	if !m.fitted {
		return nil
	}
	out := make([]float64, len(m.filled))
	copy(out, m.filled)
	return out
}

type filterState struct {
	filled    []float64
	diffs     []float64
	residuals []float64
}

// filter runs the ARIMA recursion over the data and returns the conditional sum of squares
// and the number of residuals that contributed to it.
func (m *Model) filter(ar, ma []float64, state *filterState) (float64, int) {
	p, d, q := m.Order.P, m.Order.D, m.Order.Q
	n := len(m.data)

	level := make([]float64, 0, n)
	for t := 0; t < d && t < n; t++ {
		v := m.data[t]
		if math.IsNaN(v) {
			v = level[t-1]
		}
		level = append(level, v)
	}

	x := make([]float64, 0, n-d)
	e := make([]float64, 0, n-d)
	start := max(p, q)
	sse := 0.0
	count := 0

	for t := d; t < n; t++ {
		j := t - d
		pred := m.predictDiff(ar, ma, x, e, j)

		if math.IsNaN(m.data[t]) {
			x = append(x, pred)
			e = append(e, 0)
			level = append(level, integrateStep(level, pred, d))
			continue
		}

		level = append(level, m.data[t])
		xj := difference(level, d)
		x = append(x, xj)
		if j < start {
			e = append(e, 0)
			continue
		}
		resid := xj - pred
		e = append(e, resid)
		sse += resid * resid
		count++
	}

	if state != nil {
		state.filled = level
		state.diffs = x
		state.residuals = e
	}
	return sse, count
}

// predictDiff is the one-step prediction of the differenced series at index j.
func (m *Model) predictDiff(ar, ma, x, e []float64, j int) float64 {
	pred := m.Intercept
	for i := 0; i < len(ar) && j-i-1 >= 0; i++ {
		pred += ar[i] * (x[j-i-1] - m.Intercept)
	}
	for i := 0; i < len(ma) && j-i-1 >= 0; i++ {
		pred += ma[i] * e[j-i-1]
	}
	return pred
}

// unpack maps unconstrained optimizer coordinates to AR and MA coefficients.
func (m *Model) unpack(x []float64) ([]float64, []float64) {
	p := m.Order.P
	ar := constrainStationary(x[:p])
	ma := constrainStationary(x[p:])
	for i := range ma {
		ma[i] = -ma[i]
	}
	return ar, ma
}

// initialAR returns unconstrained starting values derived from the sample PACF.
func initialAR(observed []float64, p int) []float64 {
	out := make([]float64, p)
	pacf := PACF(observed, p)
	if pacf == nil {
		return out
	}
	for k := 1; k <= p && k < len(pacf); k++ {
		r := -clamp(pacf[k], -0.95, 0.95)
		out[k-1] = r / math.Sqrt(1-r*r)
	}
	return out
}

func observedDiffs(data []float64, d int) []float64 {
	diffs := Diff(data, d)
	out := make([]float64, 0, len(diffs))
	for _, v := range diffs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func trimLeadingNaN(y []float64) []float64 {
	i := 0
	for i < len(y) && math.IsNaN(y[i]) {
		i++
	}
	out := make([]float64, len(y)-i)
	copy(out, y[i:])
	return out
}

func clamp(v, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, v))
}
