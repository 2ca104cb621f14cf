package arima

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

const (
	gradientThreshold = 1e-6
	functionTolerance = 1e-10
	stallIterations   = 20
)

type minimizeResult struct {
	X          []float64
	F          float64
	Iterations int
	Status     optimize.Status
	Converged  bool
}

// minimize runs L-BFGS from x0 with central-difference gradients for at most maxIter
// major iterations. A line search that can no longer improve the objective leaves the
// best location found; only the iteration limit, a non-finite objective or any other
// optimizer error counts as non-convergence.
func minimize(f func([]float64) float64, x0 []float64, maxIter int) minimizeResult {
	if len(x0) == 0 {
		return minimizeResult{X: []float64{}, F: f(x0), Converged: true}
	}

	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: gradientThreshold,
		Converger: &optimize.FunctionConverge{
			Absolute:   functionTolerance,
			Relative:   functionTolerance,
			Iterations: stallIterations,
		},
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if res == nil {
		return minimizeResult{X: x0, F: math.Inf(1), Status: optimize.Failure}
	}

	out := minimizeResult{
		X:          res.X,
		F:          res.F,
		Iterations: res.Stats.MajorIterations,
		Status:     res.Status,
	}
	finite := !math.IsNaN(res.F) && !math.IsInf(res.F, 0)
	out.Converged = finite && res.Status != optimize.IterationLimit && (err == nil || lineSearchStalled(err))
	return out
}

func lineSearchStalled(err error) bool {
	return errors.Is(err, optimize.ErrLinesearcherFailure) ||
		errors.Is(err, optimize.ErrNoProgress) ||
		errors.Is(err, optimize.ErrNonDescentDirection)
}
