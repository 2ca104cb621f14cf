package arima

import "math"

// constrainStationary maps unconstrained values to the coefficients of a stationary
// autoregressive polynomial through the partial autocorrelations r = u / sqrt(1+u^2).
// Negating the result gives an invertible MA polynomial.
func constrainStationary(unconstrained []float64) []float64 {
	n := len(unconstrained)
	if n == 0 {
		return []float64{}
	}

	y := make([][]float64, n)
	for k := range y {
		y[k] = make([]float64, n)
	}
	for k := 0; k < n; k++ {
		r := unconstrained[k] / math.Sqrt(1+unconstrained[k]*unconstrained[k])
		for i := 0; i < k; i++ {
			y[k][i] = y[k-1][i] + r*y[k-1][k-i-1]
		}
		y[k][k] = r
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = -y[n-1][i]
	}
	return out
}
