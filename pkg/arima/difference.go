package arima

// Diff applies d-th order differencing and drops the first d values.
// Missing values (NaN) propagate to every difference that touches them.
func Diff(y []float64, d int) []float64 {
	result := make([]float64, len(y))
	copy(result, y)
	for i := 0; i < d; i++ {
		if len(result) < 2 {
			return []float64{}
		}
		next := make([]float64, len(result)-1)
		for j := 1; j < len(result); j++ {
			next[j-1] = result[j] - result[j-1]
		}
		result = next
	}
	return result
}

// difference returns the d-th difference ending at the last element of level.
func difference(level []float64, d int) float64 {
	n := len(level)
	sum := 0.0
	for k := 0; k <= d; k++ {
		sum += sign(k) * float64(binomial(d, k)) * level[n-1-k]
	}
	return sum
}

// integrateStep returns the next level whose d-th difference equals x.
func integrateStep(level []float64, x float64, d int) float64 {
	n := len(level)
	next := x
	for k := 1; k <= d; k++ {
		next -= sign(k) * float64(binomial(d, k)) * level[n-k]
	}
	return next
}

func sign(k int) float64 {
	if k%2 == 0 {
		return 1
	}
	return -1
}

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}
