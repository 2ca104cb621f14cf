package arima

import "gonum.org/v1/gonum/stat"

// ACF calculates the autocorrelation function for lags 0 to maxLag.
// Returns nil when the series has zero variance.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mu, popVar := stat.PopMeanVariance(values, nil)
	denom := popVar * float64(n)
	if denom <= 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mu) * (values[i-k] - mu)
		}
		acf[k] = sum / denom
	}
	return acf
}

// PACF calculates the partial autocorrelation function with the Durbin-Levinson
// recursion. Index 0 is always 1.
func PACF(values []float64, maxLag int) []float64 {
	acf := ACF(values, maxLag)
	if len(acf) < 2 {
		return nil
	}
	maxLag = len(acf) - 1

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1

	phi := make([]float64, maxLag+1)
	prev := make([]float64, maxLag+1)
	phi[1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		copy(prev, phi)
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}
		if den == 0 {
			break
		}
		phi[k] = num / den
		for j := 1; j < k; j++ {
			phi[j] = prev[j] - phi[k]*prev[k-j]
		}
		pacf[k] = phi[k]
	}
	return pacf
}
