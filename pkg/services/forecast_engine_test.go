package services

import (
	"fmt"
	"math"
	"testing"
	"time"

	"agro-trend-api/pkg/arima"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestNewForecastEngineDefaults(t *testing.T) {
	engine := NewForecastEngine()
	assert.Equal(t, arima.Order{P: 2, D: 1, Q: 3}, engine.Order)
	assert.Equal(t, 12, engine.Horizon)
	assert.Equal(t, 500, engine.MaxIter)
}

func TestForecastDatesFollowLastObservation(t *testing.T) {
	// ランダムウォークでは差分系列の最後の値がそのまま予測になる
	engine := &ForecastEngine{Order: arima.Order{P: 0, D: 1, Q: 0}, Horizon: ForecastHorizon, MaxIter: MaxFitIterations}
	series := MonthlySeries{Start: month(2019, 1), Values: linear(24, 100, 5)}
	series.Values[23] = 140

	forecast, err := engine.Forecast(series)
	require.NoError(t, err)

	require.Equal(t, ForecastHorizon, forecast.Len())
	assert.Equal(t, month(2021, 1), forecast.Start)
	assert.Equal(t, month(2021, 12), forecast.End())
	for i, v := range forecast.Values {
		assert.InDelta(t, 140-210, v, 1e-9, "index %d", i)
	}
}

func TestForecastIgnoresLeadingGapsAfterDifferencing(t *testing.T) {
	engine := &ForecastEngine{Order: arima.Order{P: 0, D: 1, Q: 0}, Horizon: 3, MaxIter: MaxFitIterations}
	values := linear(24, 0, 3)
	values[1] = math.NaN()

	forecast, err := engine.Forecast(MonthlySeries{Start: month(2019, 1), Values: values})
	require.NoError(t, err)
	for _, v := range forecast.Values {
		assert.InDelta(t, 3, v, 1e-9)
	}
}

func TestForecastFitFailure(t *testing.T) {
	engine := NewForecastEngine()
	engine.MaxIter = 1

	values := make([]float64, 36)
	for i := range values {
		values[i] = 500 + 20*math.Sin(float64(i)) + float64(i*i%7)
	}

	_, err := engine.Forecast(MonthlySeries{Start: month(2018, 1), Values: values})
	assert.ErrorIs(t, err, ErrFitFailure)
}

func TestForecastEmptySeries(t *testing.T) {
	_, err := NewForecastEngine().Forecast(MonthlySeries{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

// rosasValues 季節性とノイズを持つ月次輸出額を決定的に作る
func rosasValues(n int, seed uint32) []float64 {
	out := make([]float64, n)
	state := seed
	for i := range out {
		state = state*1664525 + 1013904223
		jitter := float64(state>>8)/float64(1<<24)*2 - 1
		m := float64(i % 12)
		out[i] = 1200 + 8*float64(i) + 260*math.Sin(2*math.Pi*m/12) + 90*math.Cos(2*math.Pi*m/6) + 70*jitter
	}
	return out
}

func TestForecastIsDeterministic(t *testing.T) {
	series := MonthlySeries{Start: month(2019, 1), Values: rosasValues(48, 7)}
	engine := NewForecastEngine()

	first, err := engine.Forecast(series)
	require.NoError(t, err)
	second, err := engine.Forecast(series)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Equal(t, ForecastHorizon, first.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, month(2023, time.Month(i+1)), first.DateAt(i))
		assert.False(t, math.IsNaN(first.Values[i]))
	}
}

func TestForecastShortNoisySeries(t *testing.T) {
	for _, n := range []int{20, 24} {
		for seed := uint32(1); seed <= 5; seed++ {
			t.Run(fmt.Sprintf("n=%d/seed=%d", n, seed), func(t *testing.T) {
				records := monthlyRecords("Rosas", month(2021, 1), rosasValues(n, seed)...)
				service := NewTrendService(NewDataset(records))
				observed, err := BuildSeries(service.dataset, "Rosas")
				require.NoError(t, err)

				forecast, err := NewForecastEngine().Forecast(observed)
				require.NoError(t, err)
				require.Equal(t, ForecastHorizon, forecast.Len())
				assert.Equal(t, observed.End().AddDate(0, 1, 0), forecast.Start)

				points, err := service.ForecastSeries("Rosas")
				require.NoError(t, err)
				require.Len(t, points, ForecastHorizon)
				for i := 1; i < len(points); i++ {
					assert.Equal(t, points[i-1].Date.AddDate(0, 1, 0), points[i].Date, "index %d", i)
				}

				result, err := service.Forecast("Rosas", forecast.Start.AddDate(0, 2, 0))
				require.NoError(t, err)
				best := floats.MaxIdx(forecast.Values)
				assert.Equal(t, forecast.DateAt(best), result.BestDate.Time())
				assert.Equal(t, round2(forecast.Values[best]), result.BestDatePrediction)
				assert.Equal(t, round2(forecast.Values[2]), result.Prediction)

				again, err := service.Forecast("Rosas", forecast.Start.AddDate(0, 2, 0))
				require.NoError(t, err)
				assert.Equal(t, result, again)
			})
		}
	}
}
