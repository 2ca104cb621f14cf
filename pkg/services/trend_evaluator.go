package services

import (
	"fmt"
	"math"
	"time"

	"agro-trend-api/pkg/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrailingWindow 直近平均を計算する観測月数
const TrailingWindow = 12

// EvaluateTrend 対象月の予測値を直近12ヶ月の実績平均と比較し、予測期間中で最大の月を求める。
// 対象日は日を無視して月単位で比較する。
func EvaluateTrend(observed, forecast MonthlySeries, target time.Time) (models.ForecastResult, error) {
	if forecast.Len() == 0 {
		return models.ForecastResult{}, ErrNoForecastForDate
	}

	month := monthOf(target)
	if month.Before(forecast.Start) || month.After(forecast.End()) {
		return models.ForecastResult{}, fmt.Errorf("%w: %s (rango %s a %s)", ErrDateOutOfRange,
			target.Format(models.DateLayout), forecast.Start.Format(models.DateLayout), forecast.End().Format(models.DateLayout))
	}

	idx := monthsBetween(forecast.Start, month)
	if idx < 0 || idx >= forecast.Len() || math.IsNaN(forecast.Values[idx]) {
		return models.ForecastResult{}, fmt.Errorf("%w: %s", ErrNoForecastForDate, target.Format(models.DateLayout))
	}
	prediction := forecast.Values[idx]

	best := floats.MaxIdx(forecast.Values)

	return models.ForecastResult{
		Prediction:         round2(prediction),
		InTrend:            prediction > TrailingMean(observed),
		BestDate:           models.Date(forecast.DateAt(best)),
		BestDatePrediction: round2(forecast.Values[best]),
	}, nil
}

// TrailingMean 直近12ヶ月の観測値の平均。欠損月は除外し、すべて欠損なら NaN
func TrailingMean(observed MonthlySeries) float64 {
	values := observed.Values
	if len(values) > TrailingWindow {
		values = values[len(values)-TrailingWindow:]
	}

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	return stat.Mean(present, nil)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
