package services

import (
	"fmt"
	"log"
	"math"

	"agro-trend-api/pkg/arima"
)

const (
	// ForecastHorizon 予測する月数
	ForecastHorizon = 12
	// MaxFitIterations ARIMA推定の最大反復回数
	MaxFitIterations = 500
)

// ForecastOrder 全製品共通の固定次数 ARIMA(2,1,3)
var ForecastOrder = arima.Order{P: 2, D: 1, Q: 3}

// Forecaster 月次系列から将来の月次系列を予測する
type Forecaster interface {
	Forecast(series MonthlySeries) (MonthlySeries, error)
}

// ForecastEngine ARIMAによる12ヶ月先予測
type ForecastEngine struct {
	Order   arima.Order
	Horizon int
	MaxIter int
}

// NewForecastEngine 固定次数・固定反復回数の予測エンジンを生成
func NewForecastEngine() *ForecastEngine {
	return &ForecastEngine{
		Order:   ForecastOrder,
		Horizon: ForecastHorizon,
		MaxIter: MaxFitIterations,
	}
}

// Forecast 系列を一度差分し、その差分系列に ARIMA(2,1,3) を当てはめて Horizon ヶ月先まで予測する。
// モデル自身も1次の和分を持つため実質的には二重差分になる。予測値はモデルが自身の和分を戻した
// 差分系列の尺度で返り、最後の観測月の翌月から始まる月初日が付く。
func (e *ForecastEngine) Forecast(series MonthlySeries) (MonthlySeries, error) {
	if series.Len() == 0 {
		return MonthlySeries{}, fmt.Errorf("%w: serie vacía", ErrInsufficientData)
	}

	diffs := dropLeadingMissing(arima.Diff(series.Values, 1))

	model := arima.New(e.Order.P, e.Order.D, e.Order.Q)
	model.MaxIter = e.MaxIter
	if err := model.Fit(diffs); err != nil {
		log.Printf("⚠️ [予測] ARIMA%s の推定に失敗: %v", e.Order, err)
		return MonthlySeries{}, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}

	predictions, err := model.Predict(e.Horizon)
	if err != nil {
		return MonthlySeries{}, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}
	for _, v := range predictions {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return MonthlySeries{}, fmt.Errorf("%w: predicción no finita", ErrFitFailure)
		}
	}

	log.Printf("📈 [予測] ARIMA%s 推定完了: 反復 %d 回, 観測 %d ヶ月", e.Order, model.Iterations, series.Len())

	return MonthlySeries{
		Start:  series.End().AddDate(0, 1, 0),
		Values: predictions,
	}, nil
}

func dropLeadingMissing(values []float64) []float64 {
	for len(values) > 0 && math.IsNaN(values[0]) {
		values = values[1:]
	}
	return values
}
