package services

import (
	"fmt"
	"strings"
	"time"

	"agro-trend-api/pkg/models"
)

// requestDateLayouts リクエストで受け付ける日付形式
var requestDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"2006-01",
}

// TrendService 共有データセットに対して製品ごとの予測パイプラインを実行する。
// リクエストごとに系列の構築とARIMAの推定をやり直し、リクエスト間で可変状態を共有しない。
type TrendService struct {
	dataset    *Dataset
	forecaster Forecaster
}

// NewTrendService 新しいTrendServiceを生成
func NewTrendService(dataset *Dataset) *TrendService {
	return NewTrendServiceWithForecaster(dataset, NewForecastEngine())
}

// NewTrendServiceWithForecaster 予測器を指定してTrendServiceを生成
func NewTrendServiceWithForecaster(dataset *Dataset, forecaster Forecaster) *TrendService {
	return &TrendService{
		dataset:    dataset,
		forecaster: forecaster,
	}
}

// Forecast 製品と対象日に対する予測結果を返す
func (s *TrendService) Forecast(product string, date time.Time) (models.ForecastResult, error) {
	observed, err := BuildSeries(s.dataset, product)
	if err != nil {
		return models.ForecastResult{}, err
	}

	forecast, err := s.forecaster.Forecast(observed)
	if err != nil {
		return models.ForecastResult{}, err
	}

	return EvaluateTrend(observed, forecast, date)
}

// Series 実績の月次系列（欠損月を含む）
func (s *TrendService) Series(product string) ([]models.SeriesPoint, error) {
	observed, err := BuildSeries(s.dataset, product)
	if err != nil {
		return nil, err
	}
	return observed.Points(), nil
}

// ForecastSeries 12ヶ月分の予測系列
func (s *TrendService) ForecastSeries(product string) ([]models.SeriesPoint, error) {
	_, forecast, err := s.build(product)
	if err != nil {
		return nil, err
	}
	return forecast.Points(), nil
}

// Chart グラフ用に実績と予測を一度の推定で返す
func (s *TrendService) Chart(product string) (models.ChartResponse, error) {
	observed, forecast, err := s.build(product)
	if err != nil {
		return models.ChartResponse{}, err
	}
	return models.ChartResponse{
		Product:  product,
		Actual:   observed.Points(),
		Forecast: forecast.Points(),
	}, nil
}

// Products データセットに含まれる製品名
func (s *TrendService) Products() []string {
	return s.dataset.Products()
}

func (s *TrendService) build(product string) (MonthlySeries, MonthlySeries, error) {
	observed, err := BuildSeries(s.dataset, product)
	if err != nil {
		return MonthlySeries{}, MonthlySeries{}, err
	}
	forecast, err := s.forecaster.Forecast(observed)
	if err != nil {
		return MonthlySeries{}, MonthlySeries{}, err
	}
	return observed, forecast, nil
}

// ParseRequestDate リクエストの日付文字列を解釈する。解釈できなければ ErrInvalidDate
func ParseRequestDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range requestDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: '%s'", ErrInvalidDate, s)
}
