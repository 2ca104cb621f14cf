package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"agro-trend-api/pkg/models"
)

// MinObservations ARIMA(2,1,3) を推定するのに必要な最小の月次観測数
const MinObservations = 20

// MonthlySeries 月初日 Start から始まる連続した月次系列。欠損月は NaN で表す。
type MonthlySeries struct {
	Start  time.Time
	Values []float64
}

// Len 系列の長さ（欠損月を含む）
func (s MonthlySeries) Len() int {
	return len(s.Values)
}

// DateAt i番目の月初日
func (s MonthlySeries) DateAt(i int) time.Time {
	return s.Start.AddDate(0, i, 0)
}

// End 最後の月初日
func (s MonthlySeries) End() time.Time {
	return s.DateAt(len(s.Values) - 1)
}

// Points 日付付きの点列に変換する
func (s MonthlySeries) Points() []models.SeriesPoint {
	out := make([]models.SeriesPoint, len(s.Values))
	for i, v := range s.Values {
		out[i] = models.SeriesPoint{Date: s.DateAt(i), Value: v}
	}
	return out
}

// BuildSeries 製品のレコードを月ごとに合計し、最小月から最大月までの月次グリッドに並べ直す。
// 元データに存在しない月は 0 ではなく欠損として扱う。
func BuildSeries(dataset *Dataset, product string) (MonthlySeries, error) {
	records := dataset.Filter(product)
	if len(records) == 0 {
		return MonthlySeries{}, fmt.Errorf("%w '%s'", ErrProductNotFound, product)
	}

	series := AggregateMonthly(records)
	if series.Len() < MinObservations {
		return MonthlySeries{}, fmt.Errorf("%w: %d meses disponibles, se requieren al menos %d",
			ErrInsufficientData, series.Len(), MinObservations)
	}
	return series, nil
}

// AggregateMonthly 同じ月のレコードを合計して月次系列を作る
func AggregateMonthly(records []models.ExportRecord) MonthlySeries {
	if len(records) == 0 {
		return MonthlySeries{}
	}

	sums := make(map[time.Time]float64)
	for _, r := range records {
		sums[monthOf(r.Date)] += r.Value
	}

	dates := make([]time.Time, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	start := dates[0]
	values := make([]float64, monthsBetween(start, dates[len(dates)-1])+1)
	for i := range values {
		values[i] = math.NaN()
	}
	for _, d := range dates {
		values[monthsBetween(start, d)] = sums[d]
	}

	return MonthlySeries{Start: start, Values: values}
}

// monthOf 同じ年月の月初日（UTC）
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthsBetween a から b までの月数（日は無視）
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
