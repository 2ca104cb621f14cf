package services

import (
	"math"
	"time"

	"agro-trend-api/pkg/models"
)

// monthlyRecords start から1ヶ月ずつ進むレコードを作る。NaN の月はレコードを作らない
func monthlyRecords(product string, start time.Time, values ...float64) []models.ExportRecord {
	out := make([]models.ExportRecord, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		date := start.AddDate(0, i, 0)
		out = append(out, models.ExportRecord{
			Product: product,
			Year:    date.Year(),
			Month:   date.Month().String(),
			Value:   v,
			Date:    date,
		})
	}
	return out
}

func linear(n int, base, slope float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + slope*float64(i)
	}
	return out
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}
