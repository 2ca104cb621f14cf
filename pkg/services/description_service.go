package services

import (
	"fmt"
	"time"

	"agro-trend-api/pkg/models"
)

// DescriptionService 予測結果を利用者向けの定型文に変換する
type DescriptionService struct{}

// NewDescriptionService 新しいDescriptionServiceを生成
func NewDescriptionService() *DescriptionService {
	return &DescriptionService{}
}

// Describe トレンド判定に応じて2種類の定型文のどちらかを返す
func (s *DescriptionService) Describe(inTrend bool, bestDate, date time.Time) string {
	fecha := date.Format(models.DateLayout)
	mejor := bestDate.Format(models.DateLayout)

	if inTrend {
		return fmt.Sprintf("Se espera que el producto esté en tendencia para la fecha %s, "+
			"con exportaciones por encima del promedio de los últimos 12 meses. "+
			"La mejor fecha proyectada para exportar es %s.", fecha, mejor)
	}
	return fmt.Sprintf("No se espera que el producto esté en tendencia para la fecha %s, "+
		"ya que las exportaciones proyectadas están por debajo del promedio de los últimos 12 meses. "+
		"Se recomienda considerar la fecha %s, que presenta la mayor proyección.", fecha, mejor)
}
