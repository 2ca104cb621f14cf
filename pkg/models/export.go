package models

import (
	"encoding/json"
	"math"
	"time"
)

// DateLayout APIで日付を出力する形式
const DateLayout = "2006-01-02"

// ExportRecord 輸出実績の1行（正規化済み）
type ExportRecord struct {
	Product string    // Descripcion Partida10 Dig
	Year    int       // Año
	Month   string    // Mes（正規化後の月名）
	Value   float64   // Exportaciones en valor (Miles USD FOB)
	Date    time.Time // 年・月から導出した月初日
}

// Date YYYY-MM-DD 形式でJSONに出力される日付
type Date time.Time

// Time time.Time に変換
func (d Date) Time() time.Time {
	return time.Time(d)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(DateLayout))
}

// SeriesPoint 月次系列の1点。欠損月は Value が NaN
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// Missing 欠損月かどうか
func (p SeriesPoint) Missing() bool {
	return math.IsNaN(p.Value)
}

// MarshalJSON 欠損値は null として出力する
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var valor *float64
	if !p.Missing() {
		v := p.Value
		valor = &v
	}
	return json.Marshal(struct {
		Fecha string   `json:"fecha"`
		Valor *float64 `json:"valor"`
	}{
		Fecha: p.Date.Format(DateLayout),
		Valor: valor,
	})
}

// ForecastResult 製品と対象日に対する予測結果
type ForecastResult struct {
	Prediction         float64 `json:"prediccion"`
	InTrend            bool    `json:"en_tendencia"`
	BestDate           Date    `json:"mejor_fecha"`
	BestDatePrediction float64 `json:"prediccion_mejor_fecha"`
}

// PredictRequest POST /predecir のリクエストボディ
type PredictRequest struct {
	Product string `json:"producto" binding:"required"`
	Date    string `json:"fecha" binding:"required"`
}

// PredictResponse 予測結果に説明文と画像URLを付加したレスポンス
type PredictResponse struct {
	ForecastResult
	Description string `json:"descripcion"`
	ImageURL    string `json:"imagen"`
}

// ProductRequest 製品名のみを受け取るリクエストボディ
type ProductRequest struct {
	Product string `json:"producto" binding:"required"`
}

// ChartResponse グラフ描画用の実績値と予測値
type ChartResponse struct {
	Product  string        `json:"producto"`
	Actual   []SeriesPoint `json:"datos_reales"`
	Forecast []SeriesPoint `json:"datos_prediccion"`
}

// ForecastSeriesResponse 12ヶ月分の予測値
type ForecastSeriesResponse struct {
	Product     string        `json:"producto"`
	Predictions []SeriesPoint `json:"predicciones"`
}

// ProductEntry GET /productos の1要素
type ProductEntry struct {
	Product string `json:"producto"`
}
