package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"agro-trend-api/pkg/models"
	"agro-trend-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ImageLookup 製品名から画像URLを返す。失敗時もフォールバックURLを返す
type ImageLookup interface {
	Lookup(ctx context.Context, product string) string
}

// TrendHandler 輸出トレンド予測ハンドラー
type TrendHandler struct {
	trendService       *services.TrendService
	descriptionService *services.DescriptionService
	imageLookup        ImageLookup
}

// NewTrendHandler 新しいトレンド予測ハンドラーを作成
func NewTrendHandler(trendService *services.TrendService, imageLookup ImageLookup) *TrendHandler {
	return &TrendHandler{
		trendService:       trendService,
		descriptionService: services.NewDescriptionService(),
		imageLookup:        imageLookup,
	}
}

// PredictTrend 指定日の予測値・トレンド判定・最適月を返す
func (h *TrendHandler) PredictTrend(c *gin.Context) {
	var request models.PredictRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Product) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan datos: producto y fecha son requeridos."})
		return
	}

	date, err := services.ParseRequestDate(request.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.trendService.Forecast(request.Product, date)
	if err != nil {
		respondError(c, err)
		return
	}

	// 画像検索は予測が完了してから行い、失敗しても結果には影響させない
	c.JSON(http.StatusOK, models.PredictResponse{
		ForecastResult: result,
		Description:    h.descriptionService.Describe(result.InTrend, result.BestDate.Time(), date),
		ImageURL:       h.imageLookup.Lookup(c.Request.Context(), request.Product),
	})
}

// GenerateChart グラフ用に実績と予測の系列を返す
func (h *TrendHandler) GenerateChart(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		return
	}

	chart, err := h.trendService.Chart(product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// GetPredictions 12ヶ月分の予測系列を返す
func (h *TrendHandler) GetPredictions(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		return
	}

	predictions, err := h.trendService.ForecastSeries(product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ForecastSeriesResponse{
		Product:     product,
		Predictions: predictions,
	})
}

// GetProducts データセットに含まれる製品の一覧
func (h *TrendHandler) GetProducts(c *gin.Context) {
	products := h.trendService.Products()
	entries := make([]models.ProductEntry, len(products))
	for i, p := range products {
		entries[i] = models.ProductEntry{Product: p}
	}
	c.JSON(http.StatusOK, entries)
}

func bindProduct(c *gin.Context) (string, bool) {
	var request models.ProductRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Product) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El producto es requerido."})
		return "", false
	}
	return request.Product, true
}

// respondError 入力に起因するエラーは400、それ以外は500として返す
func respondError(c *gin.Context, err error) {
	if services.IsUserError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 詳細はログにのみ残し、利用者には分類のメッセージだけを返す
	log.Printf("❌ [トレンド予測] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	message := "Error interno del servidor."
	switch {
	case errors.Is(err, services.ErrFitFailure):
		message = services.ErrFitFailure.Error()
	case errors.Is(err, services.ErrDataUnavailable):
		message = services.ErrDataUnavailable.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "timestamp": time.Now().UTC().Format(time.RFC3339)})
}
