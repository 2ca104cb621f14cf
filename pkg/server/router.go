package server

import (
	"net/http"

	config "agro-trend-api/configs"
	"agro-trend-api/pkg/handlers"
	"agro-trend-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies ルーターが使うサービス群
type Dependencies struct {
	Dataset    *services.Dataset
	Trend      *services.TrendService
	Images     handlers.ImageLookup
	Monitoring *services.MonitoringService
}

// NewDependencies 設定とデータセットから本番用のサービス群を組み立てる
func NewDependencies(cfg *config.Config, dataset *services.Dataset) Dependencies {
	return Dependencies{
		Dataset:    dataset,
		Trend:      services.NewTrendService(dataset),
		Images:     services.NewImageService(cfg.ImageSearch),
		Monitoring: services.NewMonitoringService(),
	}
}

// NewRouter Ginルーターを初期化してルートを登録する
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.Default()

	// ミドルウェアの登録
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.Default())

	healthHandler := handlers.NewHealthHandler(deps.Dataset)
	r.GET("/health", healthHandler.HealthCheck)

	monitoringHandler := handlers.NewMonitoringHandler(deps.Monitoring)

	v1 := r.Group("/api/v1")
	v1.Use(services.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		// 輸出トレンド予測API
		if deps.Dataset == nil {
			// データセットを読み込めていない場合は503を返す
			unavailable := func(c *gin.Context) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrDataUnavailable.Error()})
			}
			v1.POST("/predecir", unavailable)
			v1.POST("/generar_grafica", unavailable)
			v1.POST("/predicciones", unavailable)
			v1.GET("/productos", unavailable)
		} else {
			trendHandler := handlers.NewTrendHandler(deps.Trend, deps.Images)
			v1.POST("/predecir", trendHandler.PredictTrend)
			v1.POST("/generar_grafica", trendHandler.GenerateChart)
			v1.POST("/predicciones", trendHandler.GetPredictions)
			v1.GET("/productos", trendHandler.GetProducts)
		}
	}

	return r
}
