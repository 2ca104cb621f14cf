package main

import (
	"context"
	"log"
	"time"

	config "agro-trend-api/configs"
	"agro-trend-api/pkg/server"
	"agro-trend-api/pkg/services"

	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	// データセットは起動時に一度だけ読み込む。読めなければ起動しない
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	dataset, err := services.LoadDataset(ctx, cfg.DatasetPath, cfg.DatasetTable)
	cancel()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	r := server.NewRouter(cfg, server.NewDependencies(cfg, dataset))

	log.Printf("Starting agro-trend-api server on :%s (%s, %d products)", cfg.Port, cfg.Environment, len(dataset.Products()))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
