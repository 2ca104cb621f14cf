package handler

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	config "agro-trend-api/configs"
	"agro-trend-api/pkg/server"
	"agro-trend-api/pkg/services"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		log.Printf("🟢 [setupApp] Initializing Gin application")

		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// 読み込みに失敗しても関数は起動し、予測APIは503を返す
		dataset, err := services.LoadDataset(ctx, cfg.DatasetPath, cfg.DatasetTable)
		if err != nil {
			log.Printf("❌ [setupApp] %v", err)
		}

		app = server.NewRouter(cfg, server.NewDependencies(cfg, dataset))
	})
	return app
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
