package handlers

import (
	"net/http"

	"agro-trend-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// HealthHandler は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
type HealthHandler struct {
	dataset *services.Dataset
}

// NewHealthHandler は新しいHealthHandlerを生成します。
func NewHealthHandler(dataset *services.Dataset) *HealthHandler {
	return &HealthHandler{dataset: dataset}
}

// HealthCheck はデータセットが読み込まれていれば件数とともに ok を返します。
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.dataset == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": services.ErrDataUnavailable.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "records": h.dataset.Len()})
}
