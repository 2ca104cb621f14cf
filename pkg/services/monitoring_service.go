package services

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader リクエストIDを受け渡すヘッダー名
const RequestIDHeader = "X-Request-ID"

// maxLogEntries メモリに保持するリクエストログの上限
const maxLogEntries = 10000

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	RequestID    string        `json:"requestId"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
type MonitoringService struct {
	logs     []LogEntry
	mu       sync.RWMutex
	location *time.Location
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	// 集計の時間帯はデータセットの現地時間（リマ）に合わせる
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		loc = time.UTC
	}
	return &MonitoringService{
		logs:     make([]LogEntry, 0),
		location: loc,
	}
}

// LogRequest はリクエストを記録します。上限を超えた古いログは破棄します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - maxLogEntries; over > 0 {
		s.logs = append([]LogEntry(nil), s.logs[over:]...)
	}
}

// Len は保持しているログ件数を返します。
func (s *MonitoringService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

// LoggingMiddleware はリクエストIDを付与し、リクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		// ヘルスチェックとモニタリング自身は記録しない
		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}

		entry := LogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start),
		}
		s.LogRequest(entry)

		if entry.StatusCode >= http.StatusInternalServerError {
			log.Printf("❌ [%s] %s %s -> %d (%v)", requestID, entry.Method, path, entry.StatusCode, entry.ResponseTime)
		}
	}
}

// RateLimitMiddleware はプロセス全体で共有するトークンバケットでリクエストを制限します。
// rps が0以下の場合は制限しません。
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.Printf("⚠️ [レート制限] %s %s (%s)", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Demasiadas solicitudes, intente nuevamente más tarde."})
			return
		}
		c.Next()
	}
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []map[string]interface{} `json:"requestsOverTime"`
	Endpoints        map[string]int           `json:"endpoints"`
	StatusCodes      []map[string]interface{} `json:"statusCodes"`
	AvgResponseTimes []map[string]interface{} `json:"avgResponseTimes"`
	RecentErrors     []LogEntry               `json:"recentErrors"`
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().In(s.location)
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filteredLogs := make([]LogEntry, 0)
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filteredLogs = append(filteredLogs, entry)
		}
	}

	// 時間ごとのバケットを過去から現在の順に作る
	requestsOverTime := make([]map[string]interface{}, periodHours)
	hourlyBuckets := make(map[string]int)
	for _, entry := range filteredLogs {
		hourlyBuckets[entry.Timestamp.In(s.location).Truncate(time.Hour).Format(time.RFC3339)]++
	}
	for i := 0; i < periodHours; i++ {
		targetTime := now.Add(-time.Duration(periodHours-1-i) * time.Hour)
		bucketKey := targetTime.Truncate(time.Hour).Format(time.RFC3339)
		requestsOverTime[i] = map[string]interface{}{
			"time":     targetTime.Format("15:00"),
			"requests": hourlyBuckets[bucketKey],
		}
	}

	endpoints := make(map[string]int)
	statusCodes := map[string]int{
		"2xx Success":      0,
		"4xx Client Error": 0,
		"5xx Server Error": 0,
	}
	responseTimeSum := make(map[string]time.Duration)
	for _, entry := range filteredLogs {
		endpoints[entry.Path]++
		responseTimeSum[entry.Path] += entry.ResponseTime
		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCodes["2xx Success"]++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusCodes["4xx Client Error"]++
		case entry.StatusCode >= 500:
			statusCodes["5xx Server Error"]++
		}
	}

	statusCodesSlice := make([]map[string]interface{}, 0, len(statusCodes))
	for name, value := range statusCodes {
		statusCodesSlice = append(statusCodesSlice, map[string]interface{}{"name": name, "value": value})
	}

	avgResponseTimes := make([]map[string]interface{}, 0, len(responseTimeSum))
	for path, total := range responseTimeSum {
		avg := total.Milliseconds() / int64(endpoints[path])
		avgResponseTimes = append(avgResponseTimes, map[string]interface{}{"endpoint": path, "responseTime": avg})
	}

	// 直近のサーバーエラー（最大10件、新しい順）
	recentErrors := make([]LogEntry, 0)
	for i := len(filteredLogs) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filteredLogs[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filteredLogs[i])
		}
	}

	return DashboardData{
		RequestsOverTime: requestsOverTime,
		Endpoints:        endpoints,
		StatusCodes:      statusCodesSlice,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}
