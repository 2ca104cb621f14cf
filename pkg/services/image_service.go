package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	config "agro-trend-api/configs"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ImageService 製品名から画像URLを検索する（Google Custom Search）。
// 失敗時は常にフォールバックURLを返し、エラーを呼び出し元に伝播させない。
type ImageService struct {
	config  *config.ImageSearchConfig
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
}

// imageSearchResponse Custom Search APIのレスポンス（必要な部分のみ）
type imageSearchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// NewImageService 新しいImageServiceを生成
func NewImageService(cfg *config.ImageSearchConfig) *ImageService {
	limit := rate.Inf
	if cfg.LookupsPerSecond > 0 {
		limit = rate.Limit(cfg.LookupsPerSecond)
	}

	return &ImageService{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Lookup 製品の画像URLを返す
func (s *ImageService) Lookup(ctx context.Context, product string) string {
	key := strings.ToLower(strings.TrimSpace(product))
	if cached, found := s.cache.Get(key); found {
		return cached.(string)
	}

	if s.config.APIKey == "" || s.config.EngineID == "" {
		return s.config.FallbackURL
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	link, err := s.search(ctx, product)
	if err != nil {
		log.Printf("⚠️ [画像検索] '%s' の画像を取得できませんでした: %v", product, err)
		return s.config.FallbackURL
	}

	s.cache.Set(key, link, cache.DefaultExpiration)
	return link
}

func (s *ImageService) search(ctx context.Context, product string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", product)
	params.Set("key", s.config.APIKey)
	params.Set("cx", s.config.EngineID)
	params.Set("searchType", "image")
	params.Set("num", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code %d", resp.StatusCode)
	}

	var result imageSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Items) == 0 || strings.TrimSpace(result.Items[0].Link) == "" {
		return "", fmt.Errorf("no image results")
	}
	return result.Items[0].Link, nil
}
