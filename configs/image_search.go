package config

import "time"

// DefaultImageFallbackURL 画像検索に失敗した場合に返す固定URL
const DefaultImageFallbackURL = "https://upload.wikimedia.org/wikipedia/commons/6/65/No-Image-Placeholder.svg"

// ImageSearchConfig 画像検索API（Google Custom Search）設定
type ImageSearchConfig struct {
	BaseURL          string
	APIKey           string
	EngineID         string
	FallbackURL      string
	Timeout          time.Duration
	CacheTTL         time.Duration
	LookupsPerSecond float64
}

// GetImageSearchConfig 画像検索設定を取得
func GetImageSearchConfig() *ImageSearchConfig {
	return &ImageSearchConfig{
		BaseURL:          getEnv("IMAGE_SEARCH_URL", "https://www.googleapis.com/customsearch/v1"),
		APIKey:           getEnv("IMAGE_SEARCH_API_KEY", ""),
		EngineID:         getEnv("IMAGE_SEARCH_ENGINE_ID", ""),
		FallbackURL:      getEnv("IMAGE_FALLBACK_URL", DefaultImageFallbackURL),
		Timeout:          getEnvDuration("IMAGE_LOOKUP_TIMEOUT", 5*time.Second),
		CacheTTL:         getEnvDuration("IMAGE_CACHE_TTL", time.Hour),
		LookupsPerSecond: getEnvFloat("IMAGE_LOOKUPS_PER_SECOND", 2),
	}
}
