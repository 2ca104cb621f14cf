package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":                 "9090",
		"ENVIRONMENT":          "test",
		"DATASET_PATH":         "sqlite:exportaciones.db",
		"DATASET_TABLE":        "registros",
		"RATE_LIMIT_RPS":       "2.5",
		"RATE_LIMIT_BURST":     "4",
		"IMAGE_SEARCH_API_KEY": "test-key",
		"IMAGE_LOOKUP_TIMEOUT": "750ms",
	}

	for key, value := range testCases {
		os.Setenv(key, value)
	}

	// テスト後にクリーンアップ
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.DatasetPath != "sqlite:exportaciones.db" {
		t.Errorf("Expected DatasetPath to be 'sqlite:exportaciones.db', got '%s'", cfg.DatasetPath)
	}

	if cfg.DatasetTable != "registros" {
		t.Errorf("Expected DatasetTable to be 'registros', got '%s'", cfg.DatasetTable)
	}

	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Errorf("Expected rate limit 2.5/4, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	if cfg.ImageSearch.APIKey != "test-key" {
		t.Errorf("Expected ImageSearch.APIKey to be 'test-key', got '%s'", cfg.ImageSearch.APIKey)
	}

	if cfg.ImageSearch.Timeout != 750*time.Millisecond {
		t.Errorf("Expected ImageSearch.Timeout to be 750ms, got %v", cfg.ImageSearch.Timeout)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// 環境変数をクリア
	vars := []string{
		"PORT", "ENVIRONMENT", "DATASET_PATH", "DATASET_TABLE",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"IMAGE_SEARCH_URL", "IMAGE_FALLBACK_URL", "IMAGE_LOOKUP_TIMEOUT", "IMAGE_CACHE_TTL",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	cfg := LoadConfig()

	// デフォルト値の検証
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}

	if cfg.DatasetTable != "exportaciones" {
		t.Errorf("Expected default DatasetTable to be 'exportaciones', got '%s'", cfg.DatasetTable)
	}

	if cfg.ImageSearch.FallbackURL != DefaultImageFallbackURL {
		t.Errorf("Expected default fallback URL, got '%s'", cfg.ImageSearch.FallbackURL)
	}

	if cfg.ImageSearch.Timeout != 5*time.Second {
		t.Errorf("Expected default image timeout 5s, got %v", cfg.ImageSearch.Timeout)
	}
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	os.Setenv("RATE_LIMIT_RPS", "fast")
	os.Setenv("IMAGE_CACHE_TTL", "-1h")
	defer os.Unsetenv("RATE_LIMIT_RPS")
	defer os.Unsetenv("IMAGE_CACHE_TTL")

	cfg := LoadConfig()

	if cfg.RateLimitRPS != 10 {
		t.Errorf("Expected RateLimitRPS fallback 10, got %v", cfg.RateLimitRPS)
	}
	if cfg.ImageSearch.CacheTTL != time.Hour {
		t.Errorf("Expected CacheTTL fallback 1h, got %v", cfg.ImageSearch.CacheTTL)
	}
}
