package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	ServerPort  int

	HypixelAPIKey       string
	HypixelRequestLimit int // запросов в минуту

	CacheSizeMB int

	RefreshInterval time.Duration

	// Cloudflare R2: опционально. Если блок не заполнен, архивирование
	// снапшотов отключается.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
}

// ArchiverEnabled reports whether the R2 block is fully configured.
func (c *Config) ArchiverEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	apiKey := os.Getenv("HYPIXEL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("HYPIXEL_API_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	requestLimit, err := intEnv("HYPIXEL_REQUEST_LIMIT", 60)
	if err != nil {
		return nil, err
	}
	if requestLimit <= 0 {
		return nil, fmt.Errorf("HYPIXEL_REQUEST_LIMIT must be positive, got %d", requestLimit)
	}

	// Ниже минимума cache.New сам поднимет размер: freecache ограничивает
	// одну запись 1/1024 объема кэша.
	cacheSizeMB, err := intEnv("CACHE_SIZE_MB", 64)
	if err != nil {
		return nil, err
	}
	if cacheSizeMB <= 0 {
		return nil, fmt.Errorf("CACHE_SIZE_MB must be positive, got %d", cacheSizeMB)
	}

	refreshMinutes, err := intEnv("REFRESH_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:         dbURL,
		ServerPort:          port,
		HypixelAPIKey:       apiKey,
		HypixelRequestLimit: requestLimit,
		CacheSizeMB:         cacheSizeMB,
		RefreshInterval:     time.Duration(refreshMinutes) * time.Minute,
		R2AccountID:         os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
