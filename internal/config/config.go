package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration
	TokenPath   string
	PageSize    int

	LogLevel string
	LogMode  string // "dev" or "prod"
}

func Load() Config {
	return Config{
		APIBaseURL:  getenv("POS_API_URL", "http://localhost:8000"),
		HTTPTimeout: parseDuration(getenv("POS_HTTP_TIMEOUT", "10s"), 10*time.Second),
		TokenPath:   getenv("POS_TOKEN_PATH", "pos-token.db"),
		PageSize:    parseInt(getenv("POS_PAGE_SIZE", "30"), 30),
		LogLevel:    getenv("POS_LOG_LEVEL", "info"),
		LogMode:     getenv("POS_LOG_MODE", "dev"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseInt(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
