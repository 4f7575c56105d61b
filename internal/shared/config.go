package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CatalogChannel string
	BackendBase    string
	BackendKey     string
	BackendRPS     int
	Workers        int
	Categories     []string
	SyncUserIDs    []string
	CacheTTL       time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/homezy?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		CatalogChannel: env("CATALOG_CHANNEL", "homezy:catalog-changed"),
		BackendBase:    env("BACKEND_BASE_URL", "http://localhost:9000/v1"),
		BackendKey:     env("BACKEND_API_KEY", ""),
		BackendRPS:     atoi("BACKEND_RPS", 5),
		Workers:        atoi("SYNC_WORKERS", 4),
		Categories:     splitCSV(env("SYNC_CATEGORIES", "homes,experiences,services")),
		SyncUserIDs:    splitCSV(os.Getenv("SYNC_USER_IDS")),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.BackendKey == "" {
		log.Warn().Msg("BACKEND_API_KEY is empty")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, dropping blank entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
