package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string // API bind address, e.g. ":8080"
	LogDir string // logs directory

	DatabaseURL string // postgres://...; empty means in-memory store

	CheckInterval   time.Duration // cadence of the check scheduler
	MaxConcurrent   int           // bounded fan-out per tick
	DefaultTimeout  int           // seconds, applied when a monitor has none
	RetentionDays   int           // history/alert retention for the janitor
	SlackWebhookURL string        // empty disables the alert mirror

	PublicAPIKeys []string
	AdminAPIKeys  []string
	APIRatePerMin int
	APIBurst      int
}

func FromEnv() Config {
	return Config{
		Addr:   getEnv("ADDR", ":8080"),
		LogDir: getEnv("LOG_DIR", "logs"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CheckInterval:   time.Duration(getEnvInt("CHECK_INTERVAL_S", 60)) * time.Second,
		MaxConcurrent:   getEnvInt("MAX_CONCURRENT_CHECKS", 32),
		DefaultTimeout:  getEnvInt("DEFAULT_TIMEOUT_S", 30),
		RetentionDays:   getEnvInt("RETENTION_DAYS", 90),
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),

		PublicAPIKeys: splitKeys(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:  splitKeys(os.Getenv("ADMIN_API_KEYS")),
		APIRatePerMin: getEnvInt("API_RPM", 120),
		APIBurst:      getEnvInt("API_BURST", 60),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
