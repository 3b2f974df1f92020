package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string

	// RabbitMQ
	RabbitURL      string
	RabbitExchange string

	// Redis (optional): caches platform page / organization lookups
	RedisURL         string
	PlatformCacheTTL time.Duration

	// Rate Limiting
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Platform APIs
	FacebookGraphURL  string
	EventbriteAPIURL  string
	BandsintownAPIURL string
	PlatformTimeout   time.Duration

	// Defaults applied to events that leave them empty
	HomeTimezone string
	HomeCurrency string
	HomeRegion   string

	// Orchestrator
	PublishParallelism int
	UpdatePlatforms    []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8085")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "city.events")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.PlatformCacheTTL = getDuration("PLATFORM_CACHE_TTL", 10*time.Minute)

	// Rate Limiting Defaults: 30 reqs / 1 min (publishing fans out to paid APIs)
	cfg.RLEnabled = getEnv("RL_ENABLED", "true") == "true"
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 30)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	// a publish request waits on every platform
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 90*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	cfg.FacebookGraphURL = getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v19.0")
	cfg.EventbriteAPIURL = getEnv("EVENTBRITE_API_URL", "https://www.eventbriteapi.com/v3")
	cfg.BandsintownAPIURL = getEnv("BANDSINTOWN_API_URL", "https://rest.bandsintown.com")
	cfg.PlatformTimeout = getDuration("PLATFORM_TIMEOUT", 20*time.Second)

	cfg.HomeTimezone = getEnv("HOME_TIMEZONE", "America/Toronto")
	cfg.HomeCurrency = strings.ToUpper(getEnv("HOME_CURRENCY", "CAD"))
	cfg.HomeRegion = getEnv("HOME_REGION", "QC")

	cfg.PublishParallelism = getIntEnv("PUBLISH_PARALLELISM", 4)
	cfg.UpdatePlatforms = getListEnv("UPDATE_PLATFORMS", []string{"facebook", "eventbrite"})

	// validation
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}

	// Rabbit: optional in dev, required elsewhere
	if cfg.AppEnv != "dev" && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing RABBIT_URL (required when APP_ENV != dev)")
	}

	if _, err := time.LoadLocation(cfg.HomeTimezone); err != nil {
		return nil, fmt.Errorf("invalid HOME_TIMEZONE %q: %w", cfg.HomeTimezone, err)
	}
	if cfg.PublishParallelism < 1 {
		return nil, fmt.Errorf("PUBLISH_PARALLELISM must be at least 1")
	}

	return cfg, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getListEnv splits a comma separated value, dropping blanks. "none" yields an empty list.
func getListEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if strings.EqualFold(v, "none") {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
