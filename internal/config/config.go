package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"

	"github.com/Checker-Finance/market-radar/internal/i18n"
	"github.com/Checker-Finance/market-radar/internal/ranking"
	pkgconfig "github.com/Checker-Finance/market-radar/pkg/config"
)

// Config holds the runtime configuration of radar-api.
type Config struct {
	ServiceName string // e.g. "market-radar"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.

	Port             int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	// Gamma upstream
	GammaBaseURL  string
	MarketURLBase string // deep-link prefix for slugs
	DefaultLimit  int
	MaxLimit      int
	GammaTimeout  time.Duration
	GammaRetryMax int
	GammaRPS      int
	GammaBurst    int

	RefreshInterval time.Duration
	RefreshTimeout  time.Duration

	// Optional snapshot cache; empty RedisAddr disables it.
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SnapshotTTL time.Duration

	// Optional snapshot events; empty NATSURL disables them.
	NATSURL         string
	SnapshotSubject string

	DefaultLocale i18n.Locale
}

// WatchConfig holds the runtime configuration of radar-watch.
type WatchConfig struct {
	ServiceName     string
	Env             string
	LogLevel        string
	RadarURL        string
	View            ranking.View
	Query           string
	Locale          i18n.Locale
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:      pkgconfig.GetEnv("SERVICE_NAME", "market-radar"),
		Env:              pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:         pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:             pkgconfig.GetEnvInt("RADAR_PORT", 9040),
		HTTPReadTimeout:  pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		GammaBaseURL:  pkgconfig.GetEnv("GAMMA_BASE_URL", "https://gamma-api.polymarket.com"),
		MarketURLBase: pkgconfig.GetEnv("MARKET_URL_BASE", "https://polymarket.com/event/"),
		DefaultLimit:  pkgconfig.GetEnvInt("MARKETS_DEFAULT_LIMIT", 100),
		MaxLimit:      pkgconfig.GetEnvInt("MARKETS_MAX_LIMIT", 500),
		GammaTimeout:  pkgconfig.GetEnvDuration("GAMMA_TIMEOUT", 30*time.Second),
		GammaRetryMax: pkgconfig.GetEnvInt("GAMMA_RETRY_MAX", 0),
		GammaRPS:      pkgconfig.GetEnvInt("GAMMA_RPS", 5),
		GammaBurst:    pkgconfig.GetEnvInt("GAMMA_BURST", 10),

		RefreshInterval: pkgconfig.GetEnvDuration("REFRESH_INTERVAL", 30*time.Second),
		RefreshTimeout:  pkgconfig.GetEnvDuration("REFRESH_TIMEOUT", 20*time.Second),

		RedisAddr:   pkgconfig.GetEnv("REDIS_ADDR", ""),
		RedisDB:     pkgconfig.GetEnvInt("REDIS_DB", 0),
		RedisPass:   pkgconfig.GetEnv("REDIS_PASS", ""),
		SnapshotTTL: pkgconfig.GetEnvDuration("SNAPSHOT_TTL", 10*time.Minute),

		NATSURL:         pkgconfig.GetEnv("NATS_URL", ""),
		SnapshotSubject: pkgconfig.GetEnv("SNAPSHOT_SUBJECT", "evt.markets.snapshot_refreshed.v1"),

		DefaultLocale: locale(pkgconfig.GetEnv("DEFAULT_LOCALE", "en")),
	}
}

// LoadWatch loads the radar-watch configuration. The display language comes
// from WATCH_LANG, then LANG, then English.
func LoadWatch() *WatchConfig {
	_ = godotenv.Load()

	view, err := ranking.ParseView(pkgconfig.GetEnv("WATCH_VIEW", string(ranking.ViewVolume24h)))
	if err != nil {
		view = ranking.ViewVolume24h
	}

	return &WatchConfig{
		ServiceName:     pkgconfig.GetEnv("SERVICE_NAME", "radar-watch"),
		Env:             pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:        pkgconfig.GetEnv("LOG_LEVEL", "warn"),
		RadarURL:        pkgconfig.GetEnv("RADAR_URL", "http://localhost:9040/api/markets?limit=100"),
		View:            view,
		Query:           pkgconfig.GetEnv("WATCH_QUERY", ""),
		Locale:          locale(pkgconfig.GetEnv("WATCH_LANG", pkgconfig.GetEnv("LANG", "en"))),
		RefreshInterval: pkgconfig.GetEnvDuration("REFRESH_INTERVAL", 30*time.Second),
		RequestTimeout:  pkgconfig.GetEnvDuration("REFRESH_TIMEOUT", 20*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("RADAR_PORT out of range: %d", c.Port))
	}
	if u, err := url.Parse(c.GammaBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("GAMMA_BASE_URL is not an absolute URL: %q", c.GammaBaseURL))
	}
	if c.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("MARKETS_DEFAULT_LIMIT must be positive: %d", c.DefaultLimit))
	}
	if c.MaxLimit < c.DefaultLimit {
		errs = append(errs, fmt.Errorf("MARKETS_MAX_LIMIT (%d) below MARKETS_DEFAULT_LIMIT (%d)", c.MaxLimit, c.DefaultLimit))
	}
	if c.GammaRetryMax < 0 {
		errs = append(errs, fmt.Errorf("GAMMA_RETRY_MAX must not be negative: %d", c.GammaRetryMax))
	}
	if c.GammaRPS <= 0 || c.GammaBurst <= 0 {
		errs = append(errs, fmt.Errorf("GAMMA_RPS and GAMMA_BURST must be positive"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("REFRESH_INTERVAL must be positive: %s", c.RefreshInterval))
	}
	if c.RedisAddr != "" && c.SnapshotTTL <= 0 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_TTL must be positive when REDIS_ADDR is set"))
	}
	if c.NATSURL != "" && c.SnapshotSubject == "" {
		errs = append(errs, fmt.Errorf("SNAPSHOT_SUBJECT is required when NATS_URL is set"))
	}
	return errors.Join(errs...)
}

func locale(tag string) i18n.Locale {
	if l, ok := i18n.Parse(tag); ok {
		return l
	}
	return i18n.Default
}
