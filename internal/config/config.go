package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sportzhub/livescore/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	DBURL              string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string

	CricAPIBaseURL              string
	CricAPIKey                  string
	CricAPITimeout              time.Duration
	CricAPICircuitEnabled       bool
	CricAPICircuitFailureCount  int
	CricAPICircuitOpenTimeout   time.Duration
	CricAPICircuitHalfOpenMax   int
	ScrapeEnabled               bool
	ScrapeFootballURL           string
	ScrapeBasketballURL         string
	ScrapeTimeout               time.Duration

	SyncEnabled    bool
	SyncInterval   time.Duration
	AdapterTimeout time.Duration

	CacheEnabled bool
	CacheTTL     time.Duration

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeAppName       string
	PyroscopeServerAddress string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	PprofEnabled bool
	PprofAddr    string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	if readTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_READ_TIMEOUT must be > 0")
	}

	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}
	if writeTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_WRITE_TIMEOUT must be > 0")
	}

	cricAPITimeout, err := time.ParseDuration(getEnv("CRICAPI_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICAPI_TIMEOUT: %w", err)
	}
	if cricAPITimeout <= 0 {
		return Config{}, fmt.Errorf("CRICAPI_TIMEOUT must be > 0")
	}

	cricAPICircuitEnabled, err := strconv.ParseBool(getEnv("CRICAPI_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICAPI_CIRCUIT_ENABLED: %w", err)
	}
	cricAPICircuitFailureCount, err := getEnvAsInt("CRICAPI_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICAPI_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cricAPICircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CRICAPI_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cricAPICircuitOpenTimeout, err := time.ParseDuration(getEnv("CRICAPI_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICAPI_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cricAPICircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CRICAPI_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cricAPICircuitHalfOpenMax, err := getEnvAsInt("CRICAPI_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICAPI_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cricAPICircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("CRICAPI_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	scrapeEnabled, err := strconv.ParseBool(getEnv("SCRAPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_ENABLED: %w", err)
	}
	scrapeTimeout, err := time.ParseDuration(getEnv("SCRAPE_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_TIMEOUT: %w", err)
	}
	if scrapeTimeout <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_TIMEOUT must be > 0")
	}

	syncEnabled, err := strconv.ParseBool(getEnv("SYNC_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_ENABLED: %w", err)
	}
	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_INTERVAL: %w", err)
	}
	if syncInterval <= 0 {
		return Config{}, fmt.Errorf("SYNC_INTERVAL must be > 0")
	}
	adapterTimeout, err := time.ParseDuration(getEnv("ADAPTER_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ADAPTER_TIMEOUT: %w", err)
	}
	if adapterTimeout <= 0 {
		return Config{}, fmt.Errorf("ADAPTER_TIMEOUT must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	return Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "livescore"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8000"),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		CricAPIBaseURL:             strings.TrimSpace(getEnv("CRICAPI_BASE_URL", "https://api.cricapi.com/v1")),
		CricAPIKey:                 strings.TrimSpace(getEnv("CRICAPI_KEY", "")),
		CricAPITimeout:             cricAPITimeout,
		CricAPICircuitEnabled:      cricAPICircuitEnabled,
		CricAPICircuitFailureCount: cricAPICircuitFailureCount,
		CricAPICircuitOpenTimeout:  cricAPICircuitOpenTimeout,
		CricAPICircuitHalfOpenMax:  cricAPICircuitHalfOpenMax,

		ScrapeEnabled:       scrapeEnabled,
		ScrapeFootballURL:   strings.TrimSpace(getEnv("SCRAPE_FOOTBALL_URL", "https://www.espn.com/soccer/scores")),
		ScrapeBasketballURL: strings.TrimSpace(getEnv("SCRAPE_BASKETBALL_URL", "https://www.espn.com/nba/scores")),
		ScrapeTimeout:       scrapeTimeout,

		SyncEnabled:    syncEnabled,
		SyncInterval:   syncInterval,
		AdapterTimeout: adapterTimeout,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     strings.TrimSpace(getEnv("UPTRACE_DSN", "")),

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", "livescore"),
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", ":6060"),

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
