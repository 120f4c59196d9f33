package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the trading bot.
type Config struct {
	Port string

	// Bybit
	BybitAPIKey    string
	BybitAPISecret string
	BybitTestnet   bool

	// Decision oracle (OpenAI-compatible endpoint)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Scheduler
	TickInterval     time.Duration
	CandleLimit      int
	ExecutionEnabled bool

	// Market data
	UseMockFeed bool
	FeedSymbols []string

	// Risk
	QtyPrecision int32

	// Database
	DBPath string

	// Auth
	JWTSecret         string
	AdminPasswordHash string

	// Balance sync
	BalanceSyncInterval time.Duration
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		BybitAPIKey:         os.Getenv("BYBIT_API_KEY"),
		BybitAPISecret:      os.Getenv("BYBIT_API_SECRET"),
		BybitTestnet:        getEnv("BYBIT_TESTNET", "false") == "true",
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o"),
		TickInterval:        getEnvDuration("SCHEDULER_INTERVAL", time.Minute),
		CandleLimit:         getEnvInt("CANDLE_LIMIT", 100),
		ExecutionEnabled:    getEnv("EXECUTION_ENABLED", "true") == "true",
		UseMockFeed:         getEnv("USE_MOCK_FEED", "true") == "true",
		FeedSymbols:         splitAndTrim(getEnv("FEED_SYMBOLS", "BTCUSDT,ETHUSDT")),
		QtyPrecision:        int32(getEnvInt("QTY_PRECISION", 3)),
		DBPath:              getEnv("DB_PATH", "./data/trading.db"),
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret"),
		AdminPasswordHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		BalanceSyncInterval: getEnvDuration("BALANCE_SYNC_INTERVAL", 30*time.Second),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
