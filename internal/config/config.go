package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	infraconfig "btcprice-poller/internal/infrastructure/config"
)

// Config carries the process settings read from the environment. The sink
// destination and the CLI options are loaded separately.
type Config struct {
	// Common
	Env      string
	LogLevel string
	// Provider
	Provider        string
	CoinbaseAPIBase string
	HTTPSOnly       bool
	RequestTimeout  time.Duration
	// Ops server
	OpsAddr string
	// Mirrors
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return def
}

func durMS(key string, defMS int) time.Duration {
	ms := atoiDef(getEnv(key, fmt.Sprint(defMS)), defMS)
	return time.Duration(ms) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Provider:        getEnv("PROVIDER", "coinbase"),
		CoinbaseAPIBase: getEnv("COINBASE_API_BASE", "https://api.coinbase.com"),
		HTTPSOnly:       boolDef(os.Getenv("HTTPS_ONLY"), true),
		RequestTimeout:  durMS("REQUEST_TIMEOUT_MS", 0),
		OpsAddr:         getEnv("OPS_ADDR", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:        durMS("REDIS_TTL_MS", int(infraconfig.DefaultRedisTTL/time.Millisecond)),
	}
}
