package config

import "time"

const (
	DefaultCurrency        = "GBP"
	DefaultIntervalSec     = 30
	DefaultShutdownTimeout = 5 * time.Second
	DefaultRedisTTL        = 5 * time.Minute
	DefaultPGMaxConns      = 2
	DefaultPGMinConns      = 1
)
