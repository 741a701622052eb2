package config

import (
	"fmt"
	"io"

	"btcprice-poller/internal/domain"
	infraconfig "btcprice-poller/internal/infrastructure/config"

	"github.com/spf13/pflag"
)

type Flags struct {
	Currency   string
	Interval   int64
	ConfigPath string
	DryRun     bool
}

// ParseFlags parses the command line (without the program name).
func ParseFlags(args []string, stderr io.Writer) (Flags, error) {
	var f Flags
	fs := pflag.NewFlagSet("btcprice-poller", pflag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}
	fs.StringVarP(&f.Currency, "currency", "c", infraconfig.DefaultCurrency, "fiat currency to quote BTC in")
	fs.Int64VarP(&f.Interval, "interval", "i", infraconfig.DefaultIntervalSec, "seconds between ticks; 1-60 keeps ticks minute-aligned")
	fs.StringVar(&f.ConfigPath, "config", "", "path to the sink config file (host, org, bucket, token)")
	fs.BoolVar(&f.DryRun, "dry-run", false, "print records to stdout instead of writing them")

	if err := fs.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	if f.ConfigPath == "" {
		return Flags{}, fmt.Errorf("%w: --config is required", domain.ErrConfig)
	}
	if f.Currency == "" {
		return Flags{}, fmt.Errorf("%w: --currency must not be empty", domain.ErrConfig)
	}
	return f, nil
}
