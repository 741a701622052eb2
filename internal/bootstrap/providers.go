package bootstrap

import (
	"context"
	"fmt"
	"io"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/config"
	"btcprice-poller/internal/domain"
	"btcprice-poller/internal/infrastructure/console"
	"btcprice-poller/internal/infrastructure/httpx"
	"btcprice-poller/internal/infrastructure/influx"
	"btcprice-poller/internal/infrastructure/logx"
	"btcprice-poller/internal/infrastructure/metrics"
	"btcprice-poller/internal/infrastructure/pg"
	"btcprice-poller/internal/infrastructure/provider"
	redisstore "btcprice-poller/internal/infrastructure/redis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

// ProvideQuoteClient builds the client shared by every quote request.
func ProvideQuoteClient(cfg config.Config) *httpx.Client {
	return httpx.New(httpx.Options{
		Timeout:   cfg.RequestTimeout,
		Headers:   map[string]string{"Accept": "application/json"},
		HTTPSOnly: cfg.HTTPSOnly,
	})
}

func ProvideQuoteFetcher(cfg config.Config, client *httpx.Client) (application.QuoteFetcher, error) {
	switch cfg.Provider {
	case "coinbase", "":
		return &provider.CoinbaseProvider{BaseURL: cfg.CoinbaseAPIBase, Client: client}, nil
	case "fake":
		return provider.NewFake("50000.5", "49950.25", "50010.00"), nil
	default:
		return nil, fmt.Errorf("%w: unsupported PROVIDER=%q", domain.ErrConfig, cfg.Provider)
	}
}

func ProvideInfluxWriter(dest domain.DestinationConfig, cfg config.Config, log *zap.Logger) *influx.Writer {
	client := httpx.New(httpx.Options{
		Timeout: cfg.RequestTimeout,
		Headers: influx.DefaultHeaders(dest.Token),
	})
	return influx.NewWriter(dest, client, log)
}

// ProvideDB connects the Postgres mirror; it returns a nil DB when DATABASE_URL is unset.
func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: postgres: %v", domain.ErrConfig, err)
	}
	version, err := pg.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, func() {}, err
	}
	if log != nil {
		log.Info("pg_migrated", zap.Uint("schema_version", version))
	}
	cleanup := func() {
		if log != nil {
			log.Info("closing pg")
		}
		db.Close()
	}
	return db, cleanup, nil
}

// ProvideRedisClient returns a nil client when REDIS_ADDR is unset.
func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	if cfg.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

// ProvideSinks orders the sinks of a tick: Influx first, then the mirrors.
// Dry-run replaces all of them with the console sink.
func ProvideSinks(flags config.Flags, stdout io.Writer, w *influx.Writer, db *pg.DB, rdb *redis.Client, cfg config.Config) []application.RecordSink {
	if flags.DryRun {
		return []application.RecordSink{console.New(stdout)}
	}
	sinks := []application.RecordSink{w}
	if db != nil {
		sinks = append(sinks, pg.NewPriceRepo(db))
	}
	if rdb != nil {
		sinks = append(sinks, redisstore.New(rdb, cfg.RedisTTL))
	}
	return sinks
}

func ProvideCollector() (*metrics.Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewCollector(reg), reg
}

func ProvidePoller(fetcher application.QuoteFetcher, flags config.Flags, sinks []application.RecordSink, c *metrics.Collector, log *zap.Logger) (*application.Poller, error) {
	if len(sinks) == 0 {
		return nil, application.ErrNoSinks
	}
	agg := application.NewAggregator(fetcher, flags.Currency, application.WithFetchObserver(c))
	return application.NewPoller(agg, sinks, c, log), nil
}
