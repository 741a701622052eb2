package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/config"
	httpserver "btcprice-poller/internal/infrastructure/http"
	"btcprice-poller/internal/scheduler"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PollerApp is the assembled process: the tick loop plus the optional ops server.
type PollerApp struct {
	Poller    *application.Poller
	Scheduler *scheduler.Scheduler
	Ops       http.Handler
	OpsAddr   string
	Log       *zap.Logger
}

// InitPollerApp wires every component. The returned cleanup releases the mirrors.
func InitPollerApp(ctx context.Context, cfg config.Config, flags config.Flags, stdout io.Writer) (*PollerApp, func(), error) {
	log := ProvideLogger()

	dest, err := config.LoadDestination(flags.ConfigPath)
	if err != nil {
		return nil, func() {}, err
	}
	sched, err := scheduler.New(flags.Interval, log)
	if err != nil {
		return nil, func() {}, err
	}
	fetcher, err := ProvideQuoteFetcher(cfg, ProvideQuoteClient(cfg))
	if err != nil {
		return nil, func() {}, err
	}

	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var sinks []application.RecordSink
	if flags.DryRun {
		sinks = ProvideSinks(flags, stdout, nil, nil, nil, cfg)
	} else {
		db, closeDB, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			return nil, func() {}, fmt.Errorf("bootstrap pg: %w", err)
		}
		cleanups = append(cleanups, closeDB)
		rdb, closeRedis, err := ProvideRedisClient(cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("bootstrap redis: %w", err)
		}
		cleanups = append(cleanups, closeRedis)
		sinks = ProvideSinks(flags, stdout, ProvideInfluxWriter(dest, cfg, log), db, rdb, cfg)
	}

	collector, reg := ProvideCollector()
	poller, err := ProvidePoller(fetcher, flags, sinks, collector, log)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	app := &PollerApp{
		Poller:    poller,
		Scheduler: sched,
		OpsAddr:   cfg.OpsAddr,
		Log:       log,
	}
	if cfg.OpsAddr != "" {
		var mirrors []httpserver.LatestReader
		for _, sink := range sinks {
			if m, ok := sink.(httpserver.LatestReader); ok {
				mirrors = append(mirrors, m)
			}
		}
		app.Ops = httpserver.NewRouter(httpserver.NewServer(collector, reg, flags.Currency, sched.Interval, mirrors...))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	log.Info("poller_configured",
		zap.String("currency", flags.Currency),
		zap.Int64("interval_sec", flags.Interval),
		zap.Bool("dry_run", flags.DryRun),
		zap.Strings("sinks", names),
		zap.String("provider", cfg.Provider),
	)
	return app, cleanup, nil
}

// Run ticks until a tick fails or ctx is canceled. A failed tick is returned
// as-is so the caller can terminate the process.
func (a *PollerApp) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.OpsAddr != "" && a.Ops != nil {
		g.Go(func() error { return httpserver.Run(ctx, a.OpsAddr, a.Ops, a.Log) })
	}
	g.Go(func() error { return a.Scheduler.Run(ctx, a.Poller.Tick) })
	return g.Wait()
}
