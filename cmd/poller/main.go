package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"btcprice-poller/internal/bootstrap"
	"btcprice-poller/internal/config"
	"btcprice-poller/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	flags, err := config.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal("parse flags", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitPollerApp(ctx, bootstrap.ProvideConfig(), flags, os.Stdout)
	if err != nil {
		log.Fatal("init poller", zap.Error(err))
	}

	err = app.Run(ctx)
	cleanup()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("poller terminated", zap.Error(err))
	}
	log.Info("poller stopped")
}
