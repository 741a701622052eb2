package pg

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"btcprice-poller/internal/domain"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsTable = "price_schema_migrations"
	readyAttempts   = 20
	readyEvery      = 500 * time.Millisecond
)

// RunMigrations waits for the server, applies the embedded schema and
// returns the resulting schema version.
func RunMigrations(ctx context.Context, db *DB) (uint, error) {
	if err := waitReady(ctx, db); err != nil {
		return 0, err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migrate src: %w", err)
	}
	// shares the pool's connections instead of dialing a second time
	sqldb := stdlib.OpenDBFromPool(db.Pool)
	driver, err := pgxmigrate.WithInstance(sqldb, &pgxmigrate.Config{MigrationsTable: migrationsTable})
	if err != nil {
		_ = sqldb.Close()
		return 0, fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return 0, fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migrate: schema version %d is dirty", version)
	}
	return version, nil
}

func waitReady(ctx context.Context, db *DB) error {
	var err error
	for attempt := 1; attempt <= readyAttempts; attempt++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		t := time.NewTimer(readyEvery)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w: postgres not ready: %w", domain.ErrConfig, ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Errorf("%w: postgres not ready after %d attempts: %w", domain.ErrConfig, readyAttempts, err)
}
