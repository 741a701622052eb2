package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"btcprice-poller/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func withPostgres(t *testing.T) *pg.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := pg.Connect(ctx, dsn)
		if err != nil {
			t.Skip("pg not available: ", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			t.Skip("pg not reachable: ", err)
		}
		_, err = pg.RunMigrations(ctx, db)
		require.NoError(t, err)
		t.Cleanup(db.Close)
		return db
	}
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set DATABASE_URL or TESTCONTAINERS=1 to run PG tests")
	}

	container, err := postgres.RunContainer(ctx,
		postgres.WithDatabase("prices"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pg.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	_, err = pg.RunMigrations(ctx, db)
	require.NoError(t, err)
	return db
}
