package redisstore_test

import (
	"context"
	"testing"
	"time"

	"btcprice-poller/internal/domain"
	redisstore "btcprice-poller/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.New(client, ttl), mr
}

func rec(spot float32, ts int64) domain.PriceRecord {
	return domain.PriceRecord{
		Source: domain.SourceCoinbase, Asset: domain.AssetBTC, Currency: "GBP",
		Buy: 50000.5, Sell: 49950.25, Spot: spot, Timestamp: time.Unix(ts, 0),
	}
}

func TestSubmit_OverwritesLatest(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Submit(ctx, rec(50010, 1700000000)))
	require.NoError(t, store.Submit(ctx, rec(50020, 1700000030)))

	got, err := store.Latest(ctx, domain.AssetBTC, "GBP")
	require.NoError(t, err)
	require.Equal(t, float32(50020), got.Spot)
	require.Equal(t, int64(1700000030), got.Timestamp.Unix())

	raw, err := mr.Get(redisstore.Key(domain.AssetBTC, "GBP"))
	require.NoError(t, err)
	require.Contains(t, raw, `"line":"BTC,source=Coinbase,currency=GBP buy=50000.5,sell=49950.25,spot=50020 1700000030"`)
}

func TestSubmit_ExpiresAfterTTL(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Submit(ctx, rec(50010, 1700000000)))
	mr.FastForward(2 * time.Minute)

	_, err := store.Latest(ctx, domain.AssetBTC, "GBP")
	require.ErrorIs(t, err, redis.Nil)
}

func TestSubmit_ServerDown(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	mr.Close()
	err := store.Submit(context.Background(), rec(1, 1))
	require.ErrorIs(t, err, domain.ErrSubmit)
}
