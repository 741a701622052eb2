package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store keeps the latest record per asset/currency under a TTL so readers
// can tell a stale price from a live one.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.RecordSink = (*Store)(nil)

type latestRecord struct {
	Source    string  `json:"source"`
	Asset     string  `json:"asset"`
	Currency  string  `json:"currency"`
	Buy       float32 `json:"buy"`
	Sell      float32 `json:"sell"`
	Spot      float32 `json:"spot"`
	Timestamp int64   `json:"timestamp"`
	Line      string  `json:"line"`
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func Key(asset, currency string) string {
	return fmt.Sprintf("price:%s:%s:latest", asset, currency)
}

func (s *Store) Name() string { return "redis" }

func (s *Store) Submit(ctx context.Context, rec domain.PriceRecord) error {
	b, err := json.Marshal(latestRecord{
		Source:    rec.Source,
		Asset:     rec.Asset,
		Currency:  rec.Currency,
		Buy:       rec.Buy,
		Sell:      rec.Sell,
		Spot:      rec.Spot,
		Timestamp: rec.Timestamp.Unix(),
		Line:      rec.LineProtocol(),
	})
	if err != nil {
		return fmt.Errorf("%w: redis: encode record: %v", domain.ErrSubmit, err)
	}
	if err := s.Client.Set(ctx, Key(rec.Asset, rec.Currency), b, s.TTL).Err(); err != nil {
		return fmt.Errorf("%w: redis: set latest: %w", domain.ErrSubmit, err)
	}
	return nil
}

// Latest returns the stored record, or redis.Nil when none is live.
func (s *Store) Latest(ctx context.Context, asset, currency string) (domain.PriceRecord, error) {
	b, err := s.Client.Get(ctx, Key(asset, currency)).Bytes()
	if err != nil {
		return domain.PriceRecord{}, err
	}
	var lr latestRecord
	if err := json.Unmarshal(b, &lr); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("%w: redis: decode latest: %v", domain.ErrParse, err)
	}
	return domain.PriceRecord{
		Source:    lr.Source,
		Asset:     lr.Asset,
		Currency:  lr.Currency,
		Buy:       lr.Buy,
		Sell:      lr.Sell,
		Spot:      lr.Spot,
		Timestamp: time.Unix(lr.Timestamp, 0).UTC(),
	}, nil
}
