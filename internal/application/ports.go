package application

import (
	"context"
	"time"

	"btcprice-poller/internal/domain"
)

// QuoteFetcher returns one quote per call.
type QuoteFetcher interface {
	Fetch(ctx context.Context, t domain.PriceType, currency string) (domain.Quote, error)
}

// RecordSink receives every aggregated record.
type RecordSink interface {
	Name() string
	Submit(ctx context.Context, rec domain.PriceRecord) error
}

// Observer is notified about each fetch, submit and tick outcome.
type Observer interface {
	FetchDone(t domain.PriceType, d time.Duration, err error)
	SubmitDone(sink string, d time.Duration, err error)
	TickDone(d time.Duration, err error)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NoopObserver discards every notification.
type NoopObserver struct{}

func (NoopObserver) FetchDone(domain.PriceType, time.Duration, error) {}
func (NoopObserver) SubmitDone(string, time.Duration, error)          {}
func (NoopObserver) TickDone(time.Duration, error)                    {}
