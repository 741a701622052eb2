package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"btcprice-poller/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Aggregator joins the buy, sell and spot quotes of one tick into a PriceRecord.
type Aggregator struct {
	fetcher  QuoteFetcher
	currency string
	clock    Clock
	observer Observer
}

type AggregatorOption func(*Aggregator)

func WithClock(c Clock) AggregatorOption { return func(a *Aggregator) { a.clock = c } }

func WithFetchObserver(o Observer) AggregatorOption {
	return func(a *Aggregator) { a.observer = o }
}

func NewAggregator(fetcher QuoteFetcher, currency string, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{fetcher: fetcher, currency: currency}
	for _, opt := range opts {
		opt(a)
	}
	if a.clock == nil {
		a.clock = realClock{}
	}
	if a.observer == nil {
		a.observer = NoopObserver{}
	}
	return a
}

func (a *Aggregator) Currency() string { return a.currency }

// Collect fetches all price types concurrently and waits for every fetch to finish.
// The first failure fails the whole tick; no partial record is returned.
func (a *Aggregator) Collect(ctx context.Context) (domain.PriceRecord, error) {
	types := domain.PriceTypes()
	amounts := make([]float32, len(types))

	var g errgroup.Group
	for i, t := range types {
		i, t := i, t
		g.Go(func() error {
			start := time.Now()
			v, err := a.fetchOne(ctx, t)
			a.observer.FetchDone(t, time.Since(start), err)
			if err != nil {
				return err
			}
			amounts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.PriceRecord{}, err
	}

	return domain.PriceRecord{
		Source:    domain.SourceCoinbase,
		Asset:     domain.AssetBTC,
		Currency:  a.currency,
		Buy:       amounts[0],
		Sell:      amounts[1],
		Spot:      amounts[2],
		Timestamp: a.clock.Now().UTC(),
	}, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, t domain.PriceType) (float32, error) {
	q, err := a.fetcher.Fetch(ctx, t, a.currency)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(q.Amount, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s amount %q: %v", domain.ErrParse, t, q.Amount, err)
	}
	return float32(v), nil
}
