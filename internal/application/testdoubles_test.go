package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"btcprice-poller/internal/domain"
)

var errNetwork = errors.New("dial tcp: connection refused")

type fakeFetcher struct {
	mu      sync.Mutex
	amounts map[domain.PriceType]string
	errs    map[domain.PriceType]error
	calls   []domain.PriceType
	delay   time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, t domain.PriceType, currency string) (domain.Quote, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls = append(f.calls, t)
	f.mu.Unlock()
	if err := f.errs[t]; err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Type: t, Currency: currency, Amount: f.amounts[t]}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func okFetcher() *fakeFetcher {
	return &fakeFetcher{amounts: map[domain.PriceType]string{
		domain.PriceTypeBuy:  "50000.5",
		domain.PriceTypeSell: "49950.25",
		domain.PriceTypeSpot: "50010.00",
	}}
}

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeSink struct {
	name string
	err  error
	got  []domain.PriceRecord
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Submit(_ context.Context, rec domain.PriceRecord) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, rec)
	return nil
}

type recordingObserver struct {
	mu      sync.Mutex
	fetches map[domain.PriceType]error
	submits map[string]error
	ticks   []error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{fetches: map[domain.PriceType]error{}, submits: map[string]error{}}
}

func (o *recordingObserver) FetchDone(t domain.PriceType, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetches[t] = err
}

func (o *recordingObserver) SubmitDone(sink string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.submits[sink] = err
}

func (o *recordingObserver) TickDone(_ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ticks = append(o.ticks, err)
}
