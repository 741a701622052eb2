package application

import (
	"context"
	"time"

	"btcprice-poller/internal/domain"

	"go.uber.org/zap"
)

// Poller runs one fetch-aggregate-submit cycle per tick.
type Poller struct {
	agg      *Aggregator
	sinks    []RecordSink
	observer Observer
	log      *zap.Logger
}

func NewPoller(agg *Aggregator, sinks []RecordSink, observer Observer, log *zap.Logger) *Poller {
	if observer == nil {
		observer = NoopObserver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{agg: agg, sinks: sinks, observer: observer, log: log}
}

// Tick collects one record and hands it to every sink in order.
// Any error aborts the tick and is returned unchanged.
func (p *Poller) Tick(ctx context.Context) error {
	start := time.Now()
	err := p.tick(ctx)
	p.observer.TickDone(time.Since(start), err)
	return err
}

func (p *Poller) tick(ctx context.Context) error {
	rec, err := p.agg.Collect(ctx)
	if err != nil {
		p.log.Warn("poller.collect_failed", zap.String("currency", p.agg.Currency()), zap.Error(err))
		return err
	}
	for _, s := range p.sinks {
		if err := p.submit(ctx, s, rec); err != nil {
			p.log.Warn("poller.submit_failed", zap.String("sink", s.Name()), zap.Error(err))
			return err
		}
	}
	if ce := p.log.Check(zap.DebugLevel, "poller.tick_done"); ce != nil {
		fields := []zap.Field{zap.String("currency", rec.Currency), zap.Time("ts", rec.Timestamp)}
		for _, t := range domain.PriceTypes() {
			fields = append(fields, zap.Float32(t.String(), rec.Amount(t)))
		}
		ce.Write(fields...)
	}
	return nil
}

func (p *Poller) submit(ctx context.Context, s RecordSink, rec domain.PriceRecord) error {
	start := time.Now()
	err := s.Submit(ctx, rec)
	p.observer.SubmitDone(s.Name(), time.Since(start), err)
	return err
}
