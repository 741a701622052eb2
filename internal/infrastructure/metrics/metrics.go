package metrics

import (
	"sync"
	"time"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "btcprice_poller"

// Collector exports poller outcomes to Prometheus and keeps the last tick
// status for the readiness and status endpoints.
type Collector struct {
	ticks    *prometheus.CounterVec
	tickDur  prometheus.Histogram
	fetches  *prometheus.CounterVec
	fetchDur *prometheus.HistogramVec
	submits  *prometheus.CounterVec
	lastOK   prometheus.Gauge

	mu     sync.RWMutex
	status Status
}

type Status struct {
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Ticks       int64     `json:"ticks"`
	Failures    int64     `json:"failures"`
}

var _ application.Observer = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Ticks processed, by result.",
		}, []string{"result"}),
		tickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of a full fetch-aggregate-submit cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Quote fetches, by price type and result.",
		}, []string{"price_type", "result"}),
		fetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single quote fetch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"price_type"}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Record submissions, by sink and result.",
		}, []string{"sink", "result"}),
		lastOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful tick.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.ticks, c.tickDur, c.fetches, c.fetchDur, c.submits, c.lastOK)
	}
	return c
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) FetchDone(t domain.PriceType, d time.Duration, err error) {
	c.fetches.WithLabelValues(t.String(), result(err)).Inc()
	c.fetchDur.WithLabelValues(t.String()).Observe(d.Seconds())
}

func (c *Collector) SubmitDone(sink string, _ time.Duration, err error) {
	c.submits.WithLabelValues(sink, result(err)).Inc()
}

func (c *Collector) TickDone(d time.Duration, err error) {
	c.ticks.WithLabelValues(result(err)).Inc()
	c.tickDur.Observe(d.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Ticks++
	if err != nil {
		c.status.Failures++
		c.status.LastError = err.Error()
		return
	}
	now := time.Now().UTC()
	c.status.LastSuccess = now
	c.lastOK.Set(float64(now.Unix()))
}

// Status returns a snapshot of the tick counters.
func (c *Collector) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Ready reports whether at least one tick has succeeded.
func (c *Collector) Ready() bool {
	return !c.Status().LastSuccess.IsZero()
}
