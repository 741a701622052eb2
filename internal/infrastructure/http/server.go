package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"btcprice-poller/internal/domain"
	infraconfig "btcprice-poller/internal/infrastructure/config"
	"btcprice-poller/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Health reports the poller's tick outcomes.
type Health interface {
	Ready() bool
	Status() metrics.Status
}

// LatestReader is a record mirror that can return its newest record.
type LatestReader interface {
	Name() string
	Latest(ctx context.Context, asset, currency string) (domain.PriceRecord, error)
}

type Server struct {
	health   Health
	gatherer prometheus.Gatherer
	currency string
	interval time.Duration
	mirrors  []LatestReader
}

func NewServer(health Health, gatherer prometheus.Gatherer, currency string, interval time.Duration, mirrors ...LatestReader) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{health: health, gatherer: gatherer, currency: currency, interval: interval, mirrors: mirrors}
}

type statusResponse struct {
	Currency string `json:"currency"`
	Interval string `json:"interval"`
	metrics.Status
	Latest map[string]latestResponse `json:"latest,omitempty"`
}

type latestResponse struct {
	Amounts   map[string]float32 `json:"amounts,omitempty"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Currency: s.currency,
		Interval: s.interval.String(),
		Status:   s.health.Status(),
	}
	if len(s.mirrors) > 0 {
		resp.Latest = make(map[string]latestResponse, len(s.mirrors))
	}
	for _, m := range s.mirrors {
		rec, err := m.Latest(r.Context(), domain.AssetBTC, s.currency)
		if err != nil {
			resp.Latest[m.Name()] = latestResponse{Error: err.Error()}
			continue
		}
		amounts := make(map[string]float32, len(domain.PriceTypes()))
		for _, t := range domain.PriceTypes() {
			amounts[t.String()] = rec.Amount(t)
		}
		ts := rec.Timestamp.UTC()
		resp.Latest[m.Name()] = latestResponse{Amounts: amounts, Timestamp: &ts}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.health.Ready() {
		writeError(w, http.StatusServiceUnavailable, "no successful tick yet")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

// Run serves handler on addr until ctx is done.
func Run(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("ops_server_started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		log.Info("ops_server_stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Code: status, Message: msg})
}
