package influx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"
	"btcprice-poller/internal/infrastructure/httpx"

	"go.uber.org/zap"
)

const writePath = "/api/v2/write"

// maxErrBody caps how much of a rejected write's body ends up in the error.
const maxErrBody = 512

// Writer posts line-protocol records to an InfluxDB v2 write endpoint.
type Writer struct {
	dest   domain.DestinationConfig
	client *httpx.Client
	log    *zap.Logger
}

var _ application.RecordSink = (*Writer)(nil)

// NewWriter builds a Writer whose client carries the auth and content headers.
func NewWriter(dest domain.DestinationConfig, client *httpx.Client, log *zap.Logger) *Writer {
	if client == nil {
		client = &httpx.Client{HTTP: http.DefaultClient}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dest: dest, client: client, log: log}
}

// DefaultHeaders returns the headers every write request carries.
func DefaultHeaders(token string) map[string]string {
	return map[string]string{
		"Accept":        "application/json",
		"Content-Type":  "text/plain; charset=utf-8",
		"Authorization": "Token " + token,
	}
}

func (w *Writer) Name() string { return "influx" }

// WriteURL returns <host>/api/v2/write?bucket=<bucket>&org=<org>&precision=s.
func (w *Writer) WriteURL() (string, error) {
	u, err := url.Parse(strings.TrimRight(w.dest.Host, "/") + writePath)
	if err != nil {
		return "", fmt.Errorf("%w: influx host %q: %v", domain.ErrConfig, w.dest.Host, err)
	}
	q := url.Values{}
	q.Set("bucket", w.dest.Bucket)
	q.Set("org", w.dest.Org)
	q.Set("precision", "s")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Submit writes rec and succeeds only on 204 No Content.
func (w *Writer) Submit(ctx context.Context, rec domain.PriceRecord) error {
	target, err := w.WriteURL()
	if err != nil {
		return err
	}
	line := rec.LineProtocol()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(line))
	if err != nil {
		return fmt.Errorf("%w: influx: create request: %v", domain.ErrSubmit, err)
	}
	for k, v := range DefaultHeaders(w.dest.Token) {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: influx: do request: %w", domain.ErrSubmit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		w.log.Error("influx.incorrect_status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
			zap.String("line", line),
		)
		return fmt.Errorf("%w: influx: incorrect status %d: %s", domain.ErrSubmit, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
