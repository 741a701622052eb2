package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"
)

// Sink prints each record's line protocol instead of submitting it.
type Sink struct {
	mu  sync.Mutex
	out io.Writer
}

var _ application.RecordSink = (*Sink)(nil)

func New(out io.Writer) *Sink {
	if out == nil {
		out = os.Stdout
	}
	return &Sink{out: out}
}

func (s *Sink) Name() string { return "console" }

func (s *Sink) Submit(_ context.Context, rec domain.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, rec.LineProtocol())
	return err
}
