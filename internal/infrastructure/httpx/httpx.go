package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

var ErrInsecureScheme = errors.New("https required")

// Client wraps an *http.Client with default headers. It is built once and
// shared by every request of the process so connections are kept alive.
type Client struct {
	HTTP      *http.Client
	Headers   map[string]string
	HTTPSOnly bool
}

type Options struct {
	Timeout   time.Duration
	Headers   map[string]string
	HTTPSOnly bool
}

func New(opts Options) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	hc := &http.Client{Timeout: opts.Timeout, Transport: transport}
	if opts.HTTPSOnly {
		hc.CheckRedirect = rejectInsecureRedirect
	}
	return &Client{
		HTTP:      hc,
		Headers:   opts.Headers,
		HTTPSOnly: opts.HTTPSOnly,
	}
}

// rejectInsecureRedirect keeps redirects on https and applies the
// http.Client default limit of 10 hops.
func rejectInsecureRedirect(req *http.Request, via []*http.Request) error {
	if req.URL.Scheme != "https" {
		return fmt.Errorf("%w: redirect to %s", ErrInsecureScheme, req.URL.Redacted())
	}
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	return nil
}

// Do applies default headers without overriding ones already set on req.
// Response bodies are gunzipped transparently by the transport.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.HTTPSOnly && req.URL.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrInsecureScheme, req.URL.Redacted())
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	return hc.Do(req.WithContext(ctx))
}
