package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"
	"btcprice-poller/internal/infrastructure/httpx"
)

const (
	DefaultCoinbaseBase = "https://api.coinbase.com"
	coinbasePricesPath  = "/v2/prices/"
)

type CoinbaseProvider struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.QuoteFetcher = (*CoinbaseProvider)(nil)

type cbPriceResp struct {
	Data *struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

func (p *CoinbaseProvider) Fetch(ctx context.Context, t domain.PriceType, currency string) (domain.Quote, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultCoinbaseBase
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + coinbasePricesPath + t.String())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: coinbase: invalid base url: %v", domain.ErrFetch, err)
	}
	q := u.Query()
	q.Set("currency", currency)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: coinbase: create request: %v", domain.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = &httpx.Client{HTTP: http.DefaultClient}
	}
	resp, err := client.Do(ctx, req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: coinbase %s: %w", domain.ErrFetch, t, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Quote{}, fmt.Errorf("%w: coinbase %s: status %d", domain.ErrFetch, t, resp.StatusCode)
	}

	var body cbPriceResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Quote{}, fmt.Errorf("%w: coinbase %s: decode response: %v", domain.ErrParse, t, err)
	}
	if body.Data == nil {
		return domain.Quote{}, fmt.Errorf("%w: coinbase %s: missing data", domain.ErrParse, t)
	}
	if body.Data.Amount == "" {
		return domain.Quote{}, fmt.Errorf("%w: coinbase %s: missing amount", domain.ErrParse, t)
	}

	return domain.Quote{Type: t, Currency: currency, Amount: body.Data.Amount}, nil
}
