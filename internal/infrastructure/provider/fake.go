package provider

import (
	"context"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"
)

// Ensure Fake implements application.QuoteFetcher.
var _ application.QuoteFetcher = (*Fake)(nil)

type Fake struct {
	amounts map[domain.PriceType]string
}

func NewFake(buy, sell, spot string) *Fake {
	return &Fake{amounts: map[domain.PriceType]string{
		domain.PriceTypeBuy:  buy,
		domain.PriceTypeSell: sell,
		domain.PriceTypeSpot: spot,
	}}
}

func (f *Fake) Fetch(_ context.Context, t domain.PriceType, currency string) (domain.Quote, error) {
	return domain.Quote{Type: t, Currency: currency, Amount: f.amounts[t]}, nil
}
