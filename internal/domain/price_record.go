package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	SourceCoinbase = "Coinbase"
	AssetBTC       = "BTC"
)

// PriceRecord holds the buy, sell and spot amounts of one tick.
type PriceRecord struct {
	Source    string
	Asset     string
	Currency  string
	Buy       float32
	Sell      float32
	Spot      float32
	Timestamp time.Time
}

// LineProtocol renders the record as one measurement line with seconds precision.
// Tag values are written as-is.
func (r PriceRecord) LineProtocol() string {
	var b strings.Builder
	b.WriteString(r.Asset)
	b.WriteString(",source=")
	b.WriteString(r.Source)
	b.WriteString(",currency=")
	b.WriteString(r.Currency)
	b.WriteString(" buy=")
	b.WriteString(formatAmount(r.Buy))
	b.WriteString(",sell=")
	b.WriteString(formatAmount(r.Sell))
	b.WriteString(",spot=")
	b.WriteString(formatAmount(r.Spot))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(r.Timestamp.Unix(), 10))
	return b.String()
}

func (r PriceRecord) String() string { return r.LineProtocol() }

// Amount returns the field value for t.
func (r PriceRecord) Amount(t PriceType) float32 {
	switch t {
	case PriceTypeBuy:
		return r.Buy
	case PriceTypeSell:
		return r.Sell
	default:
		return r.Spot
	}
}

func formatAmount(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
