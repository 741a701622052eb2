package domain

import "fmt"

type PriceType int

const (
	PriceTypeBuy PriceType = iota
	PriceTypeSell
	PriceTypeSpot
)

// PriceTypes returns every price type in line-protocol field order.
func PriceTypes() []PriceType {
	return []PriceType{PriceTypeBuy, PriceTypeSell, PriceTypeSpot}
}

// String returns the lowercase word used both as the API path segment and the field name.
func (t PriceType) String() string {
	switch t {
	case PriceTypeBuy:
		return "buy"
	case PriceTypeSell:
		return "sell"
	case PriceTypeSpot:
		return "spot"
	default:
		return fmt.Sprintf("PriceType(%d)", int(t))
	}
}
