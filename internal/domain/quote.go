package domain

// Quote is a single amount for one price type as returned upstream.
// Amount is kept as the raw decimal string; parsing happens during aggregation.
type Quote struct {
	Type     PriceType
	Currency string
	Amount   string
}
