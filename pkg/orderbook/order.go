package orderbook

import "time"

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Order is a resting limit order. Price and Qty are integer ticks/lots so
// that price comparison never goes through floating point.
type Order struct {
	ID        int64
	Symbol    string
	Side      Side
	Price     int64
	Qty       int64 // remaining, decreases toward zero on fills
	EntryTime time.Time
	EventTime time.Time

	// intra-level FIFO links; the priceLevel owns membership, the
	// back-reference exists only for O(1) removal on cancel
	next  *Order
	prev  *Order
	level *priceLevel
}
