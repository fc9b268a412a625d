package orderbook

import "time"

// Trade is one fill between an incoming order and a resting order. Price is
// always the resting order's price.
type Trade struct {
	Symbol      string
	BuyOrderID  int64
	SellOrderID int64
	Price       int64
	Qty         int64
	TakerSide   Side
	ExecutedAt  time.Time
}
