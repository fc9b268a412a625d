package orderbook

// Quote is the best price and aggregate volume of one side.
type Quote struct {
	Price  int64
	Volume int64
}

// PriceVolume is one rung of a depth snapshot.
type PriceVolume struct {
	Price  int64 `json:"price"`
	Volume int64 `json:"volume"`
}

// Depth is a point-in-time aggregate view of both sides, best-first. It
// carries no references into the book.
type Depth struct {
	Symbol string        `json:"symbol"`
	Bids   []PriceVolume `json:"bids"`
	Asks   []PriceVolume `json:"asks"`
}
