package marketdata

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/joripage/limitbook/pkg/orderbook"
)

// TradeTape keeps the last capacity trades in arrival order. Register it as
// a trade callback on the book manager.
type TradeTape struct {
	mu       sync.RWMutex
	trades   deque.Deque[orderbook.Trade]
	capacity int
}

func NewTradeTape(capacity int) *TradeTape {
	if capacity <= 0 {
		capacity = 1024
	}
	return &TradeTape{capacity: capacity}
}

func (t *TradeTape) Record(trades []orderbook.Trade) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, trade := range trades {
		if t.trades.Len() == t.capacity {
			t.trades.PopFront()
		}
		t.trades.PushBack(trade)
	}
}

// Recent returns the buffered trades oldest-first.
func (t *TradeTape) Recent() []orderbook.Trade {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]orderbook.Trade, 0, t.trades.Len())
	for i := 0; i < t.trades.Len(); i++ {
		out = append(out, t.trades.At(i))
	}
	return out
}

func (t *TradeTape) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trades.Len()
}
