package orderbook

import "sync"

// OrderBookManager holds one independent orderBook per symbol. Books share
// nothing; a symbol's book is created lazily on first use.
type OrderBookManager struct {
	books     sync.Map
	callbacks []func([]Trade)
	mu        sync.Mutex
}

func NewOrderBookManager() *OrderBookManager {
	return &OrderBookManager{}
}

// AddOrder places a limit order and returns its book-assigned id along with
// any trades produced by synchronous matching.
func (m *OrderBookManager) AddOrder(symbol string, side Side, price, qty int64) (int64, []Trade, error) {
	return m.getOrCreateBook(symbol).addOrder(side, price, qty)
}

func (m *OrderBookManager) CancelOrder(symbol string, orderID int64) error {
	return m.getOrCreateBook(symbol).cancelOrder(orderID)
}

func (m *OrderBookManager) ModifyOrder(symbol string, orderID int64, newPrice, newQty int64) ([]Trade, error) {
	return m.getOrCreateBook(symbol).modifyOrder(orderID, newPrice, newQty)
}

func (m *OrderBookManager) BestBid(symbol string) (Quote, bool) {
	return m.getOrCreateBook(symbol).bestBid()
}

func (m *OrderBookManager) BestAsk(symbol string) (Quote, bool) {
	return m.getOrCreateBook(symbol).bestAsk()
}

func (m *OrderBookManager) OrdersAtPrice(symbol string, side Side, price int64) []Order {
	return m.getOrCreateBook(symbol).ordersAtPrice(side, price)
}

func (m *OrderBookManager) Depth(symbol string) Depth {
	return m.getOrCreateBook(symbol).depth()
}

// RegisterTradeCallback attaches cb to every existing and future book.
func (m *OrderBookManager) RegisterTradeCallback(cb func([]Trade)) {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, cb)
	m.mu.Unlock()

	m.books.Range(func(_, v any) bool {
		v.(*orderBook).registerTradeCallback(cb)
		return true
	})
}

func (m *OrderBookManager) getOrCreateBook(symbol string) *orderBook {
	if val, ok := m.books.Load(symbol); ok {
		return val.(*orderBook)
	}

	book := newOrderBook(symbol)
	actual, loaded := m.books.LoadOrStore(symbol, book)
	if loaded {
		return actual.(*orderBook)
	}

	m.mu.Lock()
	for _, cb := range m.callbacks {
		book.registerTradeCallback(cb)
	}
	m.mu.Unlock()
	return book
}
