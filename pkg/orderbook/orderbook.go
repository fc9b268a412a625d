package orderbook

import (
	"fmt"
	"sync"
	"time"
)

// orderBook owns both price indexes and the id lookup for one symbol. All
// mutating calls serialize on mu; matching runs synchronously inside
// addOrder before any remainder rests, so price-time priority is decided in
// one total order. Read-only views take the read side of the same lock.
type orderBook struct {
	symbol string

	bids *priceIndex
	asks *priceIndex

	ordersByID map[int64]*Order
	lastID     int64

	callbacks []func([]Trade)

	mu sync.RWMutex
}

func newOrderBook(symbol string) *orderBook {
	return &orderBook{
		symbol:     symbol,
		bids:       newPriceIndex(func(a, b int64) bool { return a > b }), // highest bid first
		asks:       newPriceIndex(func(a, b int64) bool { return a < b }), // lowest ask first
		ordersByID: make(map[int64]*Order),
	}
}

func (ob *orderBook) registerTradeCallback(fn func([]Trade)) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.callbacks = append(ob.callbacks, fn)
}

// addOrder validates, assigns the next id, matches against the opposite
// side and rests any remainder. The id is returned whether the order
// matched fully, partially or not at all.
func (ob *orderBook) addOrder(side Side, price, qty int64) (int64, []Trade, error) {
	if price <= 0 || qty <= 0 {
		return 0, nil, ErrInvalidOrder
	}
	if side != BUY && side != SELL {
		return 0, nil, ErrInvalidOrder
	}

	ob.mu.Lock()

	ob.lastID++
	now := time.Now()
	order := &Order{
		ID:        ob.lastID,
		Symbol:    ob.symbol,
		Side:      side,
		Price:     price,
		Qty:       qty,
		EntryTime: now,
		EventTime: now,
	}

	trades := ob.match(order)
	if order.Qty > 0 {
		ob.rest(order)
	}

	ob.mu.Unlock()

	ob.fire(trades)
	return order.ID, trades, nil
}

// cancelOrder removes a resting order from both its level and the id map.
// A second cancel of the same id fails with ErrOrderNotFound, as does a
// cancel of an order already consumed by matching.
func (ob *orderBook) cancelOrder(id int64) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.ordersByID[id]
	if !ok {
		return ErrOrderNotFound
	}
	ob.removeResting(order)
	return nil
}

// modifyOrder changes price and/or quantity of a resting order. A pure
// quantity decrease keeps queue position; anything else is a cancel-and-
// replace that loses time priority and re-runs matching under the same id.
func (ob *orderBook) modifyOrder(id int64, newPrice, newQty int64) ([]Trade, error) {
	if newPrice <= 0 || newQty <= 0 {
		return nil, ErrInvalidOrder
	}

	ob.mu.Lock()

	order, ok := ob.ordersByID[id]
	if !ok {
		ob.mu.Unlock()
		return nil, ErrOrderNotFound
	}

	now := time.Now()
	if newPrice == order.Price && newQty <= order.Qty {
		if newQty < order.Qty {
			order.level.reduceOrder(order, order.Qty-newQty)
		}
		order.EventTime = now
		ob.mu.Unlock()
		return nil, nil
	}

	// re-entry: pull it out, rematch at the new terms, rest the remainder
	ob.detach(order)
	order.Price = newPrice
	order.Qty = newQty
	order.EntryTime = now
	order.EventTime = now

	trades := ob.match(order)
	if order.Qty > 0 {
		ob.rest(order)
	} else {
		delete(ob.ordersByID, order.ID)
	}

	ob.mu.Unlock()

	ob.fire(trades)
	return trades, nil
}

// match repeatedly fills the incoming order against the opposite side's
// best level, oldest resting order first, until nothing crosses. Trades
// always execute at the resting order's price.
func (ob *orderBook) match(taker *Order) []Trade {
	counter := ob.asks
	crosses := func(takerPrice, levelPrice int64) bool { return takerPrice >= levelPrice }
	if taker.Side == SELL {
		counter = ob.bids
		crosses = func(takerPrice, levelPrice int64) bool { return takerPrice <= levelPrice }
	}

	var trades []Trade
	for taker.Qty > 0 {
		level := counter.best()
		if level == nil || !crosses(taker.Price, level.price) {
			break
		}
		if level.empty() {
			panic(fmt.Sprintf("orderbook: empty level %d reachable from %s index", level.price, ob.symbol))
		}

		maker := level.front()
		fill := taker.Qty
		if maker.Qty < fill {
			fill = maker.Qty
		}

		now := time.Now()
		trade := Trade{
			Symbol:     ob.symbol,
			Price:      level.price,
			Qty:        fill,
			TakerSide:  taker.Side,
			ExecutedAt: now,
		}
		if taker.Side == BUY {
			trade.BuyOrderID, trade.SellOrderID = taker.ID, maker.ID
		} else {
			trade.BuyOrderID, trade.SellOrderID = maker.ID, taker.ID
		}
		trades = append(trades, trade)

		taker.Qty -= fill
		taker.EventTime = now
		makerID := maker.ID
		level.reduceFront(fill)
		if maker.Qty == 0 {
			delete(ob.ordersByID, makerID)
		} else {
			maker.EventTime = now
		}
		if level.empty() {
			counter.remove(level.price)
		}
	}
	return trades
}

func (ob *orderBook) rest(order *Order) {
	index := ob.bids
	if order.Side == SELL {
		index = ob.asks
	}
	index.upsert(order.Price).append(order)
	ob.ordersByID[order.ID] = order
}

// removeResting takes an order out of its level, its index (if the level
// empties) and the id map in one step.
func (ob *orderBook) removeResting(order *Order) {
	ob.detach(order)
	delete(ob.ordersByID, order.ID)
}

func (ob *orderBook) detach(order *Order) {
	level := order.level
	if level == nil {
		panic(fmt.Sprintf("orderbook: order %d in id map but not in any level", order.ID))
	}
	index := ob.bids
	if order.Side == SELL {
		index = ob.asks
	}
	if level.unlink(order) {
		index.remove(level.price)
	}
}

func (ob *orderBook) fire(trades []Trade) {
	if len(trades) == 0 {
		return
	}
	ob.mu.RLock()
	cbs := ob.callbacks
	ob.mu.RUnlock()
	for _, cb := range cbs {
		cb(trades)
	}
}

func (ob *orderBook) bestBid() (Quote, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return bestQuote(ob.bids)
}

func (ob *orderBook) bestAsk() (Quote, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return bestQuote(ob.asks)
}

func bestQuote(index *priceIndex) (Quote, bool) {
	level := index.best()
	if level == nil {
		return Quote{}, false
	}
	return Quote{Price: level.price, Volume: level.totalVolume}, true
}

// ordersAtPrice returns detached copies of every order resting at price,
// oldest first.
func (ob *orderBook) ordersAtPrice(side Side, price int64) []Order {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	index := ob.bids
	if side == SELL {
		index = ob.asks
	}
	level := index.level(price)
	if level == nil {
		return nil
	}

	out := make([]Order, 0, level.orderCount)
	for o := level.front(); o != nil; o = o.next {
		snap := *o
		snap.next, snap.prev, snap.level = nil, nil, nil
		out = append(out, snap)
	}
	return out
}

// depth aggregates resting volume per price on both sides, best-first.
func (ob *orderBook) depth() Depth {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	d := Depth{Symbol: ob.symbol}
	ob.bids.walk(func(l *priceLevel) bool {
		d.Bids = append(d.Bids, PriceVolume{Price: l.price, Volume: l.totalVolume})
		return true
	})
	ob.asks.walk(func(l *priceLevel) bool {
		d.Asks = append(d.Asks, PriceVolume{Price: l.price, Volume: l.totalVolume})
		return true
	})
	return d
}
