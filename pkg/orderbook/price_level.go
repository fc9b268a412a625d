package orderbook

import "fmt"

// priceLevel holds every resting order at one exact price in arrival order.
// Orders enter at the tail; matching consumes from the head.
type priceLevel struct {
	price       int64
	totalVolume int64
	orderCount  int
	head        *Order
	tail        *Order
}

func (l *priceLevel) empty() bool {
	return l.head == nil
}

func (l *priceLevel) front() *Order {
	return l.head
}

func (l *priceLevel) append(o *Order) {
	if l.tail == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	o.level = l
	l.totalVolume += o.Qty
	l.orderCount++
}

// unlink detaches an order from anywhere in the sequence. Reports whether
// the level is now empty so the caller can drop it from its index.
func (l *priceLevel) unlink(o *Order) bool {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	o.level = nil
	l.totalVolume -= o.Qty
	l.orderCount--
	if l.totalVolume < 0 || l.orderCount < 0 {
		panic(fmt.Sprintf("orderbook: level %d volume went negative (volume=%d count=%d)",
			l.price, l.totalVolume, l.orderCount))
	}
	return l.head == nil
}

// reduceFront takes qty off the head order during a partial fill and
// removes the head entirely when it reaches zero.
func (l *priceLevel) reduceFront(qty int64) {
	o := l.head
	if o == nil {
		panic(fmt.Sprintf("orderbook: reduceFront on empty level %d", l.price))
	}
	if qty > o.Qty {
		panic(fmt.Sprintf("orderbook: fill %d exceeds head qty %d at level %d", qty, o.Qty, l.price))
	}
	o.Qty -= qty
	l.totalVolume -= qty
	if o.Qty == 0 {
		l.unlink(o)
	}
}

// reduceOrder shrinks a resting order in place, preserving its position in
// the queue. Used by in-place modify; delta must leave the order positive.
func (l *priceLevel) reduceOrder(o *Order, delta int64) {
	o.Qty -= delta
	l.totalVolume -= delta
	if o.Qty <= 0 || l.totalVolume < 0 {
		panic(fmt.Sprintf("orderbook: reduceOrder drove order %d non-positive at level %d", o.ID, l.price))
	}
}
