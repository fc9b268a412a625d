package orderbook

import (
	"math/rand"
	"reflect"
	"testing"
)

// checkVolumeConservation walks every level on both sides and verifies
// totalVolume against the sum of member order quantities.
func checkVolumeConservation(t *testing.T, ob *orderBook) {
	t.Helper()
	for _, idx := range []*priceIndex{ob.bids, ob.asks} {
		idx.walk(func(l *priceLevel) bool {
			var sum int64
			count := 0
			for o := l.front(); o != nil; o = o.next {
				if o.Qty <= 0 {
					t.Fatalf("level %d holds order %d with qty %d", l.price, o.ID, o.Qty)
				}
				sum += o.Qty
				count++
			}
			if sum != l.totalVolume || count != l.orderCount {
				t.Fatalf("level %d: totalVolume=%d sum=%d count=%d orderCount=%d",
					l.price, l.totalVolume, sum, count, l.orderCount)
			}
			if count == 0 {
				t.Fatalf("empty level %d still indexed", l.price)
			}
			return true
		})
	}
}

func TestVolumeConservationUnderRandomFlow(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ob := newOrderBook("test")

	var live []int64
	for i := 0; i < 5_000; i++ {
		switch rng.Intn(4) {
		case 0, 1, 2:
			side := BUY
			if rng.Intn(2) == 0 {
				side = SELL
			}
			price := int64(90 + rng.Intn(21))
			qty := int64(1 + rng.Intn(50))
			id, _, err := ob.addOrder(side, price, qty)
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			live = append(live, id)
		case 3:
			if len(live) == 0 {
				continue
			}
			j := rng.Intn(len(live))
			// stale ids are expected; only NotFound is acceptable as failure
			if err := ob.cancelOrder(live[j]); err != nil && err != ErrOrderNotFound {
				t.Fatalf("cancel: %v", err)
			}
			live = append(live[:j], live[j+1:]...)
		}

		if i%500 == 0 {
			checkVolumeConservation(t, ob)
		}
	}
	checkVolumeConservation(t, ob)
}

func TestNoSelfCross(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ob := newOrderBook("test")

	for i := 0; i < 5_000; i++ {
		side := BUY
		if rng.Intn(2) == 0 {
			side = SELL
		}
		ob.addOrder(side, int64(95+rng.Intn(11)), int64(1+rng.Intn(20)))

		bid, okBid := ob.bestBid()
		ask, okAsk := ob.bestAsk()
		if okBid && okAsk && bid.Price >= ask.Price {
			t.Fatalf("book crossed at step %d: bid %d >= ask %d", i, bid.Price, ask.Price)
		}
	}
}

func TestBestPriceIsExtreme(t *testing.T) {
	ob := newOrderBook("test")

	prices := []int64{101, 99, 100, 103, 97}
	for _, p := range prices {
		ob.addOrder(BUY, p, 1)
		ob.addOrder(SELL, p+100, 1)
	}

	bid, _ := ob.bestBid()
	if bid.Price != 103 {
		t.Errorf("bestBid = %d, want max 103", bid.Price)
	}
	ask, _ := ob.bestAsk()
	if ask.Price != 197 {
		t.Errorf("bestAsk = %d, want min 197", ask.Price)
	}
}

func TestDepthSnapshotIdempotent(t *testing.T) {
	ob := newOrderBook("test")

	ob.addOrder(BUY, 100, 10)
	ob.addOrder(BUY, 99, 5)
	ob.addOrder(SELL, 102, 7)
	ob.addOrder(SELL, 103, 3)

	d1 := ob.depth()
	d2 := ob.depth()
	if !reflect.DeepEqual(d1, d2) {
		t.Fatalf("back-to-back snapshots differ:\n%+v\n%+v", d1, d2)
	}

	wantBids := []PriceVolume{{Price: 100, Volume: 10}, {Price: 99, Volume: 5}}
	wantAsks := []PriceVolume{{Price: 102, Volume: 7}, {Price: 103, Volume: 3}}
	if !reflect.DeepEqual(d1.Bids, wantBids) || !reflect.DeepEqual(d1.Asks, wantAsks) {
		t.Fatalf("depth = %+v, want bids %v asks %v", d1, wantBids, wantAsks)
	}

	// mutating the snapshot must not touch the book
	d1.Bids[0].Volume = 0
	bid, _ := ob.bestBid()
	if bid.Volume != 10 {
		t.Fatal("snapshot aliases book internals")
	}
}

// Two buys queue at one price, a smaller sell eats into the oldest only.
func TestRestingQueueThenPartialSell(t *testing.T) {
	ob := newOrderBook("test")

	first, _, _ := ob.addOrder(BUY, 100, 10)
	second, _, _ := ob.addOrder(BUY, 100, 5)

	rest := ob.ordersAtPrice(BUY, 100)
	if len(rest) != 2 || rest[0].ID != first || rest[0].Qty != 10 || rest[1].ID != second || rest[1].Qty != 5 {
		t.Fatalf("queue = %+v, want [10@100 first, 5@100 second]", rest)
	}
	bid, _ := ob.bestBid()
	if bid.Price != 100 || bid.Volume != 15 {
		t.Fatalf("bestBid = %+v, want 100x15", bid)
	}

	sellID, trades, _ := ob.addOrder(SELL, 100, 8)
	if len(trades) != 1 || trades[0].Qty != 8 || trades[0].Price != 100 || trades[0].BuyOrderID != first {
		t.Fatalf("trades = %+v, want single 8@100 against first buy", trades)
	}

	rest = ob.ordersAtPrice(BUY, 100)
	if rest[0].Qty != 2 || rest[1].Qty != 5 {
		t.Fatalf("after partial fill queue = %+v, want [2@100, 5@100]", rest)
	}
	if err := ob.cancelOrder(sellID); err != ErrOrderNotFound {
		t.Fatalf("fully filled taker never rests; cancel = %v", err)
	}
}

func TestOrdersAtPriceSnapshotsDetached(t *testing.T) {
	ob := newOrderBook("test")
	ob.addOrder(BUY, 100, 10)

	rest := ob.ordersAtPrice(BUY, 100)
	rest[0].Qty = 999

	bid, _ := ob.bestBid()
	if bid.Volume != 10 {
		t.Fatal("ordersAtPrice must return copies")
	}
	if rest2 := ob.ordersAtPrice(BUY, 100); rest2[0].Qty != 10 {
		t.Fatal("book state mutated through snapshot")
	}
}
