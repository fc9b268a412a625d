package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joripage/limitbook/pkg/orderbook"
)

const (
	numOrders = 1_000_000
	minTicks  = 10000 // 100.00 at tick scale 2
	maxTicks  = 20000
	minQty    = 1
	maxQty    = 100
)

func main() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	obm := orderbook.NewOrderBookManager()
	totalMatched := 0
	totalQty := int64(0)
	obm.RegisterTradeCallback(func(trades []orderbook.Trade) {
		for _, t := range trades {
			totalMatched++
			totalQty += t.Qty
			if totalMatched <= 5 {
				log.Printf("match: BUY[%d] <=> SELL[%d] @ %d qty %d",
					t.BuyOrderID, t.SellOrderID, t.Price, t.Qty)
			}
		}
	})

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		side := orderbook.BUY
		if rng.Intn(2) == 0 {
			side = orderbook.SELL
		}
		price := int64(minTicks + rng.Intn(maxTicks-minTicks+1))
		qty := int64(rng.Intn(maxQty-minQty+1) + minQty)
		if _, _, err := obm.AddOrder("ABC", side, price, qty); err != nil {
			log.Fatalf("add order %d: %v", i+1, err)
		}
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Matches    : %d\n", totalMatched)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Orders/sec       : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
