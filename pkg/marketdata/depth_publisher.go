package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joripage/limitbook/pkg/orderbook"
)

// DepthPublisher snapshots each symbol's depth on an interval and writes it
// to Redis as JSON, one key per symbol. Snapshots are taken under the
// book's read lock so a level is never observed mid-mutation.
type DepthPublisher struct {
	rdb      *redis.Client
	books    *orderbook.OrderBookManager
	symbols  []string
	interval time.Duration
}

func NewDepthPublisher(rdb *redis.Client, books *orderbook.OrderBookManager, symbols []string, interval time.Duration) *DepthPublisher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &DepthPublisher{
		rdb:      rdb,
		books:    books,
		symbols:  symbols,
		interval: interval,
	}
}

func (p *DepthPublisher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *DepthPublisher) publishAll(ctx context.Context) {
	for _, symbol := range p.symbols {
		depth := p.books.Depth(symbol)
		data, err := json.Marshal(depth)
		if err != nil {
			zap.S().Errorf("marshal depth %s: %v", symbol, err)
			continue
		}
		if err := p.rdb.Set(ctx, depthKey(symbol), data, 0).Err(); err != nil {
			zap.S().Warnf("publish depth %s: %v", symbol, err)
		}
	}
}

func depthKey(symbol string) string {
	return fmt.Sprintf("depth:%s", symbol)
}
