package marketdata

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/joripage/limitbook/pkg/orderbook"
)

type TradeFeedConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
}

// TradeFeed publishes trades to Kafka keyed by symbol, so a partition
// preserves per-symbol trade order. Writes are async fire-and-forget.
type TradeFeed struct {
	w     *kafka.Writer
	topic string
}

func NewTradeFeed(cfg TradeFeedConfig) *TradeFeed {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireNone,
		Async:                  true,
	}
	return &TradeFeed{w: w, topic: cfg.Topic}
}

func (f *TradeFeed) Publish(ctx context.Context, trades []orderbook.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(trades))
	for _, trade := range trades {
		value, err := json.Marshal(trade)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Topic: f.topic,
			Key:   []byte(trade.Symbol),
			Value: value,
			Time:  trade.ExecutedAt,
		})
	}
	return f.w.WriteMessages(ctx, msgs...)
}

func (f *TradeFeed) Close() error {
	if f == nil || f.w == nil {
		return nil
	}
	return f.w.Close()
}
