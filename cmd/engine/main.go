package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/limitbook/config"
	redis_wrapper "github.com/joripage/limitbook/pkg/infra/redis"
	"github.com/joripage/limitbook/pkg/logging"
	"github.com/joripage/limitbook/pkg/marketdata"
	"github.com/joripage/limitbook/pkg/oms"
	eventstore "github.com/joripage/limitbook/pkg/oms/event_store"
	"github.com/joripage/limitbook/pkg/oms/model"
	"github.com/joripage/limitbook/pkg/orderbook"
)

// logGateway is a stand-in transport: it just logs execution reports. Real
// deployments plug their own OrderGateway in front of the OMS.
type logGateway struct{}

func (g *logGateway) Start(ctx context.Context) error { return nil }

func (g *logGateway) OnOrderReport(_ context.Context, order model.Order) {
	zap.S().Debugw("order report",
		"order_id", order.OrderID,
		"gateway_id", order.GatewayID,
		"symbol", order.Symbol,
		"status", order.Status,
		"exec_type", order.ExecType,
		"leaves", order.LeavesQuantity,
	)
}

func main() {
	var configFile string
	var simulate int
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.IntVar(&simulate, "simulate", 0, "Feed n random orders through the engine and exit")
	flag.Parse()

	logger := logging.NewLogger(logging.INFO)
	defer logger.Sync()

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	var store eventstore.EventStore = eventstore.NewInMemoryEventStore()
	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			zap.S().Fatalf("connect nats: %v", err)
		}
		defer nc.Close()
		js, err := nc.JetStream()
		if err != nil {
			zap.S().Fatalf("jetstream: %v", err)
		}
		_, _ = js.AddStream(&nats.StreamConfig{
			Name:     cfg.Nats.Stream,
			Subjects: []string{cfg.Nats.Stream + ".*"},
		})
		store = eventstore.NewJetStreamEventStore(store, js, cfg.Nats.Subject)
	}

	engine := oms.NewOMS(&logGateway{}, store, &oms.Config{
		TickScales:       cfg.TickScales(),
		DefaultTickScale: cfg.DefaultTickScale,
	})
	books := engine.Books()

	tape := marketdata.NewTradeTape(4096)
	books.RegisterTradeCallback(tape.Record)

	if cfg.Kafka != nil {
		feed := marketdata.NewTradeFeed(marketdata.TradeFeedConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer feed.Close()
		books.RegisterTradeCallback(func(trades []orderbook.Trade) {
			if err := feed.Publish(ctx, trades); err != nil {
				zap.S().Warnf("publish trades: %v", err)
			}
		})
	}

	if cfg.Redis != nil {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalf("init redis: %v", err)
		}
		publisher := marketdata.NewDepthPublisher(rdb, books, cfg.SymbolNames(),
			time.Duration(cfg.DepthPublishMS)*time.Millisecond)
		go publisher.Start(ctx)
	}

	if err := engine.Start(ctx); err != nil {
		zap.S().Fatalf("start engine: %v", err)
	}
	fmt.Println("Engine started. Press Ctrl+C to exit.")

	if simulate > 0 {
		go feedRandomOrders(ctx, engine, cfg, simulate)
	}

	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	engine.Stop()

	fmt.Println("Exited cleanly.")
}

func feedRandomOrders(ctx context.Context, engine *oms.OMS, cfg *config.AppConfig, n int) {
	symbols := cfg.SymbolNames()
	if len(symbols) == 0 {
		symbols = []string{"ABC"}
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		side := model.OrderSideBuy
		if rng.Intn(2) == 0 {
			side = model.OrderSideSell
		}
		add := &model.AddOrder{
			GatewayID:    fmt.Sprintf("SIM-%d", i+1),
			Account:      "sim",
			Symbol:       symbols[rng.Intn(len(symbols))],
			Side:         side,
			Price:        decimal.NewFromInt(int64(100 + rng.Intn(20))),
			Quantity:     decimal.NewFromInt(int64(1 + rng.Intn(100))),
			TransactTime: time.Now(),
		}
		if err := engine.AddOrder(ctx, add); err != nil {
			zap.S().Warnf("simulated add %s: %v", add.GatewayID, err)
		}
	}
	zap.S().Infof("simulation done: %d orders", n)
}
