package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/limitbook/config"
	postgres_wrapper "github.com/joripage/limitbook/pkg/infra/postgres"
	"github.com/joripage/limitbook/pkg/logging"
	"github.com/joripage/limitbook/pkg/oms/repo"
	"github.com/joripage/limitbook/pkg/oms/worker"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logger := logging.NewLogger(logging.INFO)
	defer logger.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if cfg.Nats == nil {
		zap.S().Fatal("nats config is required for the archive worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	db, err := postgres_wrapper.InitPostgres(cfg.OmsDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo)
	go func() {
		if err := w.StartConsumer(ctx, js, cfg.Nats.Subject, cfg.Nats.Durable); err != nil && err != context.Canceled {
			zap.S().Errorf("consumer stopped: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cancel()
}
