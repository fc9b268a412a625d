package main

import (
	"flag"

	"github.com/joripage/limitbook/config"
	"github.com/joripage/limitbook/pkg/infra"
	"github.com/joripage/limitbook/pkg/logging"
	"go.uber.org/zap"
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
	if cfg.OmsDB == nil {
		zap.S().Fatal("oms_db config is required")
	}

	infra.Migrate("file://migration/sql", cfg.OmsDB.MigrationConnURL)
}
