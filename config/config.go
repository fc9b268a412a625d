package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/joripage/limitbook/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/limitbook/pkg/infra/redis"
)

type SymbolConfig struct {
	Symbol    string `yaml:"symbol"`
	TickScale int32  `yaml:"tick_scale"`
}

type NatsConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
	Durable string `yaml:"durable"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type AppConfig struct {
	ServiceName      string                           `yaml:"service_name"`
	Symbols          []SymbolConfig                   `yaml:"symbols"`
	DefaultTickScale int32                            `yaml:"default_tick_scale"`
	DepthPublishMS   int                              `yaml:"depth_publish_ms"`
	OmsDB            *postgres_wrapper.PostgresConfig `yaml:"oms_db"`
	Redis            *redis_wrapper.RedisConfig       `yaml:"redis"`
	Nats             *NatsConfig                      `yaml:"nats"`
	Kafka            *KafkaConfig                     `yaml:"kafka"`
}

// TickScales returns the per-symbol tick scale map for the OMS.
func (c *AppConfig) TickScales() map[string]int32 {
	out := make(map[string]int32, len(c.Symbols))
	for _, s := range c.Symbols {
		out[s.Symbol] = s.TickScale
	}
	return out
}

func (c *AppConfig) SymbolNames() []string {
	out := make([]string, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		out = append(out, s.Symbol)
	}
	return out
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
