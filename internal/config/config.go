package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	RelayURLs         []string      `env:"RELAY_URLS,delimiter=;,default=wss://relay.mostro.network;wss://relay.damus.io;wss://nostr.satstralia.com"`
	RelayReadTimeout  time.Duration `env:"RELAY_READ_TIMEOUT,default=0s"`
	IngestQueueSize   int           `env:"INGEST_QUEUE_SIZE,default=1024"`
	PipelineWorkers   int           `env:"PIPELINE_WORKERS,default=1"`
	OrderRetention    time.Duration `env:"ORDER_RETENTION,default=24h"`
	FreeDailyCap      int           `env:"FREE_DAILY_CAP,default=10"`
	CounterTimezone   string        `env:"COUNTER_TIMEZONE,default=UTC"`
	CounterRetainDays int           `env:"COUNTER_RETAIN_DAYS,default=7"`
	MaintenanceCron   string        `env:"MAINTENANCE_CRON,default=0 */10 * * * *"`
	HealthListenAddr  string        `env:"HEALTH_LISTEN_ADDR,default=:8080"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
	LogFile  string `env:"LOG_FILE"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
