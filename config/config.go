package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Enrichment batch-processing configuration
	Enrichment struct {
		// Maximum number of properties per enrichment batch
		MaxBatchSize int `env:"ENRICH_MAX_BATCH_SIZE" envDefault:"100"`

		// Number of concurrent enrichment workers
		WorkerCount int `env:"ENRICH_WORKER_COUNT" envDefault:"4"`

		// Buffered batches the queue holds before Push reports full
		QueueSize int `env:"ENRICH_QUEUE_SIZE" envDefault:"32"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"ENRICH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"ENRICH_RETRY_DELAY" envDefault:"5"`
	}

	// Telegram alerting for high-distress, underpriced listings
	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ALERTS_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
