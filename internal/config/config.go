package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

const (
	NotifierSMTP    = "smtp"
	NotifierWebhook = "webhook"
)

type Config struct {
	AzureSubscriptionID string `env:"AZURE_SUBSCRIPTION_ID,required=true"`
	AzureResourceGroup  string `env:"AZURE_RESOURCE_GROUP,required=true"`
	NotifierKind        string `env:"NOTIFIER_KIND,default=smtp"`
	SMTPHost            string `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort            int    `env:"SMTP_PORT,default=587"`
	SMTPUsername        string `env:"SMTP_USERNAME"`
	SMTPPassword        string `env:"SMTP_PASSWORD"`
	NotifyAddress       string `env:"NOTIFY_ADDRESS"`
	WebhookNotifyURL    string `env:"WEBHOOK_NOTIFY_URL"`
	WorkerConcurrency   int    `env:"WORKER_CONCURRENCY,default=16"`
	OperationTimeoutRaw string `env:"OPERATION_TIMEOUT,default=30m"`
	APIPort             int    `env:"API_PORT,default=8080"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`

	OperationTimeout time.Duration `env:"-"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.OperationTimeout, err = time.ParseDuration(cfg.OperationTimeoutRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATION_TIMEOUT %q: %w", cfg.OperationTimeoutRaw, err)
	}
	if cfg.OperationTimeout <= 0 {
		return nil, fmt.Errorf("OPERATION_TIMEOUT must be positive, got %q", cfg.OperationTimeoutRaw)
	}

	switch cfg.NotifierKind {
	case NotifierSMTP:
		if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
			return nil, fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD are required when NOTIFIER_KIND=smtp")
		}
	case NotifierWebhook:
		if cfg.WebhookNotifyURL == "" {
			return nil, fmt.Errorf("WEBHOOK_NOTIFY_URL is required when NOTIFIER_KIND=webhook")
		}
	default:
		return nil, fmt.Errorf("invalid NOTIFIER_KIND %q: must be smtp or webhook", cfg.NotifierKind)
	}

	return &cfg, nil
}
