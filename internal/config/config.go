package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN string
}

type LoggingConfig struct {
	Level string
}

type SchedulerConfig struct {
	SweepInterval time.Duration
}

type NotifyConfig struct {
	WebhookURL string
}

type PayoutConfig struct {
	MinDaysSinceFunding   int
	MinDaysBetweenPayouts int
	ProfitSplitPercent    decimal.Decimal
	MinProfit             decimal.Decimal
}

type AppConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
	Payout    PayoutConfig
}

func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("DATABASE_DSN", "data/propfirm.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SWEEP_INTERVAL", "5m")
	viper.SetDefault("NOTIFY_WEBHOOK_URL", "")
	viper.SetDefault("PAYOUT_MIN_DAYS_FUNDED", 30)
	viper.SetDefault("PAYOUT_MIN_DAYS_BETWEEN", 14)
	viper.SetDefault("PAYOUT_PROFIT_SPLIT_PERCENT", "80")
	viper.SetDefault("PAYOUT_MIN_PROFIT", "0")

	interval, err := time.ParseDuration(viper.GetString("SWEEP_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	splitPercent, err := decimal.NewFromString(viper.GetString("PAYOUT_PROFIT_SPLIT_PERCENT"))
	if err != nil {
		return nil, fmt.Errorf("invalid profit split percent: %w", err)
	}

	minProfit, err := decimal.NewFromString(viper.GetString("PAYOUT_MIN_PROFIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid payout minimum profit: %w", err)
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			DSN: viper.GetString("DATABASE_DSN"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Scheduler: SchedulerConfig{
			SweepInterval: interval,
		},
		Notify: NotifyConfig{
			WebhookURL: viper.GetString("NOTIFY_WEBHOOK_URL"),
		},
		Payout: PayoutConfig{
			MinDaysSinceFunding:   viper.GetInt("PAYOUT_MIN_DAYS_FUNDED"),
			MinDaysBetweenPayouts: viper.GetInt("PAYOUT_MIN_DAYS_BETWEEN"),
			ProfitSplitPercent:    splitPercent,
			MinProfit:             minProfit,
		},
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required")
	}

	return cfg, nil
}
