// Package config loads the application configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	} `yaml:"log"`
	Market struct {
		BaseURL    string        `yaml:"base_url" default:"https://api.binance.com/api/v3" validate:"url"`
		Interval   string        `yaml:"interval" default:"5m" validate:"required"`
		Limit      int           `yaml:"limit" default:"100" validate:"min=30,max=1000"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
		MaxRetries int           `yaml:"max_retries" default:"3" validate:"min=0"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"1s"`
	} `yaml:"market"`
	Poll struct {
		Interval  time.Duration `yaml:"interval" default:"7m" validate:"min=1s"`
		Cooldown  time.Duration `yaml:"cooldown" default:"1m"`
		MinSeries int           `yaml:"min_series" default:"30" validate:"min=2"`
	} `yaml:"poll"`
	Indicators struct {
		RSIPeriod      int `yaml:"rsi_period" default:"14" validate:"min=2"`
		MACDShort      int `yaml:"macd_short" default:"12" validate:"min=2"`
		MACDLong       int `yaml:"macd_long" default:"26" validate:"min=2,gtfield=MACDShort"`
		MACDSignal     int `yaml:"macd_signal" default:"9" validate:"min=2"`
		MomentumPeriod int `yaml:"momentum_period" default:"10" validate:"min=1"`
	} `yaml:"indicators"`
	Database struct {
		Path string `yaml:"path" default:"data/sentinel.db" validate:"required"`
	} `yaml:"database"`
	Defaults struct {
		Symbols []string `yaml:"symbols" default:"[\"btc\",\"eth\"]" validate:"min=1"`
	} `yaml:"defaults"`
	Notify struct {
		WebhookURL string `yaml:"webhook_url" validate:"omitempty,url"`
	} `yaml:"notify"`
	Ops struct {
		Addr string `yaml:"addr" default:":8080"`
	} `yaml:"ops"`
	RunOnStart bool `yaml:"run_on_start"`
}

// Load reads config from a YAML file, fills defaults, applies environment
// variable overrides and validates the result. A missing file is fine; the
// defaults describe a working setup.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DEFAULT_SYMBOLS"); v != "" {
		cfg.Defaults.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("OPS_ADDR"); v != "" {
		cfg.Ops.Addr = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse POLL_INTERVAL: %w", err)
		}
		cfg.Poll.Interval = d
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.RunOnStart = v == "1" || strings.EqualFold(v, "true")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
