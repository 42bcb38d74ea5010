// Package config loads the application configuration: a YAML file, then
// .env and SOLO_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SOLO_SERVER_URL.
const EnvPrefix = "SOLO"

type Config struct {
	Server struct {
		URL            string        `yaml:"url" envconfig:"URL"`
		Transport      string        `yaml:"transport" envconfig:"TRANSPORT"` // http or ws
		RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	} `yaml:"server"`

	// NewGame holds the settings used when a new game is created.
	NewGame struct {
		TicksPerDay  int             `yaml:"ticks_per_day" envconfig:"TICKS_PER_DAY"`
		TradingDays  int             `yaml:"trading_days" envconfig:"TRADING_DAYS"`
		TickPeriod   time.Duration   `yaml:"tick_period" envconfig:"TICK_PERIOD"`
		Volatility   decimal.Decimal `yaml:"volatility" envconfig:"VOLATILITY"`
		Seed         string          `yaml:"seed" envconfig:"SEED"`
		StartingCash decimal.Decimal `yaml:"starting_cash" envconfig:"STARTING_CASH"`
	} `yaml:"new_game" envconfig:"NEW_GAME"`

	Engine struct {
		MinimumDelay   time.Duration `yaml:"minimum_delay" envconfig:"MINIMUM_DELAY"`
		PriceRetries   int           `yaml:"price_retries" envconfig:"PRICE_RETRIES"`
		RetryBase      time.Duration `yaml:"retry_base" envconfig:"RETRY_BASE"`
		RetryMax       time.Duration `yaml:"retry_max" envconfig:"RETRY_MAX"`
		MaxDigits      int           `yaml:"max_digits" envconfig:"MAX_DIGITS"`
		OrderHistory   int           `yaml:"order_history" envconfig:"ORDER_HISTORY"`
		SnapshotBuffer int           `yaml:"snapshot_buffer" envconfig:"SNAPSHOT_BUFFER"`
	} `yaml:"engine"`

	Storage struct {
		Path string `yaml:"path" envconfig:"PATH"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level" envconfig:"LEVEL"`
		File  string `yaml:"file" envconfig:"FILE"`
	} `yaml:"logging"`

	Mock struct {
		Addr              string `yaml:"addr" envconfig:"ADDR"`
		FulfillOnNextTick bool   `yaml:"fulfill_on_next_tick" envconfig:"FULFILL_ON_NEXT_TICK"`
	} `yaml:"mock"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	c.Server.URL = "http://127.0.0.1:8080"
	c.Server.Transport = "http"
	c.Server.RequestTimeout = 10 * time.Second

	c.NewGame.TicksPerDay = 20
	c.NewGame.TradingDays = 5
	c.NewGame.TickPeriod = 1500 * time.Millisecond
	c.NewGame.Volatility = decimal.NewFromInt(1)
	c.NewGame.StartingCash = decimal.NewFromInt(10000)

	c.Engine.MinimumDelay = 25 * time.Millisecond
	c.Engine.PriceRetries = 2
	c.Engine.RetryBase = 100 * time.Millisecond
	c.Engine.RetryMax = time.Second
	c.Engine.MaxDigits = 9
	c.Engine.OrderHistory = 1000
	c.Engine.SnapshotBuffer = 16

	c.Logging.Level = "info"
	c.Logging.File = "logs/solo.log"

	c.Mock.Addr = ":8080"
	return &c
}

// Load reads the YAML file at path (skipped when path is empty), applies .env
// and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	var errs []error

	switch c.Server.Transport {
	case "http":
		if !hasPrefix(c.Server.URL, "http://", "https://") {
			errs = append(errs, fmt.Errorf("server url %q must be http(s) for the http transport", c.Server.URL))
		}
	case "ws":
		if !hasPrefix(c.Server.URL, "ws://", "wss://") {
			errs = append(errs, fmt.Errorf("server url %q must be ws(s) for the ws transport", c.Server.URL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Server.Transport))
	}

	if c.NewGame.TicksPerDay <= 0 || c.NewGame.TradingDays <= 0 {
		errs = append(errs, errors.New("new_game ticks_per_day and trading_days must be positive"))
	}
	if c.NewGame.TickPeriod <= 0 {
		errs = append(errs, errors.New("new_game tick_period must be positive"))
	}
	if c.Engine.MinimumDelay < 0 || c.Engine.PriceRetries < 0 {
		errs = append(errs, errors.New("engine minimum_delay and price_retries must not be negative"))
	}
	if c.Engine.MaxDigits < 1 || c.Engine.MaxDigits > 18 {
		errs = append(errs, fmt.Errorf("engine max_digits must be within 1..18, got %d", c.Engine.MaxDigits))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

func hasPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
