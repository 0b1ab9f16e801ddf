package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/BrunoViet/swapdesk/internal/logger"
	"github.com/BrunoViet/swapdesk/internal/prices"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/spf13/viper"
)

const EnvPrefix = "SWAPDESK"

type Config struct {
	Server string       `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Prices PricesConfig `mapstructure:"prices"`
	Assets AssetsConfig `mapstructure:"assets"`
	Ledger LedgerConfig `mapstructure:"ledger"`
	Serve  ServeConfig  `mapstructure:"serve"`
	Web    WebConfig    `mapstructure:"web"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

type PricesConfig struct {
	PrimaryURL   string        `mapstructure:"primary_url"`
	SecondaryURL string        `mapstructure:"secondary_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type AssetsConfig struct {
	Symbols            []string `mapstructure:"symbols"`
	IconBaseURL        string   `mapstructure:"icon_base_url"`
	DefaultSource      string   `mapstructure:"default_source"`
	DefaultDestination string   `mapstructure:"default_destination"`
}

type LedgerConfig struct {
	Seed map[string]float64 `mapstructure:"seed"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SetDefaults registers every key so environment overrides reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"server":                     "http://localhost:8888",
		"log.level":                  "info",
		"log.file":                   "",
		"log.json":                   false,
		"prices.primary_url":         prices.DefaultBulkEndpoint,
		"prices.secondary_url":       prices.DefaultQuoteEndpoint,
		"prices.timeout":             10 * time.Second,
		"assets.symbols":             asset.DefaultSymbols(),
		"assets.icon_base_url":       asset.DefaultIconBaseURL,
		"assets.default_source":      "BTC",
		"assets.default_destination": "USDT",
		"serve.addr":                 ":8888",
		"web.host":                   "localhost",
		"web.port":                   8080,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads the optional config file and SWAPDESK_* environment into a
// validated Config. Flags must already be bound to v.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"prices.primary_url":   c.Prices.PrimaryURL,
		"prices.secondary_url": c.Prices.SecondaryURL,
		"server":               c.Server,
	} {
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Prices.Timeout <= 0 {
		return errors.New("prices.timeout must be positive")
	}
	if len(c.Assets.Symbols) == 0 {
		return errors.New("assets.symbols is empty")
	}
	for sym, qty := range c.Ledger.Seed {
		if qty < 0 {
			return fmt.Errorf("ledger.seed.%s: negative balance", sym)
		}
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	return nil
}

// SeedBalances returns the configured starting balances, or the built-in
// seed when none are configured. Keys are uppercased since viper lowercases them.
func (c *Config) SeedBalances() map[string]float64 {
	if len(c.Ledger.Seed) == 0 {
		return ledger.DefaultSeed()
	}
	out := make(map[string]float64, len(c.Ledger.Seed))
	for sym, qty := range c.Ledger.Seed {
		out[strings.ToUpper(sym)] = qty
	}
	return out
}

func (c *Config) SwapConfig() swap.Config {
	return swap.Config{
		Symbols:            c.Assets.Symbols,
		IconBaseURL:        c.Assets.IconBaseURL,
		DefaultSource:      strings.ToUpper(c.Assets.DefaultSource),
		DefaultDestination: strings.ToUpper(c.Assets.DefaultDestination),
	}
}

// LogOptions maps the log section; console selects whether stdout is a sink.
func (c *Config) LogOptions(console bool) logger.Options {
	return logger.Options{
		Level:   c.Log.Level,
		File:    c.Log.File,
		JSON:    c.Log.JSON,
		Console: console,
		Stderr:  true,
	}
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
