// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/leave-ledger/timeoff"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
	File   string `yaml:"file,omitempty"`
}

// LedgerSettings seeds the stored ledger configuration on first start.
type LedgerSettings struct {
	MonthlyAccrual     float64            `yaml:"monthlyAccrual" validate:"gte=0"`
	DefaultPolicyCode  string             `yaml:"defaultPolicyCode" validate:"required"`
	PolicyAccruals     map[string]float64 `yaml:"policyAccruals,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
	ExcludedCategories []string           `yaml:"excludedCategories"`
	FloorAtZero        bool               `yaml:"floorAtZero,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Server   ServerConfig       `yaml:"server"`
	Database DatabaseConfig     `yaml:"database"`
	Log      LogConfig          `yaml:"log"`
	Ledger   LedgerSettings     `yaml:"ledger"`
	Quotas   map[string]float64 `yaml:"quotas,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "ledger.db"},
		Log:      LogConfig{Level: "info", Format: "console"},
		Ledger: LedgerSettings{
			MonthlyAccrual:     1.5,
			DefaultPolicyCode:  timeoff.DefaultPolicyCode,
			ExcludedCategories: []string{timeoff.CategoryWorkFromHome},
		},
	}
}

// Load reads path (or uses defaults when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets deployments move the database and port without a file.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("LEDGER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LEDGER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LedgerConfig converts the seed settings into the ledger's own type.
func (c *Config) LedgerConfig() timeoff.LedgerConfig {
	lc := timeoff.LedgerConfig{
		MonthlyAccrual:     decimal.NewFromFloat(c.Ledger.MonthlyAccrual),
		DefaultPolicyCode:  c.Ledger.DefaultPolicyCode,
		ExcludedCategories: append([]string(nil), c.Ledger.ExcludedCategories...),
		FloorAtZero:        c.Ledger.FloorAtZero,
	}
	if len(c.Ledger.PolicyAccruals) > 0 {
		lc.PolicyAccruals = make(map[string]decimal.Decimal, len(c.Ledger.PolicyAccruals))
		for code, v := range c.Ledger.PolicyAccruals {
			lc.PolicyAccruals[code] = decimal.NewFromFloat(v)
		}
	}
	return lc
}

// QuotaCatalog builds the initial leave-type catalog.
func (c *Config) QuotaCatalog() (timeoff.QuotaCatalog, error) {
	entries := make(map[string]decimal.Decimal, len(c.Quotas))
	for name, days := range c.Quotas {
		entries[name] = decimal.NewFromFloat(days)
	}
	return timeoff.NewQuotaCatalog(entries)
}
