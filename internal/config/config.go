package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
	RiskEndpointURL string   `mapstructure:"RISK_ENDPOINT_URL"`
	StartDate       string   `mapstructure:"START_DATE"`
	RandomSeed      int64    `mapstructure:"RANDOM_SEED"`
	SeedDemoData    bool     `mapstructure:"SEED_DEMO_DATA"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("START_DATE", "")
	v.SetDefault("RANDOM_SEED", 0)
	v.SetDefault("SEED_DEMO_DATA", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("RISK_ENDPOINT_URL")
	v.BindEnv("START_DATE")
	v.BindEnv("RANDOM_SEED")
	v.BindEnv("SEED_DEMO_DATA")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ResolvedStartDate returns the simulation's Day 0 as a UTC midnight
// timestamp. An empty START_DATE means the simulation starts at today's
// date, matching a fresh demo run.
func (c *Config) ResolvedStartDate() (time.Time, error) {
	if c.StartDate == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("START_DATE must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if _, err := c.ResolvedStartDate(); err != nil {
		return err
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0, got %v", c.RateLimitRPS)
	}
	if c.RiskEndpointURL != "" && !strings.HasPrefix(c.RiskEndpointURL, "http") {
		return fmt.Errorf("RISK_ENDPOINT_URL must be an http(s) URL, got %q", c.RiskEndpointURL)
	}
	return nil
}
