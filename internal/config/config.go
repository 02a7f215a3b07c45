package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL   string        `yaml:"base_url" env:"TRADEQUEST_API_BASE_URL"`
		RateLimit float64       `yaml:"rate_limit" env:"TRADEQUEST_API_RATE_LIMIT"`
		Timeout   time.Duration `yaml:"timeout" env:"TRADEQUEST_API_TIMEOUT"`
	} `yaml:"api"`
	Identity struct {
		Endpoint  string `yaml:"endpoint" env:"TRADEQUEST_IDENTITY_ENDPOINT"`
		ClientID  string `yaml:"client_id" env:"TRADEQUEST_IDENTITY_CLIENT_ID"`
		CacheFile string `yaml:"cache_file" env:"TRADEQUEST_CREDENTIALS_FILE"`
	} `yaml:"identity"`
	Dashboard struct {
		PricesInterval      time.Duration `yaml:"prices_interval" env:"TRADEQUEST_PRICES_INTERVAL"`
		PortfolioInterval   time.Duration `yaml:"portfolio_interval" env:"TRADEQUEST_PORTFOLIO_INTERVAL"`
		NewsInterval        time.Duration `yaml:"news_interval" env:"TRADEQUEST_NEWS_INTERVAL"`
		LeaderboardInterval time.Duration `yaml:"leaderboard_interval" env:"TRADEQUEST_LEADERBOARD_INTERVAL"`
	} `yaml:"dashboard"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"TRADEQUEST_SQLITE_PATH"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level" env:"TRADEQUEST_LOG_LEVEL"`
		File  string `yaml:"file" env:"TRADEQUEST_LOG_FILE"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults fill whatever remains unset.
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

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	home, _ := os.UserHomeDir()
	stateDir := filepath.Join(home, ".tradequest")

	if c.API.RateLimit == 0 {
		c.API.RateLimit = 10
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Identity.CacheFile == "" {
		c.Identity.CacheFile = filepath.Join(stateDir, "credentials.json")
	}
	if c.Dashboard.PricesInterval == 0 {
		c.Dashboard.PricesInterval = time.Second
	}
	if c.Dashboard.PortfolioInterval == 0 {
		c.Dashboard.PortfolioInterval = time.Second
	}
	if c.Dashboard.NewsInterval == 0 {
		c.Dashboard.NewsInterval = 10 * time.Second
	}
	if c.Dashboard.LeaderboardInterval == 0 {
		c.Dashboard.LeaderboardInterval = 30 * time.Second
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = filepath.Join(stateDir, "trades.db")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(stateDir, "tradequest.log")
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Identity.Endpoint == "" {
		return fmt.Errorf("identity.endpoint is required")
	}
	if c.Identity.ClientID == "" {
		return fmt.Errorf("identity.client_id is required")
	}
	return nil
}
