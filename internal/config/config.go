package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Data source kinds.
const (
	SourceHTML = "html" // NAV history page
	SourceAPI  = "api"  // JSON history API
)

// Config holds all application configuration.
type Config struct {
	Fund struct {
		Code      string `yaml:"code"`
		StartYear int    `yaml:"start_year"`
		EndYear   int    `yaml:"end_year"`
	} `yaml:"fund"`
	DataSource struct {
		Kind              string        `yaml:"kind"` // "html" or "api"
		BaseURL           string        `yaml:"base_url"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"` // negative disables pacing
	} `yaml:"data_source"`
	Analysis struct {
		RequiredDays    int  `yaml:"required_days"`
		SkipFailedWeeks bool `yaml:"skip_failed_weeks"`
	} `yaml:"analysis"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Analysis.RequiredDays = -1 // unset; 0 is a valid setting

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FUND_CODE"); v != "" {
		cfg.Fund.Code = v
	}
	if err := envInt("START_YEAR", &cfg.Fund.StartYear); err != nil {
		return nil, err
	}
	if err := envInt("END_YEAR", &cfg.Fund.EndYear); err != nil {
		return nil, err
	}
	if err := envInt("REQUIRED_DAYS", &cfg.Analysis.RequiredDays); err != nil {
		return nil, err
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Kind = v
	}
	if v := os.Getenv("EASTMONEY_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse REQUESTS_PER_SECOND: %w", err)
		}
		cfg.DataSource.RequestsPerSecond = rps
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.Kind == "" {
		cfg.DataSource.Kind = SourceHTML
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 2
	}
	if cfg.Analysis.RequiredDays < 0 {
		cfg.Analysis.RequiredDays = 5
	}

	return cfg, nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

// TelegramEnabled reports whether reports should be delivered to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Fund.Code == "" {
		return fmt.Errorf("fund.code is required")
	}
	if c.Fund.StartYear <= 0 {
		return fmt.Errorf("fund.start_year must be positive")
	}
	if c.Fund.EndYear <= 0 {
		return fmt.Errorf("fund.end_year must be positive")
	}
	if c.DataSource.Kind != SourceHTML && c.DataSource.Kind != SourceAPI {
		return fmt.Errorf("data_source.kind must be %q or %q", SourceHTML, SourceAPI)
	}
	if c.Analysis.RequiredDays < 0 {
		return fmt.Errorf("analysis.required_days must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.NewParser(CronFields).Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	return nil
}

// CronFields is the accepted cron syntax: seconds first, as in "0 0 18 * * 5".
const CronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor
