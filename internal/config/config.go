package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataSource describes where rows come from.
type DataSource struct {
	Kind     string   `yaml:"kind"`   // sql, yahoo or mock
	Driver   string   `yaml:"driver"` // sqlserver, odbc, postgres, mysql, sqlite
	DSN      string   `yaml:"dsn"`
	Query    string   `yaml:"query"`
	Table    string   `yaml:"table"`
	Tickers  []string `yaml:"tickers"`
	Interval string   `yaml:"interval"`
	Range    string   `yaml:"range"`
	MockBars int      `yaml:"mock_bars"`
}

// Config holds all application configuration.
type Config struct {
	DataSource DataSource `yaml:"data_source"`
	Ingest     struct {
		Tickers    []string `yaml:"tickers"`
		SortSeries bool     `yaml:"sort_series"`
	} `yaml:"ingest"`
	Schedule struct {
		IngestCron string `yaml:"ingest_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Logging struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SOURCE_KIND"); v != "" {
		c.DataSource.Kind = v
	}
	if v := os.Getenv("SOURCE_DRIVER"); v != "" {
		c.DataSource.Driver = v
	}
	if v := os.Getenv("SOURCE_DSN"); v != "" {
		c.DataSource.DSN = v
	}
	if v := os.Getenv("SOURCE_QUERY"); v != "" {
		c.DataSource.Query = v
	}
	if v := os.Getenv("SOURCE_TICKERS"); v != "" {
		c.DataSource.Tickers = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_INGEST"); v != "" {
		c.Schedule.IngestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Kind == "" {
		c.DataSource.Kind = "sql"
	}
	if c.DataSource.Kind == "sql" && c.DataSource.Driver == "" {
		c.DataSource.Driver = "sqlserver"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "1m"
	}
	if c.DataSource.Range == "" {
		c.DataSource.Range = "1d"
	}
	if c.DataSource.MockBars == 0 {
		c.DataSource.MockBars = 390
	}
	if c.Schedule.IngestCron == "" {
		c.Schedule.IngestCron = "0 30 22 * * 1-5"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case "sql":
		if c.DataSource.DSN == "" {
			return fmt.Errorf("data_source.dsn is required for kind sql")
		}
		if c.DataSource.Driver == "" {
			return fmt.Errorf("data_source.driver is required for kind sql")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.kind %q is not one of sql, yahoo, mock", c.DataSource.Kind)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.DataSource.MockBars < 0 {
		return fmt.Errorf("data_source.mock_bars must not be negative")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
