package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"PortPulse/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	MarketData struct {
		BaseURL      string        `yaml:"base_url"`
		Token        string        `yaml:"token"`
		Timeout      time.Duration `yaml:"timeout"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
		RateCapacity int           `yaml:"rate_capacity"`
		RatePerSec   float64       `yaml:"rate_per_sec"`
	} `yaml:"market_data"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		AlertsTopic string   `yaml:"alerts_topic"`
		Producer    struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Queue struct {
		Workers    int `yaml:"workers"`
		BufferSize int `yaml:"buffer_size"`
		RetryMax   int `yaml:"retry_max"`
	} `yaml:"queue"`
	Alerts struct {
		Cooldown time.Duration `yaml:"cooldown"`
	} `yaml:"alerts"`
	Market struct {
		IndexTicker      string        `yaml:"index_ticker"`
		VolatilityTicker string        `yaml:"volatility_ticker"`
		HealthTTL        time.Duration `yaml:"health_ttl"`
		EvalTimeout      time.Duration `yaml:"eval_timeout"`
		EvalConcurrency  int           `yaml:"eval_concurrency"`
	} `yaml:"market"`
	Scheduler struct {
		Enabled   bool   `yaml:"enabled"`
		CronSpec  string `yaml:"cron_spec"`
		Timezone  string `yaml:"timezone"`
		OpenHour  int    `yaml:"open_hour"`
		OpenMin   int    `yaml:"open_min"`
		CloseHour int    `yaml:"close_hour"`
		CloseMin  int    `yaml:"close_min"`
	} `yaml:"scheduler"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKET_DATA_TOKEN"); v != "" {
		c.MarketData.Token = v
	}
	if v := os.Getenv("MARKET_DATA_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			c.Redis.Port = util.ParseIntDefault(port, c.Redis.Port)
		}
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "portpulse.db"
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 10 * time.Second
	}
	if c.MarketData.CacheTTL == 0 {
		c.MarketData.CacheTTL = time.Minute
	}
	if c.MarketData.RateCapacity == 0 {
		c.MarketData.RateCapacity = 30
	}
	if c.MarketData.RatePerSec == 0 {
		c.MarketData.RatePerSec = 0.5
	}
	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = 5 * time.Second
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = 30 * time.Second
	}
	if c.Alerts.Cooldown == 0 {
		c.Alerts.Cooldown = 30 * time.Minute
	}
	if c.Market.IndexTicker == "" {
		c.Market.IndexTicker = "SPY"
	}
	if c.Market.HealthTTL == 0 {
		c.Market.HealthTTL = 5 * time.Minute
	}
	if c.Market.EvalTimeout == 0 {
		c.Market.EvalTimeout = 60 * time.Second
	}
	if c.Market.EvalConcurrency == 0 {
		c.Market.EvalConcurrency = 4
	}
	if c.Scheduler.CronSpec == "" {
		c.Scheduler.CronSpec = "*/15 * * * *"
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "America/New_York"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Queue.Workers == 0 {
		c.Queue.Workers = 1
	}
	if c.Queue.BufferSize == 0 {
		c.Queue.BufferSize = 16
	}
	if c.Queue.RetryMax == 0 {
		c.Queue.RetryMax = 3
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.AlertsTopic == "" {
		return fmt.Errorf("kafka.alerts_topic is required when kafka is enabled")
	}
	if c.Stream.Enabled && c.Stream.WebSocketURL == "" {
		return fmt.Errorf("stream.websocket_url is required when stream is enabled")
	}
	return nil
}
