package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: development
market_data:
  base_url: https://finnhub.io/api/v1
`

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", c.Server.Port)
	}
	if c.SQLite.Path != "portpulse.db" {
		t.Errorf("SQLite.Path = %q", c.SQLite.Path)
	}
	if c.MarketData.Timeout != 10*time.Second {
		t.Errorf("MarketData.Timeout = %v", c.MarketData.Timeout)
	}
	if c.MarketData.RateCapacity != 30 || c.MarketData.RatePerSec != 0.5 {
		t.Errorf("rate defaults = %d/%v", c.MarketData.RateCapacity, c.MarketData.RatePerSec)
	}
	if c.Market.IndexTicker != "SPY" {
		t.Errorf("IndexTicker = %q", c.Market.IndexTicker)
	}
	if c.Scheduler.CronSpec != "*/15 * * * *" {
		t.Errorf("CronSpec = %q", c.Scheduler.CronSpec)
	}
	if c.Redis.Host != "localhost" || c.Redis.Port != 6379 {
		t.Errorf("redis defaults = %s:%d", c.Redis.Host, c.Redis.Port)
	}
	if c.Alerts.Cooldown != 30*time.Minute {
		t.Errorf("Alerts.Cooldown = %v", c.Alerts.Cooldown)
	}
	if c.Queue.Workers != 1 || c.Queue.BufferSize != 16 || c.Queue.RetryMax != 3 {
		t.Errorf("queue defaults = %+v", c.Queue)
	}
}

func TestLoadOverrides(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: production
server:
  port: 9090
market_data:
  base_url: https://finnhub.io/api/v1
  timeout: 3s
market:
  index_ticker: QQQ
  eval_concurrency: 8
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Errorf("Server.Port = %d", c.Server.Port)
	}
	if c.MarketData.Timeout != 3*time.Second {
		t.Errorf("MarketData.Timeout = %v", c.MarketData.Timeout)
	}
	if c.Market.IndexTicker != "QQQ" || c.Market.EvalConcurrency != 8 {
		t.Errorf("market = %+v", c.Market)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", "market_data:\n  base_url: https://x\n"},
		{"missing base url", "environment: development\n"},
		{"kafka without brokers", `
environment: development
market_data:
  base_url: https://x
kafka:
  enabled: true
  alerts_topic: alerts
`},
		{"kafka without topic", `
environment: development
market_data:
  base_url: https://x
kafka:
  enabled: true
  brokers: [localhost:9092]
`},
		{"stream without url", `
environment: development
market_data:
  base_url: https://x
stream:
  enabled: true
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("MARKET_DATA_TOKEN", "tok123")
	t.Setenv("REDIS_ADDR", "cache.internal:6380")
	t.Setenv("PORT", "7000")

	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.MarketData.Token != "tok123" {
		t.Errorf("Token = %q", c.MarketData.Token)
	}
	if c.Redis.Host != "cache.internal" || c.Redis.Port != 6380 {
		t.Errorf("redis = %s:%d", c.Redis.Host, c.Redis.Port)
	}
	if c.Server.Port != 7000 {
		t.Errorf("Server.Port = %d", c.Server.Port)
	}
}
