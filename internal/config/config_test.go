package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, SourceHTML, cfg.DataSource.Kind)
	assert.Empty(t, cfg.DataSource.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 2.0, cfg.DataSource.RequestsPerSecond)
	assert.Equal(t, 5, cfg.Analysis.RequiredDays)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
fund:
  code: "110011"
  start_year: 2019
  end_year: 2020
data_source:
  kind: api
  timeout: 10s
  requests_per_second: -1
analysis:
  required_days: 0
  skip_failed_weeks: true
schedule:
  cron: "0 0 18 * * 5"
telegram:
  bot_token: token
  chat_id: "42"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "110011", cfg.Fund.Code)
	assert.Equal(t, 2019, cfg.Fund.StartYear)
	assert.Equal(t, 2020, cfg.Fund.EndYear)
	assert.Equal(t, SourceAPI, cfg.DataSource.Kind)
	assert.Equal(t, 10*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, -1.0, cfg.DataSource.RequestsPerSecond)
	assert.Equal(t, 0, cfg.Analysis.RequiredDays)
	assert.True(t, cfg.Analysis.SkipFailedWeeks)
	assert.Equal(t, "0 0 18 * * 5", cfg.Schedule.Cron)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "fund:\n  code: \"000001\"\n  start_year: 2010\n")
	t.Setenv("FUND_CODE", "110011")
	t.Setenv("START_YEAR", "2018")
	t.Setenv("END_YEAR", "2019")
	t.Setenv("REQUIRED_DAYS", "4")
	t.Setenv("REQUESTS_PER_SECOND", "0.5")
	t.Setenv("EASTMONEY_BASE_URL", "http://localhost:9000")
	t.Setenv("HTTPS_PROXY", "http://proxy:3128")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "110011", cfg.Fund.Code)
	assert.Equal(t, 2018, cfg.Fund.StartYear)
	assert.Equal(t, 2019, cfg.Fund.EndYear)
	assert.Equal(t, 4, cfg.Analysis.RequiredDays)
	assert.Equal(t, 0.5, cfg.DataSource.RequestsPerSecond)
	assert.Equal(t, "http://localhost:9000", cfg.DataSource.BaseURL)
	assert.Equal(t, "http://proxy:3128", cfg.Proxy)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "fund: [oops"))
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("START_YEAR", "twenty")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "START_YEAR")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Fund.Code = "110011"
		c.Fund.StartYear = 2019
		c.Fund.EndYear = 2020
		c.Analysis.RequiredDays = 5
		c.DataSource.Kind = SourceHTML
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing code", func(c *Config) { c.Fund.Code = "" }, "fund.code"},
		{"bad start year", func(c *Config) { c.Fund.StartYear = 0 }, "fund.start_year"},
		{"bad end year", func(c *Config) { c.Fund.EndYear = -1 }, "fund.end_year"},
		{"unknown source", func(c *Config) { c.DataSource.Kind = "ftp" }, "data_source.kind"},
		{"negative required days", func(c *Config) { c.Analysis.RequiredDays = -2 }, "required_days"},
		{"telegram half set", func(c *Config) { c.Telegram.BotToken = "t" }, "telegram"},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every friday" }, "schedule.cron"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}

	// An inverted year range is left to the aggregation, which reports it as empty input.
	c := valid()
	c.Fund.StartYear, c.Fund.EndYear = 2021, 2020
	assert.NoError(t, c.Validate())
}
