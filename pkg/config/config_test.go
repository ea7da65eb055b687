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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: production\n"))
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.AllowOrigins)
	assert.Equal(t, []int{7, 30}, c.Dashboard.DefaultTimeframes)
	assert.Equal(t, 15*time.Minute, c.Dashboard.CacheTTL)
	assert.Equal(t, "0 */10 * * * *", c.Dashboard.RefreshCron)
	assert.True(t, c.Dashboard.RefreshOnStart)
	assert.Equal(t, CacheMemory, c.Cache.Backend)
	assert.Equal(t, ArchiveFile, c.Archive.Backend)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Empty(t, c.Kafka.Brokers)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: staging
dashboard:
  default_timeframes: [14, 90, 360]
  refresh_on_start: false
  cache_ttl: 2m
rate_limit:
  enabled: false
archive:
  backend: http
  url: https://static.example/oi_history.json
`))
	require.NoError(t, err)

	assert.Equal(t, []int{14, 90, 360}, c.Dashboard.DefaultTimeframes)
	assert.False(t, c.Dashboard.RefreshOnStart)
	assert.False(t, c.RateLimit.Enabled)
	assert.Equal(t, 2*time.Minute, c.Dashboard.CacheTTL)
	assert.Equal(t, ArchiveHTTP, c.Archive.Backend)
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"COINGECKO_API_KEY": "cg-key",
		"ARCHIVE_BACKEND":   "clickhouse",
		"CLICKHOUSE_HOST":   "ch.local",
		"REDIS_ADDR":        "redis:6379",
		"KAFKA_BROKERS":     "k1:9092, k2:9092,",
		"HTTP_PORT":         "9090",
		"LOG_LEVEL":         "debug",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "cg-key", c.Upstream.CoinGecko.APIKey)
	assert.Equal(t, ArchiveClickHouse, c.Archive.Backend)
	assert.Equal(t, CacheRedis, c.Cache.Backend)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "debug", c.Log.Level)
	require.NoError(t, c.Validate())

	env = map[string]string{"HTTP_PORT": "eighty"}
	require.Error(t, c.applyEnv(func(k string) string { return env[k] }))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"bad log level":        func(c *Config) { c.Log.Level = "verbose" },
		"no timeframes":        func(c *Config) { c.Dashboard.DefaultTimeframes = nil },
		"timeframe too large":  func(c *Config) { c.Dashboard.DefaultTimeframes = []int{7, 721} },
		"too many timeframes":  func(c *Config) { c.Dashboard.DefaultTimeframes = []int{1, 2, 3, 4, 5, 6, 7, 8} },
		"unknown archive":      func(c *Config) { c.Archive.Backend = "s3" },
		"http archive w/o url": func(c *Config) { c.Archive.Backend = ArchiveHTTP },
		"clickhouse w/o host":  func(c *Config) { c.Archive.Backend = ArchiveClickHouse },
		"redis w/o addr":       func(c *Config) { c.Cache.Backend = CacheRedis },
		"layered w/o addr":     func(c *Config) { c.Cache.Backend = CacheLayered },
		"unknown cache":        func(c *Config) { c.Cache.Backend = "memcached" },
		"kafka w/o topic":      func(c *Config) { c.Kafka.Brokers = []string{"k:9092"}; c.Kafka.Topic = "" },
		"bad port":             func(c *Config) { c.Server.Port = 0 },
		"bad rate limit":       func(c *Config) { c.RateLimit.Capacity = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Default()
			require.NoError(t, err)
			require.NoError(t, c.Validate())
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not a map"))
	require.Error(t, err)
}
