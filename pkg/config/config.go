package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

const (
	ArchiveFile       = "file"
	ArchiveHTTP       = "http"
	ArchiveClickHouse = "clickhouse"

	CacheMemory  = "memory"
	CacheRedis   = "redis"
	CacheLayered = "layered"

	maxTimeframeDays = 720
	maxTimeframes    = 7
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Dashboard struct {
		DefaultTimeframes []int         `yaml:"default_timeframes" default:"[7,30]"`
		CacheTTL          time.Duration `yaml:"cache_ttl" default:"15m"`
		FetchTimeout      time.Duration `yaml:"fetch_timeout" default:"20s"`
		RefreshCron       string        `yaml:"refresh_cron" default:"0 */10 * * * *"`
		RefreshOnStart    bool          `yaml:"refresh_on_start" default:"true"`
		HTTPMaxAge        time.Duration `yaml:"http_max_age" default:"60s"`
	} `yaml:"dashboard"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"30"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"1"`
	} `yaml:"rate_limit"`
	Cache struct {
		Backend  string        `yaml:"backend" default:"memory"`
		LocalTTL time.Duration `yaml:"local_ttl" default:"30s"`
		Redis    struct {
			Addr      string `yaml:"addr"`
			Password  string `yaml:"password"`
			DB        int    `yaml:"db"`
			KeyPrefix string `yaml:"key_prefix" default:"hype:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Upstream struct {
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
		CoinGecko struct {
			BaseURL string `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
			CoinID  string `yaml:"coin_id" default:"hyperliquid"`
			Days    int    `yaml:"days" default:"365"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"coingecko"`
		DefiLlama struct {
			BaseURL  string `yaml:"base_url" default:"https://api.llama.fi"`
			Protocol string `yaml:"protocol" default:"hyperliquid"`
		} `yaml:"defillama"`
		Hyperliquid struct {
			InfoURL string `yaml:"info_url" default:"https://api.hyperliquid.xyz/info"`
		} `yaml:"hyperliquid"`
	} `yaml:"upstream"`
	Archive struct {
		Backend string `yaml:"backend" default:"file"`
		Path    string `yaml:"path" default:"data/oi_history.json"`
		URL     string `yaml:"url"`
		Table   string `yaml:"table" default:"oi_history"`
	} `yaml:"archive"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		Compression      string        `yaml:"compression" default:"lz4"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		InitSchema       bool          `yaml:"init_schema"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"hype.revenue.summary"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
}

// Default returns a Config populated only from struct tag defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.Upstream.CoinGecko.APIKey = v
	}
	if v := getenv("ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := getenv("ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
	if v := getenv("ARCHIVE_URL"); v != "" {
		c.Archive.URL = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		if c.Cache.Backend == CacheMemory {
			c.Cache.Backend = CacheRedis
		}
		c.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got '%s'", c.Log.Level)
	}

	tfs := c.Dashboard.DefaultTimeframes
	if len(tfs) == 0 || len(tfs) > maxTimeframes {
		return fmt.Errorf("dashboard.default_timeframes must hold 1..%d values, got %d", maxTimeframes, len(tfs))
	}
	for _, tf := range tfs {
		if tf < 1 || tf > maxTimeframeDays {
			return fmt.Errorf("dashboard.default_timeframes: %d is outside 1..%d", tf, maxTimeframeDays)
		}
	}
	if c.Dashboard.FetchTimeout <= 0 {
		return fmt.Errorf("dashboard.fetch_timeout must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Capacity < 1 || c.RateLimit.RefillPerSec <= 0) {
		return fmt.Errorf("rate_limit.capacity must be >= 1 and rate_limit.refill_per_sec > 0")
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis, CacheLayered:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the %s cache backend", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}

	switch c.Archive.Backend {
	case ArchiveFile:
		if c.Archive.Path == "" {
			return fmt.Errorf("archive.path is required for the file backend")
		}
	case ArchiveHTTP:
		if c.Archive.URL == "" {
			return fmt.Errorf("archive.url is required for the http backend")
		}
	case ArchiveClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse backend")
		}
		if c.Archive.Table == "" {
			return fmt.Errorf("archive.table is required for the clickhouse backend")
		}
	default:
		return fmt.Errorf("archive.backend must be 'file', 'http' or 'clickhouse', got '%s'", c.Archive.Backend)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka.brokers is set")
	}
	return nil
}
