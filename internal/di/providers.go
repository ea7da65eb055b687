package di

import (
	"context"
	"fmt"
	"time"

	"github.com/Fuel4us/hype-revenue/internal/domain/repository"
	"github.com/Fuel4us/hype-revenue/internal/handler/api"
	internalrepo "github.com/Fuel4us/hype-revenue/internal/repository"
	"github.com/Fuel4us/hype-revenue/internal/service/cache"
	"github.com/Fuel4us/hype-revenue/internal/service/coingecko"
	"github.com/Fuel4us/hype-revenue/internal/service/defillama"
	"github.com/Fuel4us/hype-revenue/internal/service/hyperliquid"
	svcmetrics "github.com/Fuel4us/hype-revenue/internal/service/metrics"
	"github.com/Fuel4us/hype-revenue/internal/service/ratelimit"
	"github.com/Fuel4us/hype-revenue/internal/usecase"
	pkgch "github.com/Fuel4us/hype-revenue/pkg/clickhouse"
	"github.com/Fuel4us/hype-revenue/pkg/config"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
	pkgkafka "github.com/Fuel4us/hype-revenue/pkg/kafka"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
	"github.com/Fuel4us/hype-revenue/pkg/metrics"
	"github.com/Fuel4us/hype-revenue/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	userAgent     = "hype-revenue/1.0"
	schemaTimeout = 10 * time.Second
	redisPingWait = 5 * time.Second
)

// ProvideLogger builds the root logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHTTPClient creates the outbound client shared by all upstream fetchers.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Upstream.Timeout),
		xhttp.WithUserAgent(userAgent),
	)
}

// ProvidePriceSource creates the CoinGecko price fetcher.
func ProvidePriceSource(cfg *config.Config, hc *xhttp.Client) repository.PriceSource {
	cg := cfg.Upstream.CoinGecko
	return coingecko.New(hc,
		coingecko.WithBaseURL(cg.BaseURL),
		coingecko.WithCoinID(cg.CoinID),
		coingecko.WithDays(cg.Days),
		coingecko.WithAPIKey(cg.APIKey),
	)
}

// ProvideFeeSource creates the DefiLlama fee fetcher.
func ProvideFeeSource(cfg *config.Config, hc *xhttp.Client) repository.FeeSource {
	return defillama.New(hc,
		defillama.WithBaseURL(cfg.Upstream.DefiLlama.BaseURL),
		defillama.WithProtocol(cfg.Upstream.DefiLlama.Protocol),
	)
}

// ProvideLiveOpenInterestSource creates the Hyperliquid info endpoint client.
func ProvideLiveOpenInterestSource(cfg *config.Config, hc *xhttp.Client) repository.LiveOpenInterestSource {
	return hyperliquid.New(hc, hyperliquid.WithInfoURL(cfg.Upstream.Hyperliquid.InfoURL))
}

// ProvideOpenInterestArchive selects the archive backend. The cleanup closes
// the ClickHouse connection when that backend is used.
func ProvideOpenInterestArchive(cfg *config.Config, hc *xhttp.Client, l *applogger.Logger) (repository.OpenInterestArchive, func(), error) {
	switch cfg.Archive.Backend {
	case config.ArchiveHTTP:
		a := internalrepo.NewHTTPOIArchive(hc, cfg.Archive.URL)
		a.SetLogger(l)
		return a, func() {}, nil
	case config.ArchiveClickHouse:
		return provideClickHouseArchive(cfg, l)
	default:
		a := internalrepo.NewFileOIArchive(cfg.Archive.Path)
		a.SetLogger(l)
		return a, func() {}, nil
	}
}

func provideClickHouseArchive(cfg *config.Config, l *applogger.Logger) (repository.OpenInterestArchive, func(), error) {
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithCompression(ch.Compression),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	archive, err := internalrepo.NewCHOIArchive(client, cfg.Archive.Table)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	archive.SetLogger(l)

	if ch.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		if err := client.InitSchema(ctx, archive.SchemaStatements()); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}

	l.Info("clickhouse archive ready",
		applogger.String("host", ch.Host),
		applogger.String("table", cfg.Archive.Table))
	return archive, cleanup, nil
}

// ProvideCache selects the dashboard cache backend. The layered backend keeps a
// short-lived local copy in front of Redis.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func(), error) {
	if cfg.Cache.Backend == config.CacheMemory {
		return cache.NewTTLCache(), func() {}, nil
	}
	rc := cfg.Cache.Redis
	c := cache.NewRedisCache(cache.RedisConfig{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		KeyPrefix:   rc.KeyPrefix,
		DialTimeout: redisPingWait,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisPingWait)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	cleanup := func() {
		if err := c.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	if cfg.Cache.Backend == config.CacheLayered {
		return cache.NewLayeredCache(c, cfg.Cache.LocalTTL), cleanup, nil
	}
	return c, cleanup, nil
}

// ProvideSummaryPublisher creates a Kafka publisher when brokers are configured.
func ProvideSummaryPublisher(cfg *config.Config, l *applogger.Logger) (repository.SummaryPublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return internalrepo.NoopSummaryPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithHeaders(map[string]string{
			"content-type": "application/json",
			"event":        "dashboard.summary",
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaSummaryPublisher(producer, cfg.Kafka.Topic)
	l.Info("kafka summary publisher ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic))
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka close error", applogger.Error(err))
		}
	}, nil
}

// ProvideDashboardUseCase assembles the dashboard use case.
func ProvideDashboardUseCase(
	cfg *config.Config,
	prices repository.PriceSource,
	fees repository.FeeSource,
	archive repository.OpenInterestArchive,
	live repository.LiveOpenInterestSource,
	c cache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(prices, fees, archive, live,
		usecase.WithCache(c, cfg.Dashboard.CacheTTL),
		usecase.WithFetchTimeout(cfg.Dashboard.FetchTimeout),
		usecase.WithDefaultTimeframes(cfg.Dashboard.DefaultTimeframes),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideHTTPHandler creates the dashboard API handler and registers its collectors.
func ProvideHTTPHandler(cfg *config.Config, l *applogger.Logger, uc *usecase.DashboardUseCase, limiter *ratelimit.Limiter) xhttp.Handler {
	svcmetrics.Register(prometheus.DefaultRegisterer)
	return api.NewDashboardEchoHandler(l, uc, limiter, cfg.Dashboard.HTTPMaxAge)
}

// ProvideApp creates the application with all dependencies.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h xhttp.Handler,
	uc *usecase.DashboardUseCase,
	publisher repository.SummaryPublisher,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, h, uc, publisher, limiter)
}
