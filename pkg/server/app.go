package server

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fuel4us/hype-revenue/internal/domain/repository"
	"github.com/Fuel4us/hype-revenue/internal/scheduler"
	"github.com/Fuel4us/hype-revenue/internal/service/ratelimit"
	"github.com/Fuel4us/hype-revenue/pkg/config"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	httpHandler xhttp.Handler
	refresher   scheduler.Refresher
	publisher   repository.SummaryPublisher
	limiter     *ratelimit.Limiter

	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpHandler xhttp.Handler,
	refresher scheduler.Refresher,
	publisher repository.SummaryPublisher,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:         cfg,
		l:           l,
		httpHandler: httpHandler,
		refresher:   refresher,
		publisher:   publisher,
		limiter:     limiter,
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.AllowOrigins),
		xhttp.WithSlowRequestThreshold(a.cfg.Server.SlowRequest),
		xhttp.WithLogger(a.l),
	)

	a.sched = scheduler.NewScheduler(ctx, a.refresher, a.publisher,
		a.cfg.Dashboard.DefaultTimeframes, 2*a.cfg.Dashboard.FetchTimeout, a.l)
	if err := a.sched.Register(a.cfg.Dashboard.RefreshCron); err != nil {
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.sched.Start()

	if a.cfg.Dashboard.RefreshOnStart {
		go func() { _ = a.sched.RunNow() }()
	}
	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	a.l.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("archive", a.cfg.Archive.Backend),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", len(a.cfg.Kafka.Brokers) > 0),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.l.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown stops the scheduler and HTTP server. Infrastructure clients are
// released by the cleanup function returned from dependency injection.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.sched.Stop(ctx)

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.l.Info("shutdown complete")
	return nil
}
