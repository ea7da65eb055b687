// Package scheduler pre-computes the default dashboard on a cron schedule and
// publishes the resulting summary.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	domrepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

// Refresher rebuilds and re-caches a dashboard.
type Refresher interface {
	Refresh(ctx context.Context, timeframes []int) (*models.Dashboard, error)
}

// Scheduler manages the refresh cron job.
type Scheduler struct {
	cron       *cron.Cron
	refresher  Refresher
	publisher  domrepo.SummaryPublisher
	timeframes []int
	timeout    time.Duration
	l          *applogger.Logger
	ctx        context.Context
}

// NewScheduler creates a Scheduler. ctx bounds every job run.
func NewScheduler(ctx context.Context, r Refresher, p domrepo.SummaryPublisher, timeframes []int, timeout time.Duration, l *applogger.Logger) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	cl := cronLogger{l: l}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		refresher:  r,
		publisher:  p,
		timeframes: timeframes,
		timeout:    timeout,
		l:          l,
		ctx:        ctx,
	}
}

// Register adds the refresh job. An empty expression leaves the scheduler idle.
func (s *Scheduler) Register(expr string) error {
	if expr == "" {
		s.l.Info("scheduler: refresh cron disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(expr, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task %q: %w", expr, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.l.Info("scheduler stopped")
}

// RunNow executes one refresh immediately (used on start-up).
func (s *Scheduler) RunNow() error {
	return s.refresh()
}

func (s *Scheduler) refreshTask() {
	_ = s.refresh()
}

func (s *Scheduler) refresh() error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	d, err := s.refresher.Refresh(ctx, s.timeframes)
	if err != nil {
		s.l.Error("scheduler: dashboard refresh failed", applogger.Error(err))
		return err
	}
	s.l.Info("scheduler: dashboard refreshed",
		applogger.Int("rows", len(d.Rows)),
		applogger.Int("degraded_sources", len(d.SourceErrors)),
		applogger.Duration("took_ms", time.Since(start)),
	)

	if d.Summary == nil || s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, d.Summary); err != nil {
		s.l.Warn("scheduler: publish summary failed", applogger.Error(err))
	}
	return nil
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, applogger.Any(key, kv[i+1]))
	}
	return fields
}
