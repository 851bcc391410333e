package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the daily activity report on a cron schedule (UTC).
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	log        *zap.Logger
}

func New(spec string, log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job. Without a report function it is a no-op.
func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		s.log.Warn("report function not set, scheduler will not generate reports")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.log.Info("daily report triggered", zap.String("schedule", s.spec))
		if err := s.reportFunc(s.ctx); err != nil {
			s.log.Error("daily report failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule report %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

// Run starts the scheduler and blocks until ctx is done.
// With no report job registered it returns immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	if !s.IsRunning() {
		return nil
	}
	s.log.Info("next report", zap.Time("at", s.cron.Entries()[0].Next))
	<-ctx.Done()
	s.Stop()
	return nil
}
