package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	cron  *cron.Cron
	monitor *BackendMonitor
	spec  string
	log   zerolog.Logger
}

// NewScheduler runs monitor on spec, a six-field cron expression with seconds.
func NewScheduler(spec string, monitor *BackendMonitor, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		monitor: monitor,
		spec:  spec,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.monitor == nil || s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.monitor.Run); err != nil {
		return err
	}

	// first result without waiting for the schedule
	go s.monitor.Run()

	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("backend monitor scheduled")
	return nil
}

// Stop halts scheduling and waits up to five seconds for a running monitor.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("backend monitor still running at shutdown")
	}
}

// Pinger is the backend reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}
