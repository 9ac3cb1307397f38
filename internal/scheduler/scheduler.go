package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/urbanplatform/onboarding/internal/importer"
	"github.com/urbanplatform/onboarding/internal/weather"
)

// Config carries the deployment-level run policy: when to run, how long a run
// may take, and how transient failures are retried.
type Config struct {
	// CronExpr is a standard five-field cron expression.
	CronExpr string
	// RunTimeout bounds one import attempt.
	RunTimeout time.Duration
	// MaxRetries is the number of additional attempts after a transient
	// failure. Permanent and schema-mismatch failures are never retried.
	MaxRetries int
	// RetryBackoff is the base delay between attempts, doubled each retry.
	RetryBackoff time.Duration
}

// Scheduler triggers the importer on a cron schedule, one run at a time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	importer  *importer.Importer
	cfg       Config
}

// New creates a Scheduler for the given importer.
func New(imp *importer.Importer, cfg Config) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		importer:  imp,
		cfg:       cfg,
	}
}

// Start registers the import job and starts the underlying scheduler.
// Singleton mode guarantees runs never overlap, matching the orchestrator
// behavior the importer was written for.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Cron(s.cfg.CronExpr).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: import job scheduled (%s)", s.cfg.CronExpr)
	return nil
}

// RunNow triggers one import cycle outside the schedule, with the same
// timeout and retry policy.
func (s *Scheduler) RunNow() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		_, err := s.importer.Run(ctx)
		cancel()

		if err == nil {
			return
		}
		if !weather.IsTransient(err) {
			log.Printf("scheduler: run failed (not retryable): %v", err)
			return
		}
		if attempt >= s.cfg.MaxRetries {
			log.Printf("scheduler: run failed after %d attempts: %v", attempt+1, err)
			return
		}

		delay := s.cfg.RetryBackoff * time.Duration(1<<attempt)
		log.Printf("scheduler: transient failure, retrying in %s: %v", delay, err)
		time.Sleep(delay)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
