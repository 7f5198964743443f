// Package task runs background maintenance work. Its only job today is
// flushing the offline review queue: once on startup to recover reviews
// stranded by a crash or an offline shutdown, then periodically so a
// restored connection drains the backlog without user action.
package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/renshu-app/renshu/internal/submission"
)

// Submitter drains the offline review backlog. It is satisfied by the
// review service's Flush method.
type Submitter interface {
	Flush(ctx context.Context) (submission.Outcome, error)
}

// FlushRunnerConfig holds configuration for the flush runner.
type FlushRunnerConfig struct {
	// Interval is how often the backlog is retried. If zero, defaults
	// to 5 minutes.
	Interval time.Duration

	// FlushTimeout bounds a single flush attempt. If zero, defaults
	// to 2 minutes.
	FlushTimeout time.Duration
}

// DefaultFlushRunnerConfig returns a FlushRunnerConfig with reasonable defaults.
func DefaultFlushRunnerConfig() FlushRunnerConfig {
	return FlushRunnerConfig{
		Interval:     5 * time.Minute,
		FlushTimeout: 2 * time.Minute,
	}
}

// FlushRunner periodically retries the offline review backlog.
type FlushRunner struct {
	submitter  Submitter
	config     FlushRunnerConfig
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewFlushRunner creates a new FlushRunner.
func NewFlushRunner(submitter Submitter, config FlushRunnerConfig, logger *slog.Logger) *FlushRunner {
	if submitter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("submitter cannot be nil for FlushRunner")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}
	if config.FlushTimeout == 0 {
		config.FlushTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &FlushRunner{
		submitter:  submitter,
		config:     config,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With(slog.String("component", "flush_runner")),
	}
}

// Start performs a recovery flush immediately, then begins the periodic
// retry loop in the background.
func (r *FlushRunner) Start() {
	r.flush("startup recovery")

	r.wg.Add(1)
	go r.loop()
}

// Stop gracefully shuts down the flush runner, waiting for an in-flight
// flush to finish.
func (r *FlushRunner) Stop() {
	r.logger.Info("stopping flush runner")
	r.cancelFunc()
	r.wg.Wait()
	r.logger.Info("flush runner stopped")
}

func (r *FlushRunner) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.flush("periodic retry")
		}
	}
}

func (r *FlushRunner) flush(reason string) {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.FlushTimeout)
	defer cancel()

	outcome, err := r.submitter.Flush(ctx)
	if err != nil {
		r.logger.Error("flush failed",
			"reason", reason,
			"error", err)
		return
	}

	if outcome.Delivered == 0 && outcome.Deferred == 0 {
		return
	}

	if outcome.FullyDelivered() {
		r.logger.Info("flushed offline reviews",
			"reason", reason,
			"delivered", outcome.Delivered)
		return
	}

	r.logger.Info("flush left reviews queued",
		"reason", reason,
		"delivered", outcome.Delivered,
		"deferred", outcome.Deferred,
		"cause", outcome.Cause)
}
