// Package controller owns the application lifecycle: it starts the
// persistence worker, runs the periodic control tick, and stops the worker
// once a shutdown is requested.
package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tallyzap/inventory/internal/application/dispatch"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("controller: already running")

// Worker is the lifecycle surface the controller drives.
type Worker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	State() dispatch.State
}

// StatsSource reports channel counters for the status line.
type StatsSource interface {
	Stats() dispatch.ChannelStats
}

// Config holds controller timing.
type Config struct {
	// TickInterval is the period of the control tick.
	TickInterval time.Duration
	// StatusEvery logs a status line every N ticks.
	StatusEvery int
	// StopTimeout bounds how long Run waits for the worker to stop.
	StopTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		TickInterval: 2 * time.Second,
		StatusEvery:  15,
		StopTimeout:  10 * time.Second,
	}
}

// Controller runs the control loop.
type Controller struct {
	worker  Worker
	stats   StatsSource
	config  Config
	logger  *zap.Logger
	running atomic.Bool
	stop    atomic.Bool
	ticks   atomic.Uint64
}

// New creates a controller. Zero fields in config fall back to defaults.
func New(worker Worker, stats StatsSource, config Config, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.StatusEvery <= 0 {
		config.StatusEvery = defaults.StatusEvery
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = defaults.StopTimeout
	}
	return &Controller{
		worker: worker,
		stats:  stats,
		config: config,
		logger: logger.Named("controller"),
	}
}

// RequestShutdown asks Run to return at its next tick. Safe from any
// goroutine, including the worker's.
func (c *Controller) RequestShutdown() {
	if c.stop.CompareAndSwap(false, true) {
		c.logger.Info("shutdown requested")
	}
}

// ShutdownRequested reports whether RequestShutdown has been called.
func (c *Controller) ShutdownRequested() bool {
	return c.stop.Load()
}

// Ticks returns how many control ticks have run.
func (c *Controller) Ticks() uint64 {
	return c.ticks.Load()
}

// Run starts the worker and blocks until shutdown is requested or ctx
// ends. The worker is stopped before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if err := c.worker.Start(ctx); err != nil {
		return err
	}
	c.logger.Info("controller started", zap.Duration("tick_interval", c.config.TickInterval))

	c.loop(ctx)

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.StopTimeout)
	defer cancel()
	if err := c.worker.Stop(stopCtx); err != nil {
		c.logger.Warn("worker did not stop in time", zap.Error(err))
		return err
	}
	c.logger.Info("controller stopped", zap.Uint64("ticks", c.ticks.Load()))
	return nil
}

func (c *Controller) loop(ctx context.Context) {
	ticker := time.NewTicker(c.config.TickInterval)
	defer ticker.Stop()

	for {
		if c.stop.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Controller) tick() {
	n := c.ticks.Add(1)
	if n%uint64(c.config.StatusEvery) != 0 {
		return
	}

	fields := []zap.Field{
		zap.Uint64("tick", n),
		zap.String("worker_state", c.worker.State().String()),
	}
	if c.stats != nil {
		s := c.stats.Stats()
		fields = append(fields,
			zap.Uint64("published", s.Published),
			zap.Uint64("taken", s.Taken),
			zap.Uint64("overwritten", s.Overwritten),
			zap.Bool("pending", s.Pending),
		)
	}
	c.logger.Debug("status", fields...)
}
