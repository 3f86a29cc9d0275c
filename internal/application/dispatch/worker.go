package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/domain/command"
)

// State is the worker's position in its Idle → Executing → Idle cycle.
type State int32

const (
	StateNotStarted State = iota
	StateIdle
	StateExecuting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	// PollInterval bounds how long the worker sleeps without a publish.
	PollInterval time.Duration
	// ExecuteTimeout limits a single Gateway.Execute call. Zero means no
	// limit.
	ExecuteTimeout time.Duration
}

// DefaultWorkerConfig returns default configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:   30 * time.Second,
		ExecuteTimeout: 0,
	}
}

// WorkerOption configures optional Worker collaborators.
type WorkerOption func(*Worker)

// WithObserver registers an observer for execution results.
func WithObserver(o ResultObserver) WorkerOption {
	return func(w *Worker) {
		w.observers = append(w.observers, o)
	}
}

// WithWorkerMetrics sets the metrics sink.
func WithWorkerMetrics(m Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithTracer overrides the tracer used for execution spans.
func WithTracer(t trace.Tracer) WorkerOption {
	return func(w *Worker) {
		w.tracer = t
	}
}

// Worker is the single consumer of a Channel. It executes each command it
// takes against the Gateway, one at a time.
type Worker struct {
	channel   *Channel
	gateway   Gateway
	reporter  FailureReporter
	observers []ResultObserver
	metrics   Metrics
	tracer    trace.Tracer
	config    WorkerConfig
	logger    *zap.Logger

	state   atomic.Int32
	started atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWorker creates a worker consuming channel.
func NewWorker(
	channel *Channel,
	gateway Gateway,
	reporter FailureReporter,
	config WorkerConfig,
	logger *zap.Logger,
	opts ...WorkerOption,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWorkerConfig().PollInterval
	}
	logger = logger.Named("worker")
	if reporter == nil {
		reporter = logReporter{logger: logger}
	}
	w := &Worker{
		channel:  channel,
		gateway:  gateway,
		reporter: reporter,
		metrics:  nopMetrics{},
		tracer:   otel.Tracer("github.com/tallyzap/inventory/dispatch"),
		config:   config,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current worker state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Start launches the worker goroutine. It may be called only once.
func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrWorkerStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.state.Store(int32(StateIdle))

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("worker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Duration("execute_timeout", w.config.ExecuteTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for it to exit. A command already being
// executed runs to completion first.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("worker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	defer w.state.Store(int32(StateStopped))

	for {
		reason := w.channel.AwaitSignalOrTimeout(ctx, w.config.PollInterval)
		if reason == WakeCancelled {
			return
		}

		cmd, ok := w.channel.TakeIfPresent()
		if !ok {
			if reason == WakeTimedOut {
				w.logger.Debug("poll interval elapsed with nothing pending")
			}
			continue
		}
		w.execute(ctx, cmd)
	}
}

func (w *Worker) execute(ctx context.Context, cmd command.Command) {
	w.state.Store(int32(StateExecuting))
	defer w.state.Store(int32(StateIdle))

	// Stopping the worker must not abort the command in hand.
	execCtx := context.WithoutCancel(ctx)
	if w.config.ExecuteTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(execCtx, w.config.ExecuteTimeout)
		defer cancel()
	}

	execCtx, span := w.tracer.Start(execCtx, "dispatch.execute",
		trace.WithAttributes(
			attribute.String("command.id", cmd.ID.String()),
			attribute.String("command.action", cmd.Action.String()),
		),
	)

	start := time.Now()
	err := w.safeExecute(execCtx, cmd)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.report(fmt.Sprintf("execute %q (command %s)", cmd.Action.String(), cmd.ID), err)
	} else {
		w.logger.Debug("command executed",
			zap.String("command_id", cmd.ID.String()),
			zap.String("action", cmd.Action.String()),
			zap.Duration("elapsed", elapsed),
		)
	}
	span.End()

	w.metrics.CommandExecuted(cmd.Action, elapsed, err)
	w.notify(Result{
		Command:     cmd,
		Err:         err,
		Duration:    elapsed,
		CompletedAt: time.Now(),
	})
}

// safeExecute converts a gateway panic into an error.
func (w *Worker) safeExecute(ctx context.Context, cmd command.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutionPanicked, r)
		}
	}()
	return w.gateway.Execute(ctx, cmd)
}

// report hands a failure to the reporter. A panicking reporter is logged
// and otherwise ignored.
func (w *Worker) report(context string, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("failure reporter panicked",
				zap.String("context", context),
				zap.Error(err),
				zap.Any("panic", r),
			)
		}
	}()
	w.reporter.ReportFailure(context, err)
}

func (w *Worker) notify(result Result) {
	for _, o := range w.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("result observer panicked",
						zap.String("command_id", result.Command.ID.String()),
						zap.Any("panic", r),
					)
				}
			}()
			o.CommandCompleted(result)
		}()
	}
}
