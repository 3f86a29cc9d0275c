package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/domain/command"
)

// Gateway executes a command against the data store.
type Gateway interface {
	Execute(ctx context.Context, cmd command.Command) error
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, cmd command.Command) error

// Execute calls f(ctx, cmd).
func (f GatewayFunc) Execute(ctx context.Context, cmd command.Command) error {
	return f(ctx, cmd)
}

// FailureReporter receives execution failures from the worker goroutine.
// Implementations must not panic.
type FailureReporter interface {
	ReportFailure(context string, err error)
}

// logReporter is the FailureReporter used when none is supplied.
type logReporter struct {
	logger *zap.Logger
}

func (r logReporter) ReportFailure(context string, err error) {
	r.logger.Error("command failed", zap.String("context", context), zap.Error(err))
}

// Result describes one finished execution.
type Result struct {
	Command     command.Command
	Err         error
	Duration    time.Duration
	CompletedAt time.Time
}

// Succeeded reports whether the execution returned no error.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// ResultObserver is notified on the worker goroutine after every execution.
// Implementations must be safe for concurrent use and return quickly.
type ResultObserver interface {
	CommandCompleted(result Result)
}

// Metrics records dispatch activity.
type Metrics interface {
	CommandPublished(action command.Action, replaced bool)
	CommandExecuted(action command.Action, elapsed time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) CommandPublished(command.Action, bool)                 {}
func (nopMetrics) CommandExecuted(command.Action, time.Duration, error) {}
