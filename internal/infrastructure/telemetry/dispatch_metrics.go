package telemetry

import (
	"context"
	"time"

	"github.com/tallyzap/inventory/internal/domain/command"
	"go.opentelemetry.io/otel/metric"
)

// Outcome attribute values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// DispatchMetrics records command handoff and execution. It satisfies the
// dispatch package's Metrics interface.
type DispatchMetrics struct {
	published *Counter
	executed  *Counter
	duration  *Histogram
}

// NewDispatchMetrics registers the dispatch instruments on meter.
func NewDispatchMetrics(meter metric.Meter) (*DispatchMetrics, error) {
	published, err := NewCounter(meter,
		"tallyzap.commands.published",
		"Commands handed to the persistence worker",
		"{command}",
	)
	if err != nil {
		return nil, err
	}

	executed, err := NewCounter(meter,
		"tallyzap.commands.executed",
		"Commands the persistence worker has executed",
		"{command}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "tallyzap.command.duration",
		Description: "Time spent executing one command",
		Unit:        "s",
		Boundaries:  CommandDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &DispatchMetrics{
		published: published,
		executed:  executed,
		duration:  duration,
	}, nil
}

// CommandPublished counts one publish. replaced is true when it overwrote a
// command the worker never saw.
func (m *DispatchMetrics) CommandPublished(action command.Action, replaced bool) {
	m.published.Inc(context.Background(),
		AttrAction.String(action.String()),
		AttrReplaced.Bool(replaced),
	)
}

// CommandExecuted counts one execution and records how long it took.
func (m *DispatchMetrics) CommandExecuted(action command.Action, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	ctx := context.Background()
	m.executed.Inc(ctx, AttrAction.String(action.String()), AttrOutcome.String(outcome))
	m.duration.RecordDuration(ctx, elapsed, AttrAction.String(action.String()))
}
