package dispatch

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/domain/command"
)

// Publisher accepts commands for the worker. *Channel implements it.
type Publisher interface {
	Publish(cmd command.Command) (replaced bool)
}

// DispatcherOption configures optional Dispatcher collaborators.
type DispatcherOption func(*Dispatcher)

// WithDispatcherMetrics sets the metrics sink.
func WithDispatcherMetrics(m Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// Dispatcher turns view actions into commands and publishes them. Submit is
// safe to call from any goroutine and never waits for execution.
type Dispatcher struct {
	publisher Publisher
	metrics   Metrics
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher publishing to publisher.
func NewDispatcher(publisher Publisher, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		publisher: publisher,
		metrics:   nopMetrics{},
		logger:    logger.Named("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit publishes action with a copy of params and returns the new
// command's id. A command still pending from an earlier Submit is replaced.
func (d *Dispatcher) Submit(action command.Action, params map[string]string) uuid.UUID {
	cmd := command.New(action, params)
	replaced := d.publisher.Publish(cmd)

	d.metrics.CommandPublished(action, replaced)
	if replaced {
		d.logger.Warn("pending command replaced before pickup",
			zap.String("command_id", cmd.ID.String()),
			zap.String("action", action.String()),
		)
	} else {
		d.logger.Debug("command submitted",
			zap.String("command_id", cmd.ID.String()),
			zap.String("action", action.String()),
		)
	}
	return cmd.ID
}

// SubmitNamed parses name and submits it. Nothing is published when name is
// not a known action.
func (d *Dispatcher) SubmitNamed(name string, params map[string]string) (uuid.UUID, error) {
	action, err := command.ParseAction(name)
	if err != nil {
		return uuid.Nil, err
	}
	return d.Submit(action, params), nil
}
