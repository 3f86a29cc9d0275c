package dispatch

import "errors"

var (
	// ErrWorkerStarted is returned when Start is called more than once.
	ErrWorkerStarted = errors.New("dispatch: worker already started")
	// ErrExecutionPanicked wraps a panic raised while executing a command.
	ErrExecutionPanicked = errors.New("dispatch: execution panicked")
)
