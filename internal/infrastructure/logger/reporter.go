package logger

import (
	"go.uber.org/zap"
)

// FailureReporter writes worker failures to a zap logger.
type FailureReporter struct {
	logger *zap.Logger
}

// NewFailureReporter creates a FailureReporter. A nil logger discards
// reports.
func NewFailureReporter(logger *zap.Logger) *FailureReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailureReporter{logger: logger.Named("failures")}
}

// ReportFailure logs err at error level under the given context. It never
// panics; a failing log sink drops the report.
func (r *FailureReporter) ReportFailure(context string, err error) {
	defer func() { _ = recover() }()
	r.logger.Error("command failed",
		zap.String("context", context),
		zap.Error(err),
	)
}
