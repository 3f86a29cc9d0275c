package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans
	SlowQueryThresh time.Duration // queries slower than this are flagged on their span
	DBSystem        string
	TracerProvider  trace.TracerProvider // nil means the global provider
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}
}

// DBTracingPlugin wraps otelgorm with slow query flagging.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs otelgorm on db, plus callbacks that time each
// statement and flag slow ones on the still-open span.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
		otelgorm.WithoutMetrics(),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

// registerCallbacks hooks timing around every statement kind. The after
// hook runs before otelgorm ends the span.
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	kinds := []struct {
		name      string
		before    func() error
		afterSlow func() error
	}{
		{"create",
			func() error { return cb.Create().Before("gorm:create").Register("tallyzap:start:create", markStart) },
			func() error {
				return cb.Create().After("gorm:create").Before("otel:after:create").Register("tallyzap:slow:create", p.flagSlow)
			}},
		{"query",
			func() error { return cb.Query().Before("gorm:query").Register("tallyzap:start:query", markStart) },
			func() error {
				return cb.Query().After("gorm:query").Before("otel:after:select").Register("tallyzap:slow:query", p.flagSlow)
			}},
		{"update",
			func() error { return cb.Update().Before("gorm:update").Register("tallyzap:start:update", markStart) },
			func() error {
				return cb.Update().After("gorm:update").Before("otel:after:update").Register("tallyzap:slow:update", p.flagSlow)
			}},
		{"delete",
			func() error { return cb.Delete().Before("gorm:delete").Register("tallyzap:start:delete", markStart) },
			func() error {
				return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("tallyzap:slow:delete", p.flagSlow)
			}},
		{"row",
			func() error { return cb.Row().Before("gorm:row").Register("tallyzap:start:row", markStart) },
			func() error {
				return cb.Row().After("gorm:row").Before("otel:after:row").Register("tallyzap:slow:row", p.flagSlow)
			}},
		{"raw",
			func() error { return cb.Raw().Before("gorm:raw").Register("tallyzap:start:raw", markStart) },
			func() error {
				return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("tallyzap:slow:raw", p.flagSlow)
			}},
	}

	for _, k := range kinds {
		if err := k.before(); err != nil {
			return err
		}
		if err := k.afterSlow(); err != nil {
			return err
		}
	}
	return nil
}

// flagSlow marks the current span when the statement exceeded the threshold.
func (p *DBTracingPlugin) flagSlow(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	elapsed, ok := sinceStart(ctx)
	if !ok || elapsed <= p.config.SlowQueryThresh {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
	span.AddEvent("slow_query_warning", trace.WithAttributes(
		attribute.Int64("duration_ms", elapsed.Milliseconds()),
		attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
	))
}

type contextKey string

const queryStartTimeKey contextKey = "tallyzap_query_start_time"

// markStart stores the statement start time on its context.
func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = WithQueryStartTime(db.Statement.Context)
	}
}

// WithQueryStartTime returns a context with the query start time set.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

func sinceStart(ctx context.Context) (time.Duration, bool) {
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
