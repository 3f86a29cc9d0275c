package telemetry

import (
	"context"
	"errors"

	"github.com/tallyzap/inventory/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// Providers bundles the three OpenTelemetry providers.
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logs   *LoggerProvider
	cfg    config.TelemetryConfig
	logger *zap.Logger
}

// Setup creates the providers described by cfg. Every provider is a no-op
// when cfg.Enabled is false.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	tp, err := NewTracerProvider(ctx, Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, err
	}

	mp, err := NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.ExportInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.Enabled && cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		_ = mp.Shutdown(ctx)
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return &Providers{Tracer: tp, Meter: mp, Logs: lp, cfg: cfg, logger: logger}, nil
}

// BridgeLogger returns logger extended to export through the logs provider.
func (p *Providers) BridgeLogger(logger *zap.Logger, level zapcore.Level) *zap.Logger {
	return p.Logs.Bridge(logger, level)
}

// InstrumentDB installs tracing and metrics plugins on db as configured.
func (p *Providers) InstrumentDB(db *gorm.DB, dbSystem string) error {
	if !p.cfg.Enabled {
		return nil
	}

	if p.cfg.DBTracing {
		tracingCfg := DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.DBSystem = dbSystem
		tracingCfg.TracerProvider = p.Tracer.Provider()
		if err := NewDBTracingPlugin(tracingCfg, p.logger).RegisterOtelGorm(db); err != nil {
			return err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	metrics, err := NewDBMetrics(p.Meter.Meter("db.client"), sqlDB, 0)
	if err != nil {
		return err
	}
	return db.Use(NewDBMetricsPlugin(metrics, p.logger))
}

// DispatchMetrics builds the dispatch instruments on the configured meter.
func (p *Providers) DispatchMetrics() (*DispatchMetrics, error) {
	return NewDispatchMetrics(p.Meter.Meter("github.com/tallyzap/inventory/dispatch"))
}

// Shutdown stops every provider, returning all errors joined.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Logs.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Tracer.Shutdown(ctx),
	)
}
