package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tallyzap/inventory/internal/infrastructure/logger"
	"github.com/tallyzap/inventory/internal/interfaces/http/handler"
	"github.com/tallyzap/inventory/internal/interfaces/http/middleware"
)

// Dependencies are the collaborators the web view serves.
type Dependencies struct {
	Submitter handler.CommandSubmitter
	History   handler.ResultHistory
	Worker    handler.WorkerStatus
	Channel   handler.ChannelStatus
}

// EngineConfig configures the gin engine.
type EngineConfig struct {
	ServiceName    string
	RecentLimit    int
	MaxBodyBytes   int64
	Tracing        bool
	TracerProvider trace.TracerProvider
	// Meter enables request metrics when set.
	Meter metric.Meter
}

// NewEngine builds the web view engine with every route registered.
func NewEngine(cfg EngineConfig, deps Dependencies, log *zap.Logger) (*gin.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	metricsMW, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.Tracing,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.SpanEnricher(),
		metricsMW,
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)

	health := handler.NewHealthHandler(deps.Worker, deps.Channel)
	engine.GET("/health", health.Health)

	NewRouter(engine).
		Register(handler.NewCommandHandler(deps.Submitter, deps.History, cfg.RecentLimit)).
		Setup()

	return engine, nil
}
