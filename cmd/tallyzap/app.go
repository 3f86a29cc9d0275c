package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/tallyzap/inventory/internal/application/controller"
	"github.com/tallyzap/inventory/internal/application/dispatch"
	"github.com/tallyzap/inventory/internal/infrastructure/config"
	"github.com/tallyzap/inventory/internal/infrastructure/logger"
	"github.com/tallyzap/inventory/internal/infrastructure/migration"
	"github.com/tallyzap/inventory/internal/infrastructure/persistence"
	"github.com/tallyzap/inventory/internal/infrastructure/telemetry"
	"github.com/tallyzap/inventory/internal/interfaces/console"
	"github.com/tallyzap/inventory/internal/interfaces/http/router"
)

// telemetryShutdownTimeout bounds the final flush of exporters.
const telemetryShutdownTimeout = 5 * time.Second

func runApp(ctx context.Context, configPath, mode string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	switch mode {
	case "":
	case config.ViewModeConsole, config.ViewModeWeb, config.ViewModeBoth:
		cfg.View.Mode = mode
	default:
		return fmt.Errorf("unknown view mode %q", mode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

// shutdownFunc lets the console view reach the controller before it exists.
type shutdownFunc func()

func (f shutdownFunc) RequestShutdown() { f() }

// app owns every long-lived component of a running process.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	telemetry  *telemetry.Providers
	db         *persistence.Database
	channel    *dispatch.Channel
	worker     *dispatch.Worker
	dispatcher *dispatch.Dispatcher
	history    *dispatch.History
	controller *controller.Controller
	console    *console.View
	reader     console.LineReader
	server     *router.Server
}

// newApp wires the components described by cfg. When input is nil and the
// console view is enabled, an interactive readline reader is created and
// out is ignored.
func newApp(ctx context.Context, cfg *config.Config, input console.LineReader, out io.Writer) (_ *app, err error) {
	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		MaxFileSize: cfg.Log.MaxFileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.telemetry, err = telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}
	level, lerr := zapcore.ParseLevel(cfg.Log.Level)
	if lerr != nil {
		level = zapcore.WarnLevel
	}
	a.log = a.telemetry.BridgeLogger(log, level)

	a.log.Info("Starting TallyZap",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver),
		zap.String("view_mode", cfg.View.Mode),
	)

	if err := a.openDatabase(); err != nil {
		return nil, err
	}

	if err := a.buildDispatch(input, out); err != nil {
		return nil, err
	}

	if cfg.View.Mode == config.ViewModeWeb || cfg.View.Mode == config.ViewModeBoth {
		if err := a.buildServer(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openDatabase() error {
	gormLog := logger.NewGormLogger(a.log, logger.MapGormLogLevel(a.cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&a.cfg.Database, gormLog)
	if err != nil {
		return err
	}
	a.db = db

	if a.cfg.Database.AutoMigrate || a.cfg.Database.Driver == config.DriverSQLite {
		if err := a.migrate(); err != nil {
			return err
		}
	}

	if err := a.telemetry.InstrumentDB(db.DB, a.cfg.Database.Driver); err != nil {
		return fmt.Errorf("instrument database: %w", err)
	}
	a.log.Info("Database connected successfully")
	return nil
}

// migrate brings the schema up to date. SQLite uses the model definitions;
// Postgres applies the versioned migrations over a dedicated connection.
func (a *app) migrate() error {
	if a.cfg.Database.Driver == config.DriverSQLite {
		return a.db.AutoMigrate()
	}

	sqlDB, err := sql.Open("postgres", a.cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	m, err := migration.New(sqlDB, a.log.Named("migrate"))
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			a.log.Warn("Error closing migrator", zap.Error(cerr))
		}
	}()
	return m.Up()
}

func (a *app) buildDispatch(input console.LineReader, out io.Writer) error {
	metrics, err := a.telemetry.DispatchMetrics()
	if err != nil {
		return fmt.Errorf("dispatch metrics: %w", err)
	}

	a.channel = dispatch.NewChannel()
	a.history = dispatch.NewHistory(a.cfg.View.RecentLimit)
	a.dispatcher = dispatch.NewDispatcher(a.channel, a.log, dispatch.WithDispatcherMetrics(metrics))

	opts := []dispatch.WorkerOption{
		dispatch.WithObserver(a.history),
		dispatch.WithWorkerMetrics(metrics),
		dispatch.WithTracer(a.telemetry.Tracer.Tracer("github.com/tallyzap/inventory/dispatch")),
	}

	if a.cfg.View.Mode == config.ViewModeConsole || a.cfg.View.Mode == config.ViewModeBoth {
		if out == nil {
			out = os.Stdout
		}
		if input == nil {
			rl, err := console.NewReadline(console.ReadlineConfig{HistoryFile: a.cfg.View.HistoryFile})
			if err != nil {
				return fmt.Errorf("initialize console: %w", err)
			}
			input, out = rl, rl.Stdout()
		}
		a.reader = input
		a.console = console.New(input, out, a.dispatcher, shutdownFunc(func() {
			a.controller.RequestShutdown()
		}), a.log)
		opts = append(opts, dispatch.WithObserver(a.console))
	}

	a.worker = dispatch.NewWorker(
		a.channel,
		persistence.NewGateway(a.db, a.log),
		logger.NewFailureReporter(a.log),
		dispatch.WorkerConfig{
			PollInterval:   a.cfg.Worker.PollInterval,
			ExecuteTimeout: a.cfg.Worker.ExecuteTimeout,
		},
		a.log,
		opts...,
	)

	ctrlCfg := controller.DefaultConfig()
	ctrlCfg.TickInterval = a.cfg.Control.TickInterval
	a.controller = controller.New(a.worker, a.channel, ctrlCfg, a.log)
	return nil
}

func (a *app) buildServer() error {
	tel := a.telemetry
	engineCfg := router.EngineConfig{
		ServiceName:    a.cfg.Telemetry.ServiceName,
		RecentLimit:    a.cfg.View.RecentLimit,
		Tracing:        tel.Tracer.IsEnabled(),
		TracerProvider: tel.Tracer.Provider(),
	}
	if tel.Meter.IsEnabled() {
		engineCfg.Meter = tel.Meter.Meter("github.com/tallyzap/inventory/http")
	}

	engine, err := router.NewEngine(engineCfg, router.Dependencies{
		Submitter: a.dispatcher,
		History:   a.history,
		Worker:    a.worker,
		Channel:   a.channel,
	}, a.log)
	if err != nil {
		return fmt.Errorf("build web view: %w", err)
	}
	a.server = router.NewServer(router.DefaultServerConfig(a.cfg.View.Addr), engine, a.log)
	return nil
}

// Run blocks until the controller finishes. The views are stopped once it
// does; a failing view stops the controller.
func (a *app) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.controller.Run(gctx)
	})
	if a.console != nil {
		g.Go(func() error {
			return a.console.Run(gctx)
		})
	}
	if a.server != nil {
		g.Go(func() error {
			return a.server.Run(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.log.Info("TallyZap stopped", zap.Uint64("ticks", a.controller.Ticks()))
	return err
}

// Close releases everything newApp acquired. It is safe on a partially
// built app.
func (a *app) Close() {
	if a.reader != nil {
		_ = a.reader.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("Error closing database", zap.Error(err))
		}
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = logger.Sync(a.log)
}
