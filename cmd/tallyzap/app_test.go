package main

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyzap/inventory/internal/domain/command"
	"github.com/tallyzap/inventory/internal/infrastructure/config"
	"github.com/tallyzap/inventory/internal/infrastructure/persistence/models"
)

func testConfig(t *testing.T, mode string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{Name: "tallyzap", Env: "test"},
		Database: config.DatabaseConfig{
			Driver:          config.DriverSQLite,
			Path:            filepath.Join(dir, "tallyzap.db"),
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 60,
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "console",
			Output: filepath.Join(dir, "tallyzap.log"),
		},
		Worker:  config.WorkerConfig{PollInterval: 20 * time.Millisecond},
		Control: config.ControlConfig{TickInterval: 10 * time.Millisecond},
		View: config.ViewConfig{
			Mode:        mode,
			Addr:        "127.0.0.1:0",
			RecentLimit: 10,
		},
		Telemetry: config.TelemetryConfig{ServiceName: "tallyzap-test"},
	}
}

// gatedReader returns its lines, then blocks until released or closed and
// finally reports "exit".
type gatedReader struct {
	mu      sync.Mutex
	lines   []string
	release chan struct{}
	once    sync.Once
}

func newGatedReader(lines ...string) *gatedReader {
	return &gatedReader{lines: lines, release: make(chan struct{})}
}

func (r *gatedReader) Readline() (string, error) {
	r.mu.Lock()
	if len(r.lines) > 0 {
		line := r.lines[0]
		r.lines = r.lines[1:]
		r.mu.Unlock()
		return line, nil
	}
	r.mu.Unlock()
	<-r.release
	return "exit", nil
}

func (r *gatedReader) Close() error {
	r.once.Do(func() { close(r.release) })
	return nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func countCustomers(t *testing.T, a *app) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.DB.Model(&models.Customer{}).Count(&n).Error)
	return n
}

func TestApp_ConsoleExitStopsEverything(t *testing.T) {
	reader := newGatedReader("add customer; id=C1; name=Acme")
	out := &syncBuffer{}
	a, err := newApp(context.Background(), testConfig(t, config.ViewModeConsole), reader, out)
	require.NoError(t, err)
	defer a.Close()

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	require.Eventually(t, func() bool { return a.history.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), countCustomers(t, a))

	// The next read returns "exit".
	_ = reader.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after exit")
	}
	assert.True(t, a.controller.ShutdownRequested())
	assert.Contains(t, out.String(), "queued add customer")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestApp_WebSubmitAndCancel(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t, config.ViewModeWeb), nil, nil)
	require.NoError(t, err)
	defer a.Close()
	require.Nil(t, a.console)
	require.NotNil(t, a.server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.server.Addr() != "" }, 2*time.Second, 5*time.Millisecond)

	resp, err := http.Post("http://"+a.server.Addr()+"/api/v1/commands", "application/json",
		strings.NewReader(`{"action":"add customer","params":{"id":"W1","name":"Web Co"}}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool { return countCustomers(t, a) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop on cancel")
	}
}

func TestApp_FailedCommandIsReportedNotFatal(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t, config.ViewModeWeb), nil, nil)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	a.dispatcher.Submit(command.ActionAddCustomer, map[string]string{"name": "missing id"})
	require.Eventually(t, func() bool { return a.history.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, a.history.Recent(1)[0].Succeeded())

	cancel()
	require.NoError(t, <-done)
}

func TestNewApp_InvalidDatabase(t *testing.T) {
	cfg := testConfig(t, config.ViewModeWeb)
	cfg.Database.Path = filepath.Join(t.TempDir(), "missing", "dir", "tallyzap.db")

	_, err := newApp(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}
