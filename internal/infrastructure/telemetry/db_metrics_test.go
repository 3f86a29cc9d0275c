package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestDBMetricsPlugin(t *testing.T) {
	reader, mp := newManualMeter(t)
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	metrics, err := NewDBMetrics(mp.Meter("db.client"), sqlDB, time.Nanosecond)
	require.NoError(t, err)
	require.NoError(t, db.Use(NewDBMetricsPlugin(metrics, zap.NewNop())))

	require.NoError(t, db.Create(&sample{Name: "rack"}).Error)
	var got []sample
	require.NoError(t, db.Find(&got).Error)
	require.NoError(t, db.Exec("UPDATE samples SET name = ?", "bin").Error)

	collected := collect(t, reader)
	total := collected["db_query_total"]
	assert.Equal(t, int64(1), sumFor(total, map[string]string{"db.operation": "INSERT"}))
	assert.Equal(t, int64(1), sumFor(total, map[string]string{"db.operation": "SELECT"}))
	assert.Equal(t, int64(1), sumFor(total, map[string]string{"db.operation": "UPDATE"}))

	// Every query beats a one nanosecond threshold.
	assert.Equal(t, int64(3), sumFor(collected["db_slow_query_total"], nil))

	pool, ok := collected["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, pool.DataPoints, 2)
}

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"select * from x":     "SELECT",
		"  INSERT INTO x":     "INSERT",
		"update x set a = 1":  "UPDATE",
		"DELETE FROM x":       "DELETE",
		"PRAGMA foreign_keys": "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}
