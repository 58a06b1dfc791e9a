package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 100*time.Millisecond)
	query := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("fast query is not logged at warn level", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), query, nil)
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("slow query is logged as warning", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-7")
		gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)
		require.Equal(t, 1, recorded.Len())
		entry := recorded.TakeAll()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "req-7", entry.ContextMap()["request_id"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("errors are logged", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), query, errors.New("boom"))
		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, zapcore.ErrorLevel, recorded.TakeAll()[0].Level)
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), query, errors.New("boom"))
		assert.Equal(t, 0, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
