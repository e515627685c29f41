package util

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NotNil(t, GetLogger())
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, GetTracer())
			_, span := StartSpan(context.Background(), "concurrent")
			span.End()
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, InitLogger("test", "warn"))
	}()
	wg.Wait()

	SyncLogger()
}

func TestInitLoggerLevel(t *testing.T) {
	require.NoError(t, InitLogger("production", "error"))
	assert.False(t, GetLogger().Core().Enabled(zapcore.WarnLevel))
	assert.True(t, GetLogger().Core().Enabled(zapcore.ErrorLevel))

	require.NoError(t, InitLogger("development", "not-a-level"))
	assert.True(t, GetLogger().Core().Enabled(zapcore.DebugLevel), "unknown level keeps the default")
}
