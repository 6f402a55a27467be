package logs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dusk-indust/unitymerge/internal/config"
)

func TestUse_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	t.Cleanup(func() { Use(nil) })

	Warn("scene: dangling reference", zap.Int64("target", 42))
	Debug("debug line")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "scene: dangling reference", entry.Message)
	assert.Equal(t, int64(42), entry.ContextMap()["target"])
}

func TestInit_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merge.log")
	require.NoError(t, Init("unitymerge", config.LogConfig{Level: "info", File: path}))
	t.Cleanup(func() { Use(nil) })

	Info("orchestrator: merge finished", zap.Int("conflicts", 3))
	Debug("filtered out")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"orchestrator: merge finished"`)
	assert.Contains(t, string(data), `"conflicts":3`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestInit_BadLevelFallsBack(t *testing.T) {
	require.NoError(t, Init("unitymerge", config.LogConfig{Level: "chatty"}))
	t.Cleanup(func() { Use(nil) })
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
