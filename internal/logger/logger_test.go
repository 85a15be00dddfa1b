package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/math-tycoon/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:       dir,
			Filename:   "test.log",
			MaxSize:    1,
			MaxAge:     1,
			MaxBackups: 1,
		},
		Modules: map[string]string{"ledger": "error"},
	}
	require.NoError(t, build(cfg))

	LogGameEvent("turn_advance", "g-1", map[string]interface{}{"next": "AI"})
	Info("玩家购买地产")
	Infof("监听 %s", "127.0.0.1:8080")
	Warnf("重载失败: %v", "bad level")
	Cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "玩家购买地产")
	assert.Contains(t, string(data), "turn_advance")
	assert.Contains(t, string(data), "监听 127.0.0.1:8080")
	assert.Contains(t, string(data), "重载失败: bad level")

	// 模块日志器只在配置了的模块上单独生效
	assert.False(t, GetModuleLogger("ledger").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, GetModuleLogger("game").Core().Enabled(zapcore.DebugLevel))
}
