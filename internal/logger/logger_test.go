package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dom/cyprine-heroes/internal/config"
	"github.com/dom/cyprine-heroes/internal/logger"
)

func TestNew_WritesToOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "server.log")

	log, err := logger.New(config.LoggerConfig{Level: "warn", Format: "json", Output: out})
	require.NoError(t, err)

	log.Infow("dropped")
	log.Warnw("kept", "heroID", "h1")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), `"heroID":"h1"`)
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := logger.New(config.LoggerConfig{Level: tt.level, Format: "console", Output: filepath.Join(t.TempDir(), "x.log")})
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.Level())
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logger.OrNop(nil))
	l := logger.Nop()
	assert.Same(t, l, logger.OrNop(l))
}
