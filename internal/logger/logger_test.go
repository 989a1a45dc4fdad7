package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/abacus/internal/config"
)

func TestSetupLogger_FileOutput(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Service.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Logging.Output = []string{"file"}
	cfg.Logging.Level = "debug"

	logger := SetupLogger(cfg)
	require.NotNil(t, logger)
	assert.NotNil(t, GetLogger())
	assert.DirExists(t, cfg.LogPath())

	logger.Info().Str("test", "file").Msg("hello")
	Stop()
}

func TestSetLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	SetupLogger(cfg)

	logger := SetLevel("warn")
	require.NotNil(t, logger)
	logger.Warn().Msg("level changed")
}
