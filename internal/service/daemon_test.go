package service

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/abacus/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Service.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Service.Port = 0
	return cfg
}

func TestDaemon_StartStop(t *testing.T) {
	cfg := testConfig(t)
	d := NewDaemon(cfg, arbor.NewLogger())

	require.NoError(t, d.Start(http.NotFoundHandler()))
	assert.FileExists(t, cfg.PIDPath())

	running, pid := IsRunning(cfg)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	assert.Error(t, d.Start(http.NotFoundHandler()), "second start must fail")

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	d.Stop()
	<-done

	assert.NoFileExists(t, cfg.PIDPath())
}

func TestIsRunning_NoPIDFile(t *testing.T) {
	running, pid := IsRunning(testConfig(t))
	assert.False(t, running)
	assert.Zero(t, pid)
}

func TestIsRunning_GarbagePIDFile(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Service.DataDir, 0755))
	require.NoError(t, os.WriteFile(cfg.PIDPath(), []byte("not-a-pid"), 0644))

	running, _ := IsRunning(cfg)
	assert.False(t, running)
}

func TestStopRunning_NotRunning(t *testing.T) {
	assert.Error(t, StopRunning(testConfig(t)))
}
