/*
config_test.go - Unit tests for YAML configuration loading
*/
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/account-pool/config"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.SingleCooldown.Std())
	assert.Equal(t, 20*time.Second, cfg.PackCooldown.Std())
	assert.Equal(t, time.Minute, cfg.PanelInterval.Std())
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: 3000\nsingle_cooldown: 30s\nwebhook_url: http://localhost:9090\n",
	), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SingleCooldown.Std())
	assert.Equal(t, "http://localhost:9090", cfg.WebhookURL)

	// Fields the file omits keep their defaults
	assert.Equal(t, 20*time.Second, cfg.PackCooldown.Std())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("single_cooldown: banana\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
