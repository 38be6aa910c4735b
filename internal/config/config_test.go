package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, "Knight", cfg.DefaultDefence)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CRCALC_PORT", "9000")
	t.Setenv("CRCALC_DB_PATH", "/tmp/x.db")
	t.Setenv("CRCALC_SESSION_IDLE", "5m")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr())
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdle)

	t.Setenv("PORT", "7000")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CRCALC_SESSION_IDLE", "soon")
	_, err := Load()
	assert.Error(t, err)
}
