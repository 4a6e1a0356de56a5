package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: s3cret\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "localhost:4001", cfg.Address)
	assert.Equal(t, 3, cfg.Board.RetryAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.Board.RetryBackoff)
	assert.Equal(t, time.Second, cfg.Board.LedgerExpiry)
	assert.Equal(t, "@every 5m", cfg.Board.ConsolidateCron)
	assert.Equal(t, 5*time.Second, cfg.Board.OffDayMaxAge)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Len(t, cfg.RosterOrDefault().Teams, 4)
}

func TestLoad_RosterOverride(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s3cret
roster:
  teams:
    - name: Ops
      label: Operations
      start_hour: 8
      block_count: 20
      members:
        - name: Kim
          shift: {start: 16, end: 34}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	roster := cfg.RosterOrDefault()
	require.Len(t, roster.Teams, 1)
	assert.Equal(t, "Ops", roster.Teams[0].Name)
	assert.Equal(t, 34, roster.Window("Kim").End)
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "env: local\n"))
	assert.Error(t, err)
}
