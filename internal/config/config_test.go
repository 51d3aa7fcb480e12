package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, 2*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.Engine.PollTimeout)
	assert.Equal(t, int64(1000), cfg.Relay.MinBytes)
	assert.Equal(t, []string{"ytdlp-mobile", "cobalt", "piped", "ytdlp-insecure"}, cfg.Relay.Strategies)
	assert.Equal(t, 6*time.Hour, cfg.Redis.LinkTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RELAY_STRATEGIES", " cobalt , ytdlp-mobile,,")
	t.Setenv("ENGINE_RETRY_DELAY", "250ms")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"cobalt", "ytdlp-mobile"}, cfg.Relay.Strategies)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("ENGINE_POLL_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "ENGINE_POLL_TIMEOUT")
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Relay.Strategies = []string{"ytdlp-mobile", "carrier-pigeon"}
	cfg.Retry.Multiplier = 1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown relay strategy "carrier-pigeon"`)
	assert.Contains(t, err.Error(), "ENGINE_RETRY_MULTIPLIER")
}
