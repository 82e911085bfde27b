package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Millisecond, cfg.IdleTimeout())
	assert.Equal(t, "warn", cfg.LogLevel())
	assert.Equal(t, "", cfg.Encoding())
	require.NoError(t, cfg.validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COPYDATA_IDLE_TIMEOUT", "25ms")
	t.Setenv("COPYDATA_LOG_LEVEL", "DEBUG")
	t.Setenv("COPYDATA_ENCODING", "latin1")

	cfg := &Config{}
	require.NoError(t, cfg.Load())
	assert.Equal(t, 25*time.Millisecond, cfg.IdleTimeout())
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, "latin1", cfg.Encoding())
	assert.Contains(t, cfg.AllSettings(), ConfigIdleTimeout)
}

func TestLoadWithoutEnvironment(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Load())
	assert.Equal(t, 10*time.Millisecond, cfg.IdleTimeout())
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"COPYDATA_IDLE_TIMEOUT", "0s"},
		{"COPYDATA_IDLE_TIMEOUT", "-5ms"},
		{"COPYDATA_IDLE_TIMEOUT", "10"},
		{"COPYDATA_IDLE_TIMEOUT", "soon"},
		{"COPYDATA_LOG_LEVEL", "loud"},
		{"COPYDATA_ENCODING", "ebcdic-klingon"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			cfg := &Config{}
			err := cfg.Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
