package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "s2t/internal/app/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1024*1024, cfg.Upload.ChunkSize)
	assert.Equal(t, ".wav", cfg.Upload.Extension)
	assert.Equal(t, "stop", cfg.Live.Keyword)
	assert.Equal(t, 500*time.Millisecond, cfg.Live.CalibrationDuration)
	assert.Equal(t, "openai", cfg.Recognition.Provider)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s2t.yaml")
	content := `
server:
  port: "9000"
  environment: production
upload:
  chunk_size: 4096
live:
  keyword: halt
  listen_timeout: 2s
recognition:
  provider: whisper_server
  providers:
    whisper_server:
      base_url: ${TEST_WHISPER_HOST}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("TEST_WHISPER_HOST", "http://whisper.local:8080")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, 4096, cfg.Upload.ChunkSize)
	assert.Equal(t, "halt", cfg.Live.Keyword)
	assert.Equal(t, 2*time.Second, cfg.Live.ListenTimeout)
	// untouched fields keep defaults
	assert.Equal(t, 800*time.Millisecond, cfg.Live.PauseThreshold)
	assert.Equal(t, "whisper_server", cfg.Recognition.Provider)
	assert.Equal(t, "http://whisper.local:8080", cfg.Recognition.Providers["whisper_server"]["base_url"])
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvProvider, "whisper_server")
	t.Setenv(EnvPort, "7777")
	t.Setenv(EnvEnvironment, "production")
	t.Setenv(EnvOpenAIKey, "sk-1234567890abcdef1234567890abcdef")
	t.Setenv(EnvWhisperServer, "http://127.0.0.1:8080")
	t.Setenv(EnvMicDevice, "USB Microphone")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, "whisper_server", cfg.Recognition.Provider)
	assert.Equal(t, "7777", cfg.Server.Port)
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, "sk-1234567890abcdef1234567890abcdef", cfg.ProviderSettings("openai")["api_key"])
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ProviderSettings("whisper_server")["base_url"])
	assert.Equal(t, "USB Microphone", cfg.Live.Device)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{
			name:          "zero chunk size",
			mutate:        func(c *Config) { c.Upload.ChunkSize = 0 },
			errorContains: "upload.chunk_size",
		},
		{
			name:          "extension without dot",
			mutate:        func(c *Config) { c.Upload.Extension = "wav" },
			errorContains: "upload.extension",
		},
		{
			name:          "blank keyword",
			mutate:        func(c *Config) { c.Live.Keyword = "  " },
			errorContains: "live.keyword is required",
		},
		{
			name:          "unknown environment",
			mutate:        func(c *Config) { c.Server.Environment = "staging" },
			errorContains: "server.environment",
		},
		{
			name:          "negative phrase limit",
			mutate:        func(c *Config) { c.Live.PhraseTimeLimit = -time.Second },
			errorContains: "live.phrase_time_limit",
		},
		{
			name:          "huge recognition timeout",
			mutate:        func(c *Config) { c.Recognition.Timeout = time.Hour },
			errorContains: "timeout too large",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidConfig))
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Upload.ChunkSize = -1
	cfg.Live.SampleRate = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload.chunk_size")
	assert.Contains(t, err.Error(), "live.sample_rate")
}

func TestValidateAPIKey(t *testing.T) {
	assert.NoError(t, ValidateAPIKey("sk-1234567890abcdef1234567890abcdef", "OpenAI"))
	assert.ErrorIs(t, ValidateAPIKey("", "OpenAI"), apperrors.ErrMissingAPIKey)
	assert.ErrorContains(t, ValidateAPIKey("invalid-key", "OpenAI"), "must start with 'sk-'")
	assert.ErrorContains(t, ValidateAPIKey("sk-short", "OpenAI"), "too short")
}
