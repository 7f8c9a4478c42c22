package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognized on top of the YAML file
const (
	EnvConfigPath    = "S2T_CONFIG"
	EnvProvider      = "S2T_PROVIDER"
	EnvHost          = "S2T_HOST"
	EnvPort          = "S2T_PORT"
	EnvEnvironment   = "S2T_ENV"
	EnvLogLevel      = "S2T_LOG_LEVEL"
	EnvTempDir       = "S2T_TEMP_DIR"
	EnvMicDevice     = "S2T_MIC_DEVICE"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvWhisperServer = "WHISPER_SERVER_URL"
)

// LoadEnv loads environment variables from .env file if it exists
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	// Look for .env file, but don't fail if not found (environment variables might be set system-wide)
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// ApplyEnv overrides configuration values with environment variables
func ApplyEnv(cfg *Config) {
	if v := getEnv(EnvProvider); v != "" {
		cfg.Recognition.Provider = v
	}
	if v := getEnv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := getEnv(EnvPort); v != "" {
		cfg.Server.Port = v
	}
	if v := getEnv(EnvEnvironment); v != "" {
		cfg.Server.Environment = v
		cfg.Log.Development = v != "production"
	}
	if v := getEnv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := getEnv(EnvTempDir); v != "" {
		cfg.Upload.TempDir = v
	}
	if v := getEnv(EnvMicDevice); v != "" {
		cfg.Live.Device = v
	}
	if v := getEnv(EnvOpenAIKey); v != "" {
		cfg.ProviderSettings("openai")["api_key"] = v
	}
	if v := getEnv(EnvOpenAIBaseURL); v != "" {
		cfg.ProviderSettings("openai")["base_url"] = v
	}
	if v := getEnv(EnvWhisperServer); v != "" {
		cfg.ProviderSettings("whisper_server")["base_url"] = v
	}
}

// InitializeConfig loads .env, the YAML file and environment overrides, then validates.
// This is the main entry point for configuration loading
func InitializeConfig(configPath string) (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if configPath == "" {
		configPath = getEnvOrDefault(EnvConfigPath, "s2t.yaml")
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := getEnv(key); value != "" {
		return value
	}
	return defaultValue
}
