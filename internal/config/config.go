package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration for s2t
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Upload      UploadConfig      `yaml:"upload"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Live        LiveConfig        `yaml:"live"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Environment  string        `yaml:"environment"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// UploadConfig controls how uploaded audio is buffered to disk
type UploadConfig struct {
	ChunkSize    int           `yaml:"chunk_size"`
	MaxSizeMB    int           `yaml:"max_size_mb"`
	TempDir      string        `yaml:"temp_dir"`
	Extension    string        `yaml:"extension"`
	ProgressTick time.Duration `yaml:"progress_tick"`
}

// RecognitionConfig selects and configures the recognition backend
type RecognitionConfig struct {
	Provider  string                            `yaml:"provider"`
	Timeout   time.Duration                     `yaml:"timeout"`
	Providers map[string]map[string]interface{} `yaml:"providers"`
}

// LiveConfig controls microphone listening
type LiveConfig struct {
	Keyword             string        `yaml:"keyword"`
	CalibrationDuration time.Duration `yaml:"calibration_duration"`
	ListenTimeout       time.Duration `yaml:"listen_timeout"`
	PhraseTimeLimit     time.Duration `yaml:"phrase_time_limit"`
	PauseThreshold      time.Duration `yaml:"pause_threshold"`
	EnergyThreshold     float64       `yaml:"energy_threshold"`
	DynamicThreshold    bool          `yaml:"dynamic_threshold"`
	Device              string        `yaml:"device"`
	SampleRate          int           `yaml:"sample_rate"`
	FramesPerBuffer     int           `yaml:"frames_per_buffer"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration populated with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultHTTPPort,
			Environment:  DefaultEnvironment,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		Upload: UploadConfig{
			ChunkSize:    DefaultChunkSize,
			MaxSizeMB:    DefaultMaxUploadSizeMB,
			TempDir:      os.TempDir(),
			Extension:    DefaultAudioExtension,
			ProgressTick: DefaultProgressTick,
		},
		Recognition: RecognitionConfig{
			Provider:  DefaultProvider,
			Timeout:   DefaultRecognitionTimeout,
			Providers: make(map[string]map[string]interface{}),
		},
		Live: LiveConfig{
			Keyword:             DefaultStopKeyword,
			CalibrationDuration: DefaultCalibrationDuration,
			ListenTimeout:       DefaultListenTimeout,
			PauseThreshold:      DefaultPauseThreshold,
			EnergyThreshold:     DefaultEnergyThreshold,
			DynamicThreshold:    true,
			SampleRate:          DefaultSampleRate,
			FramesPerBuffer:     DefaultFramesPerBuffer,
		},
		Log: LogConfig{
			Level:       DefaultLogLevel,
			Development: true,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// A missing file is not an error; the defaults are returned instead.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		configPath = os.ExpandEnv(configPath)

		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// fall through with defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
		}
	}

	if cfg.Recognition.Providers == nil {
		cfg.Recognition.Providers = make(map[string]map[string]interface{})
	}
	cfg.expandEnvironmentVariables()

	return cfg, nil
}

// ProviderSettings returns the settings map for the named provider, never nil
func (c *Config) ProviderSettings(name string) map[string]interface{} {
	settings, ok := c.Recognition.Providers[name]
	if !ok || settings == nil {
		settings = make(map[string]interface{})
		c.Recognition.Providers[name] = settings
	}
	return settings
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// MaxUploadBytes returns the upload limit in bytes
func (u UploadConfig) MaxUploadBytes() int64 {
	return int64(u.MaxSizeMB) * 1024 * 1024
}

// expandEnvironmentVariables expands ${VAR} references in provider settings
func (c *Config) expandEnvironmentVariables() {
	for _, settings := range c.Recognition.Providers {
		for key, value := range settings {
			if str, ok := value.(string); ok {
				settings[key] = os.ExpandEnv(str)
			}
		}
	}
	c.Upload.TempDir = os.ExpandEnv(c.Upload.TempDir)
}
