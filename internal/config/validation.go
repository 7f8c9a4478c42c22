package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	apperrors "s2t/internal/app/errors"
)

var validEnvironments = []string{"development", "production", "test"}

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return apperrors.InvalidField(name, "timeout must be positive")
	}
	if timeout > 30*time.Minute {
		return apperrors.InvalidField(name, "timeout too large (max 30 minutes)")
	}
	return nil
}

// ValidatePositive validates that an integer setting is greater than zero
func ValidatePositive(value int, name string) error {
	if value <= 0 {
		return apperrors.InvalidField(name, fmt.Sprintf("must be positive, got %d", value))
	}
	return nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required: %w", keyType, apperrors.ErrMissingAPIKey)
	}

	if keyType == "OpenAI" {
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OpenAI API key format: too short")
		}
	}

	return nil
}

// Validate checks the whole configuration and reports every problem found
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, apperrors.RequiredField("server.port"))
	}
	if !lo.Contains(validEnvironments, c.Server.Environment) {
		errs = append(errs, apperrors.InvalidField("server.environment",
			fmt.Sprintf("must be one of %s", strings.Join(validEnvironments, ", "))))
	}

	if err := ValidatePositive(c.Upload.ChunkSize, "upload.chunk_size"); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePositive(c.Upload.MaxSizeMB, "upload.max_size_mb"); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasPrefix(c.Upload.Extension, ".") {
		errs = append(errs, apperrors.InvalidField("upload.extension", "must start with '.'"))
	}
	if c.Upload.ProgressTick <= 0 {
		errs = append(errs, apperrors.InvalidField("upload.progress_tick", "must be positive"))
	}

	if c.Recognition.Provider == "" {
		errs = append(errs, apperrors.RequiredField("recognition.provider"))
	}
	if err := ValidateTimeout(c.Recognition.Timeout, "recognition.timeout"); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.Live.Keyword) == "" {
		errs = append(errs, apperrors.RequiredField("live.keyword"))
	}
	if err := ValidateTimeout(c.Live.CalibrationDuration, "live.calibration_duration"); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateTimeout(c.Live.ListenTimeout, "live.listen_timeout"); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateTimeout(c.Live.PauseThreshold, "live.pause_threshold"); err != nil {
		errs = append(errs, err)
	}
	if c.Live.PhraseTimeLimit < 0 {
		errs = append(errs, apperrors.InvalidField("live.phrase_time_limit", "cannot be negative"))
	}
	if c.Live.EnergyThreshold < 0 {
		errs = append(errs, apperrors.InvalidField("live.energy_threshold", "cannot be negative"))
	}
	if err := ValidatePositive(c.Live.SampleRate, "live.sample_rate"); err != nil {
		errs = append(errs, err)
	}
	if err := ValidatePositive(c.Live.FramesPerBuffer, "live.frames_per_buffer"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
