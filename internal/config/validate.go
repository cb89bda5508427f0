package config

import (
	"errors"
	"fmt"
	"strings"
)

var validWhisperModels = map[string]struct{}{
	"tiny":   {},
	"base":   {},
	"small":  {},
	"medium": {},
	"large":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if _, ok := validWhisperModels[c.Whisper.Model]; !ok {
		return fmt.Errorf("whisper.model %q is not one of tiny, base, small, medium, large", c.Whisper.Model)
	}
	return nil
}

func (c *Config) validateTranscribe() error {
	if c.Transcribe.MinDurationSeconds < 0 {
		return errors.New("transcribe.min_duration_seconds must not be negative")
	}
	if c.Transcribe.MaxDurationSeconds < 0 {
		return errors.New("transcribe.max_duration_seconds must not be negative")
	}
	if min, max := c.Transcribe.MinDurationSeconds, c.Transcribe.MaxDurationSeconds; min > 0 && max > 0 && min > max {
		return errors.New("transcribe.min_duration_seconds must not exceed transcribe.max_duration_seconds")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if !c.Remote.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Remote.RedisAddr) == "" {
		return errors.New("remote.redis_addr must be set when remote.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
