package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWhisper()
	c.normalizeFetch()
	c.normalizePipeline()
	c.normalizeRemote()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptDir) == "" {
		c.Paths.TranscriptDir = defaultTranscriptDir
	}
	if c.Paths.TranscriptDir, err = expandPath(c.Paths.TranscriptDir); err != nil {
		return fmt.Errorf("paths.transcript_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabaseFile) == "" {
		c.Paths.DatabaseFile = defaultDatabaseFile
	}
	if c.Paths.DatabaseFile, err = expandPath(c.Paths.DatabaseFile); err != nil {
		return fmt.Errorf("paths.database_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.TrimSpace(c.Whisper.Language)
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
}

func (c *Config) normalizeFetch() {
	if c.Fetch.Workers <= 0 {
		c.Fetch.Workers = defaultFetchWorkers
	}
	if c.Fetch.RetryAttempts <= 0 {
		c.Fetch.RetryAttempts = defaultFetchRetryAttempts
	}
	if c.Fetch.RatePerSecond < 0 {
		c.Fetch.RatePerSecond = 0
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.RedisAddr = strings.TrimSpace(c.Remote.RedisAddr)
	c.Remote.JobQueue = strings.TrimSpace(c.Remote.JobQueue)
	if c.Remote.JobQueue == "" {
		c.Remote.JobQueue = defaultRemoteJobQueue
	}
	if c.Remote.ResultTimeoutSeconds <= 0 {
		c.Remote.ResultTimeoutSeconds = defaultRemoteResultTimeout
	}
	if c.Remote.MaxItems < 0 {
		c.Remote.MaxItems = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
