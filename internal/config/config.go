package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database location configuration.
type Paths struct {
	AudioDir      string `toml:"audio_dir"`
	TranscriptDir string `toml:"transcript_dir"`
	LogDir        string `toml:"log_dir"`
	DatabaseFile  string `toml:"database_file"`
}

// Channel contains the content source configuration.
type Channel struct {
	// URL is the channel reference to process, e.g.
	// "https://www.youtube.com/@username".
	URL string `toml:"url"`
}

// Whisper contains configuration for the transcription engine.
type Whisper struct {
	// Model is the Whisper model size (tiny, base, small, medium, large).
	Model string `toml:"model"`
	// Language forces a transcription language; empty auto-detects.
	Language string `toml:"language"`
	// CUDAEnabled requests GPU execution; the engine falls back to CPU when
	// GPU initialization fails.
	CUDAEnabled bool `toml:"cuda_enabled"`
	// Binary overrides the whisper executable name.
	Binary string `toml:"binary"`
}

// Fetch contains configuration for parallel audio downloads.
type Fetch struct {
	Workers       int `toml:"workers"`
	RetryAttempts int `toml:"retry_attempts"`
	// RatePerSecond caps download starts per second; 0 disables the limiter.
	RatePerSecond float64 `toml:"rate_per_second"`
}

// Pipeline contains batching configuration for the orchestrator.
type Pipeline struct {
	// BatchSize is how many items are downloaded before transcription runs,
	// bounding how much raw audio sits on disk at once.
	BatchSize int `toml:"batch_size"`
}

// Transcribe contains configuration for the local transcription stage.
type Transcribe struct {
	// DeleteAudio removes the raw audio file after a successful transcription.
	DeleteAudio bool `toml:"delete_audio"`
	// MinDurationSeconds skips items shorter than this; 0 disables the filter.
	MinDurationSeconds int `toml:"min_duration_seconds"`
	// MaxDurationSeconds skips items longer than this; 0 disables the filter.
	MaxDurationSeconds int `toml:"max_duration_seconds"`
}

// Remote contains configuration for the remote transcription pool.
type Remote struct {
	Enabled   bool   `toml:"enabled"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	// JobQueue is the Redis list remote workers consume jobs from.
	JobQueue string `toml:"job_queue"`
	// ResultTimeoutSeconds bounds the wait for each remote result.
	ResultTimeoutSeconds int `toml:"result_timeout_seconds"`
	// MaxItems caps how many items a single dispatch submits; 0 means all.
	MaxItems int `toml:"max_items"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scribe.
//
// Configuration sections by subsystem:
//   - Paths: data directories and the progress database location
//   - Channel: the channel reference to process
//   - Whisper: transcription engine model and device settings
//   - Fetch: download worker pool sizing and retry policy
//   - Pipeline: batch sizing for disk-usage bounding
//   - Transcribe: local transcription behavior
//   - Remote: remote transcription pool transport
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Channel    Channel    `toml:"channel"`
	Whisper    Whisper    `toml:"whisper"`
	Fetch      Fetch      `toml:"fetch"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Transcribe Transcribe `toml:"transcribe"`
	Remote     Remote     `toml:"remote"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.AudioDir, c.Paths.TranscriptDir, c.Paths.LogDir}
	if db := strings.TrimSpace(c.Paths.DatabaseFile); db != "" {
		dirs = append(dirs, filepath.Dir(db))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// YtdlpBinary returns the yt-dlp executable name.
func (c *Config) YtdlpBinary() string {
	return "yt-dlp"
}

// WhisperBinary returns the whisper executable name.
func (c *Config) WhisperBinary() string {
	if bin := strings.TrimSpace(c.Whisper.Binary); bin != "" {
		return bin
	}
	return defaultWhisperBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
