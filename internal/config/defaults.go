package config

const (
	defaultAudioDir             = "~/.local/share/scribe/audio"
	defaultTranscriptDir        = "~/.local/share/scribe/transcripts"
	defaultLogDir               = "~/.local/share/scribe/logs"
	defaultDatabaseFile         = "~/.local/share/scribe/scribe.db"
	defaultWhisperModel         = "base"
	defaultWhisperLanguage      = "en"
	defaultWhisperBinary        = "whisper-ctranslate2"
	defaultFetchWorkers         = 10
	defaultFetchRetryAttempts   = 3
	defaultBatchSize            = 20
	defaultRemoteJobQueue       = "scribe:jobs"
	defaultRemoteResultTimeout  = 600
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AudioDir:      defaultAudioDir,
			TranscriptDir: defaultTranscriptDir,
			LogDir:        defaultLogDir,
			DatabaseFile:  defaultDatabaseFile,
		},
		Whisper: Whisper{
			Model:    defaultWhisperModel,
			Language: defaultWhisperLanguage,
		},
		Fetch: Fetch{
			Workers:       defaultFetchWorkers,
			RetryAttempts: defaultFetchRetryAttempts,
		},
		Pipeline: Pipeline{
			BatchSize: defaultBatchSize,
		},
		Transcribe: Transcribe{
			DeleteAudio: true,
		},
		Remote: Remote{
			RedisAddr:            "localhost:6379",
			JobQueue:             defaultRemoteJobQueue,
			ResultTimeoutSeconds: defaultRemoteResultTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
