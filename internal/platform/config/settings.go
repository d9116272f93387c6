package config

import (
	"errors"
	"fmt"
	"time"
)

// EnvPrefix is prepended to every environment variable read by FromEnv.
const EnvPrefix = "SNAPSHOTTER_"

// ErrInvalidSettings is wrapped by every error returned from Settings.Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the full runtime configuration of the snapshot harvester.
// Values are layered: Defaults, then an optional YAML file, then environment
// variables, then command line flags.
type Settings struct {
	// Interval is the pause between cycles, in minutes.
	Interval    int    `yaml:"interval"`
	OutputDir   string `yaml:"output_dir"`
	SourcesFile string `yaml:"sources_file"`

	Scale   float64 `yaml:"scale"`
	Quality int     `yaml:"quality"`
	Workers int     `yaml:"workers"`

	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	DecodeTimeout time.Duration `yaml:"decode_timeout"`
	FFmpegPath    string        `yaml:"ffmpeg_path"`
	UserAgent     string        `yaml:"user_agent"`

	ListenAddr string `yaml:"listen_addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	DebugLog  string `yaml:"debug_log"`
	ErrorLog  string `yaml:"error_log"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		Interval:      20,
		OutputDir:     "./output",
		SourcesFile:   "chunks",
		Scale:         0.5,
		Quality:       90,
		Workers:       8,
		FetchTimeout:  10 * time.Second,
		DecodeTimeout: 30 * time.Second,
		FFmpegPath:    "ffmpeg",
		UserAgent:     "hls-snapshotter/1.0",
		LogLevel:      "debug",
		LogFormat:     "text",
		DebugLog:      "logs_debug.log",
		ErrorLog:      "logs_error.log",
	}
}

// FromEnv overlays SNAPSHOTTER_* environment variables on top of base.
func FromEnv(base Settings) Settings {
	s := base
	s.Interval = GetEnvInt(EnvPrefix+"INTERVAL", s.Interval)
	s.OutputDir = GetEnv(EnvPrefix+"OUTPUT_DIR", s.OutputDir)
	s.SourcesFile = GetEnv(EnvPrefix+"SOURCES_FILE", s.SourcesFile)
	s.Scale = GetEnvFloat(EnvPrefix+"SCALE", s.Scale)
	s.Quality = GetEnvInt(EnvPrefix+"QUALITY", s.Quality)
	s.Workers = GetEnvInt(EnvPrefix+"WORKERS", s.Workers)
	s.FetchTimeout = GetEnvDuration(EnvPrefix+"FETCH_TIMEOUT", s.FetchTimeout)
	s.DecodeTimeout = GetEnvDuration(EnvPrefix+"DECODE_TIMEOUT", s.DecodeTimeout)
	s.FFmpegPath = GetEnv(EnvPrefix+"FFMPEG_PATH", s.FFmpegPath)
	s.UserAgent = GetEnv(EnvPrefix+"USER_AGENT", s.UserAgent)
	s.ListenAddr = GetEnv(EnvPrefix+"LISTEN_ADDR", s.ListenAddr)
	s.LogLevel = GetEnv(EnvPrefix+"LOG_LEVEL", s.LogLevel)
	s.LogFormat = GetEnv(EnvPrefix+"LOG_FORMAT", s.LogFormat)
	s.DebugLog = GetEnv(EnvPrefix+"DEBUG_LOG", s.DebugLog)
	s.ErrorLog = GetEnv(EnvPrefix+"ERROR_LOG", s.ErrorLog)
	return s
}

// Validate reports the first setting that cannot be used to start the harvester.
func (s Settings) Validate() error {
	switch {
	case s.Interval < 1:
		return fmt.Errorf("%w: interval must be at least one minute, got %d", ErrInvalidSettings, s.Interval)
	case s.OutputDir == "":
		return fmt.Errorf("%w: output dir is empty", ErrInvalidSettings)
	case s.SourcesFile == "":
		return fmt.Errorf("%w: sources file is empty", ErrInvalidSettings)
	case s.Scale < 0:
		return fmt.Errorf("%w: scale must not be negative, got %g", ErrInvalidSettings, s.Scale)
	case s.Quality < 1 || s.Quality > 100:
		return fmt.Errorf("%w: quality must be within 1..100, got %d", ErrInvalidSettings, s.Quality)
	case s.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidSettings, s.Workers)
	case s.FetchTimeout <= 0:
		return fmt.Errorf("%w: fetch timeout must be positive", ErrInvalidSettings)
	case s.DecodeTimeout <= 0:
		return fmt.Errorf("%w: decode timeout must be positive", ErrInvalidSettings)
	}
	return nil
}

// IntervalDuration converts Interval to a time.Duration.
func (s Settings) IntervalDuration() time.Duration {
	return time.Duration(s.Interval) * time.Minute
}
