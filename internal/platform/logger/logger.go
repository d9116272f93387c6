package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures the process logger. DebugFile receives every record and
// ErrorFile only error records; either may be empty to disable that sink.
// Console receives records at Level and defaults to os.Stdout.
type Options struct {
	Level     string
	Format    string
	Console   io.Writer
	DebugFile string
	ErrorFile string
}

// ParseLevel maps "debug", "info", "warn", "error" to a slog level (default info).
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a structured logger writing to w with the given level and format.
// format: "json" or "text" (default "text").
func New(w io.Writer, level, format string) *slog.Logger {
	return slog.New(newHandler(w, ParseLevel(level), format))
}

// Open builds the logger described by opts. The returned closer releases the
// log files and must be called once the process stops logging.
func Open(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	if opts.DebugFile == "" && opts.ErrorFile == "" {
		return New(console, opts.Level, opts.Format), fileSet(nil), nil
	}

	var files fileSet
	handlers := []slog.Handler{newHandler(console, ParseLevel(opts.Level), opts.Format)}

	sinks := []struct {
		path  string
		level slog.Level
	}{
		{opts.DebugFile, slog.LevelDebug},
		{opts.ErrorFile, slog.LevelError},
	}
	for _, sink := range sinks {
		if sink.path == "" {
			continue
		}
		f, err := os.OpenFile(sink.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			files.Close()
			return nil, nil, fmt.Errorf("open log file %s: %w", sink.path, err)
		}
		files = append(files, f)
		handlers = append(handlers, newHandler(f, sink.level, opts.Format))
	}

	return slog.New(teeHandler(handlers)), files, nil
}

func newHandler(w io.Writer, lvl slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

type fileSet []*os.File

func (fs fileSet) Close() error {
	var errs []error
	for _, f := range fs {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}
