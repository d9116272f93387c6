package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnv_fallback(t *testing.T) {
	t.Setenv("SNAPSHOTTER_TEST_EMPTY", "")
	if got := GetEnv("SNAPSHOTTER_TEST_EMPTY", "x"); got != "x" {
		t.Errorf("expected fallback x, got %q", got)
	}
	t.Setenv("SNAPSHOTTER_TEST_SET", "y")
	if got := GetEnv("SNAPSHOTTER_TEST_SET", "x"); got != "y" {
		t.Errorf("expected y, got %q", got)
	}
}

func TestGetEnvInt_invalid_uses_fallback(t *testing.T) {
	t.Setenv("SNAPSHOTTER_TEST_INT", "abc")
	if got := GetEnvInt("SNAPSHOTTER_TEST_INT", 7); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SNAPSHOTTER_INTERVAL", "5")
	t.Setenv("SNAPSHOTTER_SCALE", "0.25")
	t.Setenv("SNAPSHOTTER_FETCH_TIMEOUT", "3s")
	t.Setenv("SNAPSHOTTER_OUTPUT_DIR", "/tmp/snaps")

	s := FromEnv(Defaults())
	if s.Interval != 5 {
		t.Errorf("interval: got %d", s.Interval)
	}
	if s.Scale != 0.25 {
		t.Errorf("scale: got %g", s.Scale)
	}
	if s.FetchTimeout != 3*time.Second {
		t.Errorf("fetch timeout: got %v", s.FetchTimeout)
	}
	if s.OutputDir != "/tmp/snaps" {
		t.Errorf("output dir: got %q", s.OutputDir)
	}
	if s.Quality != 90 {
		t.Errorf("quality should keep default 90, got %d", s.Quality)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshotter.yaml")
	body := "interval: 3\nquality: 75\nfetch_timeout: 4s\nsources_file: streams.txt\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path, Defaults())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Interval != 3 || s.Quality != 75 || s.SourcesFile != "streams.txt" {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.FetchTimeout != 4*time.Second {
		t.Errorf("fetch timeout: got %v", s.FetchTimeout)
	}
	if s.OutputDir != "./output" {
		t.Errorf("output dir should keep default, got %q", s.OutputDir)
	}
}

func TestLoadFile_missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), Defaults())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSettings_Validate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	cases := map[string]func(*Settings){
		"negative_interval": func(s *Settings) { s.Interval = -1 },
		"zero_interval":     func(s *Settings) { s.Interval = 0 },
		"empty_output":      func(s *Settings) { s.OutputDir = "" },
		"quality_zero":      func(s *Settings) { s.Quality = 0 },
		"quality_too_high":  func(s *Settings) { s.Quality = 101 },
		"negative_scale":    func(s *Settings) { s.Scale = -0.5 },
		"no_workers":        func(s *Settings) { s.Workers = 0 },
		"no_fetch_timeout":  func(s *Settings) { s.FetchTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := Defaults()
			mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSettings_IntervalDuration(t *testing.T) {
	s := Defaults()
	if got := s.IntervalDuration(); got != 20*time.Minute {
		t.Errorf("expected 20m, got %v", got)
	}
}
