package harvester

import (
	"context"
	"log/slog"
	"time"

	"hls-snapshotter/internal/platform/metrics"

	"github.com/spf13/afero"
)

// DefaultInterval is the pause between two cycles.
const DefaultInterval = 20 * time.Minute

// SchedulerConfig locates the registry and sets the pause between cycles.
type SchedulerConfig struct {
	FS           afero.Fs
	RegistryPath string
	Interval     time.Duration
}

// Scheduler runs harvest cycles one after another: load the registry, resolve
// every source concurrently, extract snapshots one by one, then sleep.
type Scheduler struct {
	fs           afero.Fs
	registryPath string
	interval     time.Duration

	resolver  *Resolver
	extractor *Extractor
	log       *slog.Logger
	metrics   *metrics.Metrics
	status    *StatusBoard

	sleep func(ctx context.Context, d time.Duration) error
	cycle uint64
}

// NewScheduler returns a Scheduler. A zero Interval uses DefaultInterval; a
// nil FS reads from the OS filesystem. Metrics and status may be nil.
func NewScheduler(cfg SchedulerConfig, resolver *Resolver, extractor *Extractor, log *slog.Logger, m *metrics.Metrics, status *StatusBoard) *Scheduler {
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Scheduler{
		fs:           cfg.FS,
		registryPath: cfg.RegistryPath,
		interval:     cfg.Interval,
		resolver:     resolver,
		extractor:    extractor,
		log:          log,
		metrics:      m,
		status:       status,
		sleep:        sleepContext,
	}
}

// Run alternates cycles and sleeps until ctx is cancelled or the registry
// becomes unreadable. The sleep starts when a cycle ends, so the period is
// the cycle duration plus the interval.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.RunCycle(ctx); err != nil {
			return err
		}

		s.log.Debug("waiting before next cycle", slog.Duration("interval", s.interval))
		if err := s.sleep(ctx, s.interval); err != nil {
			return err
		}
	}
}

// RunCycle performs one full load, resolve, extract pass. It returns an error
// only when the registry cannot be read.
func (s *Scheduler) RunCycle(ctx context.Context) (CycleReport, error) {
	start := time.Now()
	s.cycle++
	report := CycleReport{Cycle: s.cycle, Started: start}

	ds, rejected, err := LoadRegistry(s.fs, s.registryPath, s.log)
	if err != nil {
		s.log.Error("cannot load source registry",
			slog.String("path", s.registryPath),
			slog.String("error", err.Error()))
		return report, err
	}
	s.metrics.AddRegistryErrors(rejected)
	report.Loaded = len(ds)

	resolved := s.resolver.ResolveAll(ctx, ds)
	report.Resolved = len(resolved)
	report.Failed = len(ds) - len(resolved)

	for _, rs := range resolved {
		if _, err := s.extractor.Extract(ctx, rs); err != nil {
			report.Failed++
			continue
		}
		report.Saved++
	}

	report.Duration = time.Since(start)
	s.log.Debug("cycle completed",
		slog.Uint64("cycle", report.Cycle),
		slog.Duration("duration", report.Duration),
		slog.Int("loaded", report.Loaded),
		slog.Int("rejected_lines", rejected),
		slog.Int("resolved", report.Resolved),
		slog.Int("saved", report.Saved),
		slog.Int("failed", report.Failed))
	s.metrics.ObserveCycle(report.Duration, time.Now())
	s.status.RecordCycle(report)
	return report, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
