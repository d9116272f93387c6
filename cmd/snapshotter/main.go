package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hls-snapshotter/internal/harvester"
	"hls-snapshotter/internal/media"
	"hls-snapshotter/internal/platform/config"
	"hls-snapshotter/internal/platform/httpclient"
	"hls-snapshotter/internal/platform/logger"
	"hls-snapshotter/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	configFile string
	flagValues = config.Defaults()
)

func main() {
	_ = config.Load()

	rootCmd := &cobra.Command{
		Use:           "snapshotter",
		Short:         "Periodically save a still frame from every configured HLS stream",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE,
	}

	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML settings file")
	f.IntVar(&flagValues.Interval, "interval", flagValues.Interval, "minutes to wait between cycles")
	f.StringVar(&flagValues.OutputDir, "output-dir", flagValues.OutputDir, "root directory for snapshots")
	f.StringVar(&flagValues.SourcesFile, "sources", flagValues.SourcesFile, "registry file with base$playlist$label lines")
	f.Float64Var(&flagValues.Scale, "scale", flagValues.Scale, "resize ratio applied to each frame (1 keeps the original size)")
	f.IntVar(&flagValues.Quality, "quality", flagValues.Quality, "JPEG quality, 1..100")
	f.IntVar(&flagValues.Workers, "workers", flagValues.Workers, "playlists fetched concurrently")
	f.DurationVar(&flagValues.FetchTimeout, "fetch-timeout", flagValues.FetchTimeout, "timeout for playlist and segment requests")
	f.DurationVar(&flagValues.DecodeTimeout, "decode-timeout", flagValues.DecodeTimeout, "timeout for decoding one frame")
	f.StringVar(&flagValues.FFmpegPath, "ffmpeg", flagValues.FFmpegPath, "path to the ffmpeg binary")
	f.StringVar(&flagValues.ListenAddr, "listen", flagValues.ListenAddr, "address for the status API, empty to disable")
	f.StringVar(&flagValues.LogLevel, "log-level", flagValues.LogLevel, "console log level: debug, info, warn, error")
	f.StringVar(&flagValues.LogFormat, "log-format", flagValues.LogFormat, "log format: text or json")
	f.StringVar(&flagValues.DebugLog, "debug-log", flagValues.DebugLog, "file receiving every log record, empty to disable")
	f.StringVar(&flagValues.ErrorLog, "error-log", flagValues.ErrorLog, "file receiving error records, empty to disable")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "snapshotter:", err)
		os.Exit(1)
	}
}

// resolveSettings layers defaults, the YAML file, the environment and the
// flags that were set explicitly.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	s := config.Defaults()
	if configFile != "" {
		var err error
		if s, err = config.LoadFile(configFile, s); err != nil {
			return s, err
		}
	}
	s = config.FromEnv(s)

	changed := cmd.Flags().Changed
	if changed("interval") {
		s.Interval = flagValues.Interval
	}
	if changed("output-dir") {
		s.OutputDir = flagValues.OutputDir
	}
	if changed("sources") {
		s.SourcesFile = flagValues.SourcesFile
	}
	if changed("scale") {
		s.Scale = flagValues.Scale
	}
	if changed("quality") {
		s.Quality = flagValues.Quality
	}
	if changed("workers") {
		s.Workers = flagValues.Workers
	}
	if changed("fetch-timeout") {
		s.FetchTimeout = flagValues.FetchTimeout
	}
	if changed("decode-timeout") {
		s.DecodeTimeout = flagValues.DecodeTimeout
	}
	if changed("ffmpeg") {
		s.FFmpegPath = flagValues.FFmpegPath
	}
	if changed("listen") {
		s.ListenAddr = flagValues.ListenAddr
	}
	if changed("log-level") {
		s.LogLevel = flagValues.LogLevel
	}
	if changed("log-format") {
		s.LogFormat = flagValues.LogFormat
	}
	if changed("debug-log") {
		s.DebugLog = flagValues.DebugLog
	}
	if changed("error-log") {
		s.ErrorLog = flagValues.ErrorLog
	}

	return s, s.Validate()
}

func runE(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	log, logFiles, err := logger.Open(logger.Options{
		Level:     settings.LogLevel,
		Format:    settings.LogFormat,
		DebugFile: settings.DebugLog,
		ErrorFile: settings.ErrorLog,
	})
	if err != nil {
		return err
	}
	defer logFiles.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	met := metrics.New()
	board := harvester.NewStatusBoard()
	client := httpclient.New(httpclient.Options{
		Timeout:            settings.FetchTimeout,
		InsecureSkipVerify: true,
		UserAgent:          settings.UserAgent,
	})
	decoder := media.NewFFmpegDecoder(client, settings.FFmpegPath, settings.DecodeTimeout)
	store := harvester.NewFSStore(afero.NewOsFs(), settings.OutputDir)

	resolver := harvester.NewResolver(client, log, settings.Workers, met, board)
	extractor := harvester.NewExtractor(store, decoder,
		harvester.ExtractOptions{Scale: settings.Scale, Quality: settings.Quality},
		log, met, board)
	scheduler := harvester.NewScheduler(harvester.SchedulerConfig{
		FS:           afero.NewOsFs(),
		RegistryPath: settings.SourcesFile,
		Interval:     settings.IntervalDuration(),
	}, resolver, extractor, log, met, board)

	var srv *http.Server
	if settings.ListenAddr != "" {
		srv = newStatusServer(settings.ListenAddr, log, met, board)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("status server error", "error", err)
				stop()
			}
		}()
	}

	log.Info("snapshotter starting",
		"sources", settings.SourcesFile,
		"output_dir", settings.OutputDir,
		"interval_minutes", settings.Interval,
		"workers", settings.Workers,
		"listen", settings.ListenAddr,
	)

	runErr := scheduler.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	log.Info("snapshotter stopped")
	return nil
}

func newStatusServer(addr string, log *slog.Logger, met *metrics.Metrics, board *harvester.StatusBoard) *http.Server {
	h := harvester.NewHandler(board, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Method(http.MethodGet, metrics.ScrapePath, met.Handler())
	h.Routes(r)

	return &http.Server{Addr: addr, Handler: r}
}
