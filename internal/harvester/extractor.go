package harvester

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hls-snapshotter/internal/media"
	"hls-snapshotter/internal/platform/metrics"
)

// ExtractOptions controls post-processing of a captured frame.
type ExtractOptions struct {
	// Scale is the downsampling ratio applied before encoding; 0 or 1 keeps
	// the original size.
	Scale float64
	// Quality is the JPEG quality, 1..100.
	Quality int
}

// DefaultExtractOptions halves the frame and encodes at quality 90.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Scale: 0.5, Quality: media.DefaultQuality}
}

// Extractor captures one frame from the latest segment of a resolved source
// and stores it as a JPEG snapshot.
type Extractor struct {
	store   SnapshotStore
	decoder media.Decoder
	opts    ExtractOptions
	namer   *Namer
	log     *slog.Logger
	metrics *metrics.Metrics
	status  *StatusBoard
	now     func() time.Time
}

// NewExtractor returns an Extractor. Metrics and status may be nil.
func NewExtractor(store SnapshotStore, decoder media.Decoder, opts ExtractOptions, log *slog.Logger, m *metrics.Metrics, status *StatusBoard) *Extractor {
	return &Extractor{
		store:   store,
		decoder: decoder,
		opts:    opts,
		namer:   &Namer{},
		log:     log,
		metrics: m,
		status:  status,
		now:     time.Now,
	}
}

// Extract writes a snapshot for rs and returns its path. Failures are logged
// once and returned; none of them affect other sources.
func (e *Extractor) Extract(ctx context.Context, rs ResolvedSource) (string, error) {
	label := rs.Descriptor.Label

	path, err := e.extract(ctx, rs)
	if err != nil {
		e.log.Error("snapshot failed",
			slog.String("label", label),
			slog.String("playlist_url", rs.Descriptor.PlaylistURL()),
			slog.String("error", err.Error()))
		e.metrics.IncExtractFailure(reason(err))
		e.status.RecordFailure(label, err, e.now())
		return "", err
	}

	e.log.Debug("frame saved", slog.String("label", label), slog.String("path", path))
	e.metrics.IncSnapshots()
	e.status.RecordSnapshot(label, path, e.now())
	return path, nil
}

func (e *Extractor) extract(ctx context.Context, rs ResolvedSource) (string, error) {
	label := rs.Descriptor.Label

	last, ok := LatestSegment(rs.Segments)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSegments, label)
	}
	videoURL := VideoURL(rs.Descriptor.BaseURL, last.URI)

	if err := e.store.EnsureDir(label); err != nil {
		return "", err
	}

	stream, err := e.decoder.Open(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrStreamUnavailable, videoURL, err)
	}
	defer stream.Close()

	frame, err := stream.ReadFrame(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFrameRead, videoURL, err)
	}

	data, err := media.EncodeJPEG(media.Resize(frame, e.opts.Scale), e.opts.Quality)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFrameRead, videoURL, err)
	}

	return e.store.Write(label, e.namer.Next(label, e.now()), data)
}
