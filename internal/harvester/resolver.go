package harvester

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"hls-snapshotter/internal/platform/metrics"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the number of playlists fetched at once.
const DefaultWorkers = 8

// maxPlaylistBytes caps how much of a playlist response is read.
const maxPlaylistBytes = 8 << 20

// Resolver fetches and validates playlists for descriptors.
type Resolver struct {
	client  *http.Client
	log     *slog.Logger
	metrics *metrics.Metrics
	status  *StatusBoard
	workers int
}

// NewResolver returns a Resolver that fetches with client and runs at most
// workers fetches concurrently (DefaultWorkers if workers <= 0). The client
// carries the request timeout and TLS settings. Metrics and status may be nil.
func NewResolver(client *http.Client, log *slog.Logger, workers int, m *metrics.Metrics, status *StatusBoard) *Resolver {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Resolver{client: client, log: log, metrics: m, status: status, workers: workers}
}

// Resolve fetches the playlist for d once and parses it. Every failure is
// logged exactly once before it is returned.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) (ResolvedSource, error) {
	url := d.PlaylistURL()

	segs, err := r.fetch(ctx, url)
	if err != nil {
		r.log.Error("playlist rejected",
			slog.String("label", d.Label),
			slog.String("url", url),
			slog.String("error", err.Error()))
		r.metrics.IncResolveFailure(reason(err))
		r.status.RecordFailure(d.Label, err, time.Now())
		return ResolvedSource{}, err
	}

	r.log.Debug("playlist loaded",
		slog.String("label", d.Label),
		slog.String("url", url),
		slog.Int("segments", len(segs)))
	r.metrics.IncResolved()
	return ResolvedSource{Descriptor: d, Segments: segs}, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: received status code %d from %s", ErrBadStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if !IsPlaylist(body) {
		return nil, fmt.Errorf("%w: content from %s does not start with %s", ErrNotPlaylist, url, PlaylistMarker)
	}
	return ParsePlaylist(body)
}

// ResolveAll resolves every descriptor concurrently and returns the successes
// once all fetches have finished. Result order is completion order.
func (r *Resolver) ResolveAll(ctx context.Context, ds []Descriptor) []ResolvedSource {
	var (
		mu  sync.Mutex
		out = make([]ResolvedSource, 0, len(ds))
		g   errgroup.Group
	)
	g.SetLimit(r.workers)

	for _, d := range ds {
		d := d
		g.Go(func() error {
			rs, err := r.Resolve(ctx, d)
			if err != nil {
				return nil
			}
			mu.Lock()
			out = append(out, rs)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
