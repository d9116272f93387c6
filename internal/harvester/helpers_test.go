package harvester

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"
	"sync"

	"hls-snapshotter/internal/media"
)

// recordingHandler keeps every log record so tests can count them by level.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// lines renders records at lvl as "msg key=value ...".
func (h *recordingHandler) lines(lvl slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, r := range h.records {
		if r.Level != lvl {
			continue
		}
		var b strings.Builder
		b.WriteString(r.Message)
		r.Attrs(func(a slog.Attr) bool {
			b.WriteString(" ")
			b.WriteString(a.String())
			return true
		})
		out = append(out, b.String())
	}
	return out
}

func (h *recordingHandler) errors() []string { return h.lines(slog.LevelError) }

func newTestLogger() (*slog.Logger, *recordingHandler) {
	h := &recordingHandler{}
	return slog.New(h), h
}

// buildPlaylist renders a live media playlist listing uris in order.
func buildPlaylist(firstSeq int, uris ...string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-TARGETDURATION:2\n")
	b.WriteString(fmt.Sprintf("#EXT-X-MEDIA-SEQUENCE:%d\n", firstSeq))
	for _, uri := range uris {
		b.WriteString("#EXTINF:2.000,\n")
		b.WriteString(uri)
		b.WriteString("\n")
	}
	return b.String()
}

// fakeDecoder hands out a fixed frame and records how it was used.
type fakeDecoder struct {
	mu      sync.Mutex
	frame   image.Image
	openErr error
	readErr error
	opened  []string
	closed  int
}

func newFakeDecoder(w, h int) *fakeDecoder {
	return &fakeDecoder{frame: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (d *fakeDecoder) Open(_ context.Context, url string) (media.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = append(d.opened, url)
	if d.openErr != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrOpen, d.openErr)
	}
	return &fakeStream{d: d}, nil
}

func (d *fakeDecoder) openedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

func (d *fakeDecoder) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fakeStream struct {
	d *fakeDecoder
}

func (s *fakeStream) ReadFrame(context.Context) (image.Image, error) {
	if s.d.readErr != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrDecode, s.d.readErr)
	}
	return s.d.frame, nil
}

func (s *fakeStream) Close() error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.closed++
	return nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
