package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"
)

type trackingBody struct {
	io.Reader
	closed int
}

func (b *trackingBody) Close() error {
	b.closed++
	return nil
}

func TestFFmpegDecoder_Open_bad_status(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d := NewFFmpegDecoder(srv.Client(), "", 0)
	_, err := d.Open(context.Background(), srv.URL+"/seg1.ts")
	if !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestFFmpegDecoder_Open_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := NewFFmpegDecoder(&http.Client{Timeout: time.Second}, "", 0)
	if _, err := d.Open(context.Background(), url+"/seg1.ts"); !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestFFmpegStream_Close_idempotent(t *testing.T) {
	body := &trackingBody{Reader: bytes.NewReader(nil)}
	s := &ffmpegStream{body: body, binary: "ffmpeg", timeout: time.Second}
	s.Close()
	s.Close()
	if body.closed != 1 {
		t.Errorf("expected body closed once, got %d", body.closed)
	}
}

func TestFFmpegStream_ReadFrame_missing_binary(t *testing.T) {
	body := &trackingBody{Reader: bytes.NewReader([]byte("not video"))}
	s := &ffmpegStream{body: body, binary: "/nonexistent/ffmpeg", timeout: time.Second}
	defer s.Close()

	if _, err := s.ReadFrame(context.Background()); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func requireFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	return path
}

func TestFFmpegStream_ReadFrame_garbage(t *testing.T) {
	bin := requireFFmpeg(t)
	body := &trackingBody{Reader: bytes.NewReader(bytes.Repeat([]byte("garbage"), 512))}
	s := &ffmpegStream{body: body, binary: bin, timeout: 10 * time.Second}
	defer s.Close()

	if _, err := s.ReadFrame(context.Background()); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestFFmpegDecoder_decodes_first_frame(t *testing.T) {
	bin := requireFFmpeg(t)

	var segment bytes.Buffer
	gen := exec.Command(bin, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x240:rate=10",
		"-frames:v", "5", "-f", "mpegts", "pipe:1")
	gen.Stdout = &segment
	if err := gen.Run(); err != nil {
		t.Skipf("ffmpeg cannot generate a test segment: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp2t")
		w.Write(segment.Bytes())
	}))
	defer srv.Close()

	d := NewFFmpegDecoder(srv.Client(), bin, 10*time.Second)
	stream, err := d.Open(context.Background(), srv.URL+"/seg0.ts")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stream.Close()

	img, err := stream.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected 320x240, got %dx%d", b.Dx(), b.Dy())
	}
}
