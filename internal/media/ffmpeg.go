package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultDecodeTimeout bounds one ffmpeg invocation.
const DefaultDecodeTimeout = 30 * time.Second

// FFmpegDecoder fetches a segment over HTTP and pipes it through ffmpeg to
// extract the first video frame.
type FFmpegDecoder struct {
	client  *http.Client
	binary  string
	timeout time.Duration
}

// NewFFmpegDecoder returns a decoder that downloads with client and decodes with
// the ffmpeg executable at binary ("ffmpeg" when empty).
func NewFFmpegDecoder(client *http.Client, binary string, timeout time.Duration) *FFmpegDecoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = DefaultDecodeTimeout
	}
	return &FFmpegDecoder{client: client, binary: binary, timeout: timeout}
}

// Open issues the segment request. The response body is held by the returned
// Stream until Close.
func (d *FFmpegDecoder) Open(ctx context.Context, url string) (Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status %d", ErrOpen, url, resp.StatusCode)
	}
	return &ffmpegStream{body: resp.Body, binary: d.binary, timeout: d.timeout}, nil
}

type ffmpegStream struct {
	body    io.ReadCloser
	binary  string
	timeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// ReadFrame decodes the first frame of the stream as PNG via ffmpeg.
func (s *ffmpegStream) ReadFrame(ctx context.Context) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)
	cmd.Stdin = s.body
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// ffmpeg stops reading stdin after the first frame; do not wait on the
	// remaining body copy once it has exited.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil && !(errors.Is(err, exec.ErrWaitDelay) && stdout.Len() > 0) {
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrDecode, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no frame", ErrDecode)
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
