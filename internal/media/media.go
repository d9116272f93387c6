// Package media opens video segments, decodes single frames, and turns them
// into downsized JPEG snapshots.
package media

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrOpen is returned by Decoder.Open when the segment cannot be reached.
	ErrOpen = errors.New("stream unavailable")

	// ErrDecode is returned by Stream.ReadFrame when no frame can be decoded.
	ErrDecode = errors.New("frame decode failed")
)

// Decoder opens media streams by URL.
type Decoder interface {
	Open(ctx context.Context, url string) (Stream, error)
}

// Stream is an opened media stream. Close must be called on every path once
// Open succeeded; it is safe to call more than once.
type Stream interface {
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}
