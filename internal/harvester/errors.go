package harvester

import "errors"

var (
	// ErrRegistryUnreadable means the registry file itself could not be read.
	// It is the only error that stops the scheduler.
	ErrRegistryUnreadable = errors.New("source registry unreadable")

	// ErrMalformedLine is logged for registry lines without exactly three fields.
	ErrMalformedLine = errors.New("malformed registry line")

	// ErrInvalidLabel is logged for registry lines whose label is not a safe
	// directory name.
	ErrInvalidLabel = errors.New("invalid source label")

	// ErrFetch covers transport failures: timeouts, refused connections, body reads.
	ErrFetch = errors.New("playlist fetch failed")

	// ErrBadStatus is returned when the playlist request does not answer 200.
	ErrBadStatus = errors.New("bad status")

	// ErrNotPlaylist is returned when the body lacks the #EXTM3U marker.
	ErrNotPlaylist = errors.New("not a playlist")

	// ErrPlaylistParse wraps errors from the playlist decoder.
	ErrPlaylistParse = errors.New("playlist parse error")

	// ErrNoSegments is returned by the extractor for playlists without segments.
	ErrNoSegments = errors.New("playlist has no segments")

	// ErrFilesystem covers output directory creation and snapshot writes.
	ErrFilesystem = errors.New("filesystem error")

	// ErrStreamUnavailable is returned when the latest segment cannot be opened.
	ErrStreamUnavailable = errors.New("stream unavailable")

	// ErrFrameRead is returned when no frame could be decoded from the segment.
	ErrFrameRead = errors.New("frame read error")
)

// reason maps an error to a short metrics label.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrNotPlaylist):
		return "not_playlist"
	case errors.Is(err, ErrPlaylistParse):
		return "parse_error"
	case errors.Is(err, ErrFetch):
		return "fetch_error"
	case errors.Is(err, ErrNoSegments):
		return "no_segments"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	case errors.Is(err, ErrStreamUnavailable):
		return "stream_unavailable"
	case errors.Is(err, ErrFrameRead):
		return "frame_read"
	default:
		return "other"
	}
}
