package harvester

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"
)

// PlaylistMarker is the magic line every HLS playlist starts with.
const PlaylistMarker = "#EXTM3U"

// IsPlaylist reports whether body starts with the playlist marker.
func IsPlaylist(body []byte) bool {
	return bytes.HasPrefix(body, []byte(PlaylistMarker))
}

const extinfTag = "#EXTINF:"

// ParsePlaylist decodes an HLS playlist and returns its media segments in
// playback order. Master playlists carry no segments and yield an empty slice.
// Decoding is lenient about missing segment titles ("#EXTINF:2") but a
// duration that is not a number is a parse error.
func ParsePlaylist(body []byte) ([]Segment, error) {
	if err := checkDurations(body); err != nil {
		return nil, err
	}

	p, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlaylistParse, err)
	}

	switch listType {
	case m3u8.MEDIA:
		media, ok := p.(*m3u8.MediaPlaylist)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected media playlist type %T", ErrPlaylistParse, p)
		}
		segs := make([]Segment, 0, media.Count())
		for _, s := range media.Segments {
			if s == nil {
				continue
			}
			segs = append(segs, Segment{URI: s.URI, Duration: s.Duration, Sequence: s.SeqId})
		}
		return segs, nil
	case m3u8.MASTER:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown playlist type", ErrPlaylistParse)
	}
}

// checkDurations rejects #EXTINF lines whose duration does not parse, which
// the lenient decoder would otherwise read as zero.
func checkDurations(body []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 4096), maxPlaylistBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, extinfTag) {
			continue
		}
		duration, _, _ := strings.Cut(line[len(extinfTag):], ",")
		if _, err := strconv.ParseFloat(strings.TrimSpace(duration), 64); err != nil {
			return fmt.Errorf("%w: invalid segment duration in %q", ErrPlaylistParse, line)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPlaylistParse, err)
	}
	return nil
}

// LatestSegment returns the most recently published segment.
func LatestSegment(segs []Segment) (Segment, bool) {
	if len(segs) == 0 {
		return Segment{}, false
	}
	return segs[len(segs)-1], true
}
