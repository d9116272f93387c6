package harvester

import "time"

// Descriptor is one configured stream to monitor, parsed from a registry line.
type Descriptor struct {
	// BaseURL is prepended to relative segment URIs.
	BaseURL string
	// PlaylistPath is appended to BaseURL to form the playlist URL.
	PlaylistPath string
	// Label names the output subdirectory.
	Label string
	// Line is the 1-based registry line the descriptor came from.
	Line int
}

// PlaylistURL returns the URL the resolver fetches.
func (d Descriptor) PlaylistURL() string {
	return d.BaseURL + d.PlaylistPath
}

// Segment is a single media segment of a playlist.
type Segment struct {
	URI      string
	Duration float64
	Sequence uint64
}

// ResolvedSource is a descriptor together with its fetched playlist.
// Segments are in playback order; the last one is the most recent.
type ResolvedSource struct {
	Descriptor Descriptor
	Segments   []Segment
}

// CycleReport summarizes one harvest cycle.
type CycleReport struct {
	Cycle    uint64        `json:"cycle"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Loaded   int           `json:"loaded"`
	Resolved int           `json:"resolved"`
	Saved    int           `json:"saved"`
	Failed   int           `json:"failed"`
}
