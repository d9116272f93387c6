package harvester

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

const (
	snapshotTimeLayout = "20060102_150405"
	snapshotExt        = ".jpg"
)

// Namer builds snapshot file names. The sequence suffix is shared by every
// label and only grows, so two snapshots taken in the same second never share
// a name within a process.
type Namer struct {
	seq atomic.Uint64
}

// Next returns "<label>_<YYYYMMDD_HHMMSS>_<seq>.jpg" for a snapshot taken at t.
func (n *Namer) Next(label string, t time.Time) string {
	seq := n.seq.Add(1)
	return fmt.Sprintf("%s_%s_%06d%s", label, t.Format(snapshotTimeLayout), seq, snapshotExt)
}

// VideoURL joins the descriptor base URL and a segment URI. Absolute segment
// URIs are returned unchanged.
func VideoURL(baseURL, segmentURI string) string {
	if strings.HasPrefix(segmentURI, "http://") || strings.HasPrefix(segmentURI, "https://") {
		return segmentURI
	}
	return baseURL + segmentURI
}
