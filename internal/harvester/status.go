package harvester

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// SourceStatus is the in-memory outcome history of one label.
type SourceStatus struct {
	Label          string     `json:"label"`
	Snapshots      uint64     `json:"snapshots"`
	Failures       uint64     `json:"failures"`
	LastSnapshot   string     `json:"last_snapshot,omitempty"`
	LastSnapshotAt *time.Time `json:"last_snapshot_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LastErrorAt    *time.Time `json:"last_error_at,omitempty"`
}

// StatusSnapshot is a point-in-time copy of the board.
type StatusSnapshot struct {
	LastCycle *CycleReport   `json:"last_cycle,omitempty"`
	Sources   []SourceStatus `json:"sources"`
}

// StatusBoard is a concurrency-safe record of the latest cycle and the latest
// outcome per label. It lives only in memory and is lost on restart.
// A nil *StatusBoard ignores every call.
type StatusBoard struct {
	mu        sync.RWMutex
	sources   map[string]*SourceStatus
	lastCycle *CycleReport
}

// NewStatusBoard returns an empty board.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{sources: make(map[string]*SourceStatus)}
}

// RecordSnapshot notes a snapshot written for label.
func (b *StatusBoard) RecordSnapshot(label, path string, at time.Time) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.getOrCreateLocked(label)
	st.Snapshots++
	st.LastSnapshot = path
	st.LastSnapshotAt = &at
}

// RecordFailure notes a failed resolve or extract for label.
func (b *StatusBoard) RecordFailure(label string, err error, at time.Time) {
	if b == nil || err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.getOrCreateLocked(label)
	st.Failures++
	st.LastError = err.Error()
	st.LastErrorAt = &at
}

// RecordCycle replaces the last cycle report.
func (b *StatusBoard) RecordCycle(r CycleReport) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCycle = &r
}

// Source returns a copy of the status for label; ok is false for unknown labels.
func (b *StatusBoard) Source(label string) (SourceStatus, bool) {
	if b == nil {
		return SourceStatus{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	st, ok := b.sources[label]
	if !ok {
		return SourceStatus{}, false
	}
	return *st, true
}

// Snapshot returns a copy of the board with sources sorted by label.
func (b *StatusBoard) Snapshot() StatusSnapshot {
	if b == nil {
		return StatusSnapshot{Sources: []SourceStatus{}}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	labels := lo.Keys(b.sources)
	sort.Strings(labels)

	out := StatusSnapshot{Sources: make([]SourceStatus, 0, len(labels))}
	for _, label := range labels {
		out.Sources = append(out.Sources, *b.sources[label])
	}
	if b.lastCycle != nil {
		c := *b.lastCycle
		out.LastCycle = &c
	}
	return out
}

// getOrCreateLocked returns the status for label, creating it if needed.
// Caller must hold b.mu in write mode.
func (b *StatusBoard) getOrCreateLocked(label string) *SourceStatus {
	if st, ok := b.sources[label]; ok {
		return st
	}
	st := &SourceStatus{Label: label}
	b.sources[label] = st
	return st
}
