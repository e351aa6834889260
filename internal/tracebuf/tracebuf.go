// Package tracebuf is the pluggable, append-only per-context trace
// buffer a future evaluator layer writes entries into; the core itself
// only carries it, it does not interpret entries. Grounded on the
// teacher's internal/reporting package's accumulate-under-a-mutex shape
// (ReportingModule's mu sync.RWMutex guarding a growing slice); go-humanize
// renders buffer sizes the way a reporting.go-style summary would.
package tracebuf

import (
	"sync"

	"github.com/dustin/go-humanize"
)

// Entry is one opaque trace record. The core never interprets entries
// it writes — Kind/Payload are whatever the calling evaluator chooses
// to record (block execution is out of scope for this core), tracebuf
// only accumulates and reports on them.
type Entry struct {
	Kind    string
	Payload []byte
}

// Buffer is a bounded, append-only ring: once Cap entries have
// accumulated, the oldest is evicted to make room for the newest,
// mirroring a fixed per-context trace budget rather than unbounded
// growth.
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
	bytes   uint64
	dropped uint64
}

// New creates a trace buffer holding at most cap entries.
func New(cap int) *Buffer {
	if cap <= 0 {
		cap = 1
	}
	return &Buffer{cap: cap}
}

// Write appends one entry, evicting the oldest if the buffer is full.
func (b *Buffer) Write(kind string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.cap {
		evicted := b.entries[0]
		b.entries = b.entries[1:]
		b.bytes -= uint64(len(evicted.Payload))
		b.dropped++
	}
	b.entries = append(b.entries, Entry{Kind: kind, Payload: payload})
	b.bytes += uint64(len(payload))
}

// Entries returns a snapshot copy of the buffer's current contents,
// oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Stats summarizes the buffer's fill state for diagnostics.
type Stats struct {
	Count       int
	Capacity    int
	Bytes       uint64
	Dropped     uint64
	HumanBytes  string
	FillPercent float64
}

// Stat computes the buffer's current Stats, formatting Bytes the way
// the teacher's reporting summaries humanize byte counts.
func (b *Buffer) Stat() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		Count:       len(b.entries),
		Capacity:    b.cap,
		Bytes:       b.bytes,
		Dropped:     b.dropped,
		HumanBytes:  humanize.Bytes(b.bytes),
		FillPercent: 100 * float64(len(b.entries)) / float64(b.cap),
	}
}
