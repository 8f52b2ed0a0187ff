// internal/stream/diaglog.go
package stream

import (
	"sync"
	"time"
)

// DiagKind classifies a diagnostic log entry.
type DiagKind string

const (
	DiagFrame   DiagKind = "frame"   // frame received and applied
	DiagDropped DiagKind = "dropped" // frame dropped (malformed, unknown, late)
	DiagServer  DiagKind = "server"  // server-side log event
	DiagChannel DiagKind = "channel" // channel open/close/transport
)

// DiagEntry is one line of the in-memory diagnostic log.
type DiagEntry struct {
	Time   time.Time `json:"time"`
	Kind   DiagKind  `json:"kind"`
	Detail string    `json:"detail"`
}

// DiagLog is an append-only, bounded, in-memory log of channel traffic and
// drop reasons. Nothing here is ever persisted; once the capacity is reached
// the oldest entries fall off.
type DiagLog struct {
	mu      sync.Mutex
	entries []DiagEntry
	cap     int
}

// NewDiagLog creates a log holding at most capacity entries.
func NewDiagLog(capacity int) *DiagLog {
	if capacity <= 0 {
		capacity = 512
	}
	return &DiagLog{cap: capacity}
}

// Append records an entry, evicting the oldest if full.
func (l *DiagLog) Append(kind DiagKind, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, DiagEntry{Time: time.Now(), Kind: kind, Detail: detail})
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Entries returns a copy of the current log, oldest first.
func (l *DiagLog) Entries() []DiagEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]DiagEntry(nil), l.entries...)
}
