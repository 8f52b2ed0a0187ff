// internal/explore/manager.go
package explore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"stylescope/internal/stream"
)

// API is the subset of server request operations the manager drives.
type API interface {
	StartExploration(ctx context.Context, sessionID string, count int) (*stream.Result, error)
	StopExploration(ctx context.Context, sessionID string) error
}

// Channel is an open push-channel subscription. Close must be idempotent.
type Channel interface {
	Close() error
}

// Dialer opens the push channel for a session. Frames are delivered to
// onFrame from the channel's read loop.
type Dialer interface {
	Dial(sessionID string, onFrame func(raw []byte)) (Channel, error)
}

// EventEmitter receives state-change notifications.
type EventEmitter interface {
	Emit(eventName string, payload interface{})
}

// Manager coordinates one session's exploration runs: it owns the lifecycle
// flag, the push channel, the live reducer state and the diagnostic log.
//
// The start request and the channel read loop run on different goroutines
// and are not jointly ordered; every delivery into the manager is tagged
// with the run generation it belongs to and checked against the lifecycle
// before it is applied, so late arrivals after a stop are ignored rather
// than serialized.
type Manager struct {
	sessionID string
	api       API
	dialer    Dialer
	emitter   EventEmitter
	lifecycle *Lifecycle
	diag      *stream.DiagLog

	mu            sync.Mutex
	live          stream.LiveState
	authoritative *stream.Result
	channel       Channel
}

// NewManager creates a manager for the given session and wires the channel
// lifetime to the lifecycle hooks.
func NewManager(sessionID string, api API, dialer Dialer, emitter EventEmitter) *Manager {
	m := &Manager{
		sessionID: sessionID,
		api:       api,
		dialer:    dialer,
		emitter:   emitter,
		lifecycle: &Lifecycle{},
		diag:      stream.NewDiagLog(512),
		live:      stream.NewLiveState(),
	}
	m.lifecycle.OnEnterExploring = m.openChannel
	m.lifecycle.OnExitExploring = m.closeChannel
	return m
}

// Start triggers an exploration run of count variants. The exploring flag
// flips on and the channel opens before the request is sent; when the
// request returns successfully its result supersedes whatever the channel
// delivered. On failure the prior authoritative state is left untouched and
// the error is returned for retry.
func (m *Manager) Start(ctx context.Context, count int) error {
	// Fresh live state before the channel opens, so no frame lands in the
	// previous run's view.
	m.mu.Lock()
	m.live = stream.NewLiveState()
	m.mu.Unlock()

	gen := m.lifecycle.Enter()
	m.emit("exploration:started", m.sessionID)

	result, err := m.api.StartExploration(ctx, m.sessionID, count)
	if err != nil {
		if m.lifecycle.CurrentIf(gen) {
			m.lifecycle.Exit()
		}
		m.emit("exploration:error", err.Error())
		return fmt.Errorf("start exploration: %w", err)
	}

	// Apply the authoritative result unless a newer run has started since.
	if m.lifecycle.Generation() == gen {
		m.lifecycle.Exit()
		m.mu.Lock()
		m.authoritative = result
		m.live = stream.FromResult(result)
		m.mu.Unlock()
		m.emit("exploration:completed", m.sessionID)
	}
	return nil
}

// Stop requests cancellation. The local flag flips off immediately; the
// server is not required to confirm before trailing channel messages cease,
// those are simply ignored. A failed stop request is surfaced for retry.
func (m *Manager) Stop(ctx context.Context) error {
	m.lifecycle.Exit()

	if err := m.api.StopExploration(ctx, m.sessionID); err != nil {
		return fmt.Errorf("stop exploration: %w", err)
	}
	return nil
}

// ObserveStatus reconciles the lifecycle with a server-reported status.
func (m *Manager) ObserveStatus(status SessionStatus) {
	m.lifecycle.ObserveStatus(status)
}

// Exploring reports whether a run is in flight.
func (m *Manager) Exploring() bool {
	return m.lifecycle.Exploring()
}

// Live returns a snapshot of the current live state. The snapshot is stable:
// the reducer copies before every change.
func (m *Manager) Live() stream.LiveState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// Authoritative returns the last completed run's result, or nil.
func (m *Manager) Authoritative() *stream.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authoritative
}

// Diagnostics returns a copy of the diagnostic log.
func (m *Manager) Diagnostics() []stream.DiagEntry {
	return m.diag.Entries()
}

// Reset discards live and authoritative state, as when the owning view is
// torn down. The channel closes via the lifecycle hook if it was open.
func (m *Manager) Reset() {
	m.lifecycle.Exit()

	m.mu.Lock()
	m.live = stream.NewLiveState()
	m.authoritative = nil
	m.mu.Unlock()
}

// openChannel is the OnEnterExploring hook.
func (m *Manager) openChannel(gen uint64) {
	ch, err := m.dialer.Dial(m.sessionID, func(raw []byte) {
		m.handleFrame(gen, raw)
	})
	if err != nil {
		// Transport errors are non-fatal: the run proceeds on the request
		// path alone and the last-known state is retained.
		log.Printf("[Explore] Channel dial failed for session %s: %v", m.sessionID, err)
		m.diag.Append(stream.DiagChannel, fmt.Sprintf("dial failed: %v", err))
		return
	}
	m.diag.Append(stream.DiagChannel, "channel opened")

	m.mu.Lock()
	m.channel = ch
	m.mu.Unlock()
}

// closeChannel is the OnExitExploring hook. Closing an already-closed
// channel is a no-op.
func (m *Manager) closeChannel() {
	m.mu.Lock()
	ch := m.channel
	m.channel = nil
	m.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			log.Printf("[Explore] Channel close: %v", err)
		}
		m.diag.Append(stream.DiagChannel, "channel closed")
	}
}

// handleFrame folds one raw channel frame into the live state. Frames from
// superseded or finished runs, and frames that fail to parse, are dropped
// without touching state.
func (m *Manager) handleFrame(gen uint64, raw []byte) {
	if !m.lifecycle.CurrentIf(gen) {
		m.diag.Append(stream.DiagDropped, "frame after exploring ended")
		return
	}

	msg, err := stream.Decode(raw)
	if err != nil {
		m.diag.Append(stream.DiagDropped, err.Error())
		return
	}

	m.mu.Lock()
	next, err := stream.Reduce(m.live, msg)
	if err != nil {
		m.mu.Unlock()
		m.diag.Append(stream.DiagDropped, err.Error())
		return
	}
	m.live = next
	m.mu.Unlock()

	if msg.Event == stream.EventLog {
		var data stream.LogData
		if json.Unmarshal(msg.Data, &data) == nil {
			m.diag.Append(stream.DiagServer, fmt.Sprintf("[%s] %s", data.Source, data.Message))
		}
	} else {
		m.diag.Append(stream.DiagFrame, msg.Event)
	}

	m.emit("exploration:update", m.Live())
}

func (m *Manager) emit(eventName string, payload interface{}) {
	if m.emitter != nil {
		m.emitter.Emit(eventName, payload)
	}
}
