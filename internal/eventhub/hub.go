// internal/eventhub/hub.go
package eventhub

import (
	"context"
	"log"
)

// Broadcaster delivers events to whatever surface is attached (a websocket
// bridge, a TUI, a test recorder).
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// EventHub is the single fan-out point for client-side events.
type EventHub struct {
	ctx         context.Context
	broadcaster Broadcaster
}

// New creates a new EventHub.
func New(ctx context.Context) *EventHub {
	return &EventHub{ctx: ctx}
}

// SetBroadcaster attaches the delivery surface.
func (h *EventHub) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

// emit is the single delivery path.
func (h *EventHub) emit(eventName string, payload interface{}) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastEvent(eventName, payload)
		return
	}
	log.Printf("[EventHub] %s (no broadcaster attached)", eventName)
}

// Emit is the generic delivery method; the exploration manager publishes
// through it.
func (h *EventHub) Emit(eventName string, payload interface{}) {
	h.emit(eventName, payload)
}

// Reference image events.

type ReferenceChangedEvent struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

func (h *EventHub) EmitReferenceChanged(event ReferenceChangedEvent) {
	h.emit("reference:changed", event)
}

// Session events.

type SessionStatusEvent struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

func (h *EventHub) EmitSessionStatus(event SessionStatusEvent) {
	h.emit("session:status", event)
}

// Tree events.

type TreeUpdatedEvent struct {
	SessionID         string `json:"session_id"`
	NodeCount         int    `json:"node_count"`
	CurrentSnapshotID string `json:"current_snapshot_id"`
	FromCache         bool   `json:"from_cache"`
}

func (h *EventHub) EmitTreeUpdated(event TreeUpdatedEvent) {
	h.emit("tree:updated", event)
}
