// Package events defines the typed events emitted during a scan run.
// All events are designed for JSON serialization, so observability hooks
// and CI integrations can consume them without knowing orchestrator
// internals.
//
// The BaseEvent struct is embedded in each concrete event type.
package events

import (
	"time"
)

// EventType represents the type of scan event.
type EventType string

const (
	// EventTypeStart indicates a scan run has started.
	EventTypeStart EventType = "start"
	// EventTypeServerResult indicates one server reached a terminal status.
	EventTypeServerResult EventType = "server_result"
	// EventTypeSummary carries the final folded counters.
	EventTypeSummary EventType = "summary"
	// EventTypeComplete indicates the run finished and output was written.
	EventTypeComplete EventType = "complete"
)

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	RunID() string
}

// BaseEvent contains common fields for all events.
// It is designed to be embedded in specific event types.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Run  string    `json:"run_id"`
}

// EventType returns the type of this event.
func (e BaseEvent) EventType() EventType { return e.Type }

// Timestamp returns when this event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// RunID returns the unique identifier for the run that produced this event.
func (e BaseEvent) RunID() string { return e.Run }

// NewBase builds a BaseEvent stamped with the current time.
func NewBase(t EventType, runID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now(), Run: runID}
}
