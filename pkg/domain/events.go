package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventConnected          EventType = "connected"
	EventHostContextChanged EventType = "host_context_changed"
	EventError              EventType = "error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// HostContextEvent carries a host context change.
// On EventConnected, Update is the full initial snapshot.
type HostContextEvent struct {
	EventBase
	Update   HostContext `json:"update"`
	Snapshot HostContext `json:"snapshot"`
}

// ErrorEvent carries a non-fatal runtime error.
type ErrorEvent struct {
	EventBase
	Err error `json:"-"`
}

// SessionHooks defines callbacks for host session events.
// Hooks are invoked one at a time, in event order, never concurrently.
type SessionHooks struct {
	OnConnected          func(context.Context, *HostContextEvent)
	OnHostContextChanged func(context.Context, *HostContextEvent)
	OnError              func(context.Context, *ErrorEvent)
}

// ErrorReporter receives advisory errors.
type ErrorReporter interface {
	ReportError(err error)
}
