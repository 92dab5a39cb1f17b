package domain

// SessionState is the lifecycle state of a host session.
type SessionState string

const (
	StateUnconnected SessionState = "unconnected"
	StateConnecting  SessionState = "connecting"
	StateConnected   SessionState = "connected"
	StateFailed      SessionState = "failed" // Terminal
)

// Identity is the static name and version the view announces to the host.
type Identity struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Version string `json:"version" yaml:"version" validate:"required"`
}

// Session represents the connection lifecycle between the view and its host.
type Session struct {
	ID       string
	Identity Identity
	State    SessionState

	// Err holds the connect failure when State is StateFailed.
	Err error
}

// IsTerminal reports whether the session can no longer change state.
func (s Session) IsTerminal() bool {
	return s.State == StateFailed
}
