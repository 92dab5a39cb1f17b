package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// Update is a message received from the host after the handshake.
// Exactly one of Context or Err is meaningful: a non-nil Err reports a
// runtime problem on the channel (e.g. a malformed payload).
type Update struct {
	Context domain.HostContext
	Err     error
}

// HostTransport defines the client side of the host protocol.
type HostTransport interface {
	// Initialize announces the identity and returns the host's full context snapshot.
	Initialize(ctx context.Context, identity domain.Identity) (domain.HostContext, error)

	// Updates yields partial host-context updates in arrival order.
	// The channel is closed when the session ends.
	Updates() <-chan Update

	// Close ends the session and releases the underlying resources.
	Close() error
}
