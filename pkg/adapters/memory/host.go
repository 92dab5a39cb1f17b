package memory

import (
	"context"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// Host is an in-process host. It implements ports.HostTransport for the view
// side and offers Push/RaiseError for the host side.
// Safe for concurrent use.
type Host struct {
	mu       sync.Mutex
	snapshot domain.HostContext
	failErr  error
	identity *domain.Identity
	closed   bool

	updates   chan ports.Update
	quit      chan struct{}
	closeOnce sync.Once
}

var _ ports.HostTransport = (*Host)(nil)

// NewHost creates a host that answers the handshake with the given snapshot.
func NewHost(initial domain.HostContext) *Host {
	return &Host{
		snapshot: initial.Clone(),
		updates:  make(chan ports.Update, 64),
		quit:     make(chan struct{}),
	}
}

// Fail makes the next handshake fail with err.
func (h *Host) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failErr = err
}

// Initialize records the view identity and returns the host snapshot.
func (h *Host) Initialize(ctx context.Context, identity domain.Identity) (domain.HostContext, error) {
	if err := ctx.Err(); err != nil {
		return domain.HostContext{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return domain.HostContext{}, domain.ErrSessionClosed
	}
	if h.failErr != nil {
		return domain.HostContext{}, h.failErr
	}
	h.identity = &identity
	return h.snapshot.Clone(), nil
}

// Updates implements ports.HostTransport.
func (h *Host) Updates() <-chan ports.Update {
	return h.updates
}

// Push merges the update into the host snapshot and delivers it to the view.
func (h *Host) Push(ctx context.Context, update domain.HostContext) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return domain.ErrSessionClosed
	}
	h.snapshot = domain.Merge(h.snapshot, update)
	return h.send(ctx, ports.Update{Context: update.Clone()})
}

// RaiseError delivers a runtime error to the view.
func (h *Host) RaiseError(ctx context.Context, err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return domain.ErrSessionClosed
	}
	return h.send(ctx, ports.Update{Err: err})
}

// send must be called with h.mu held.
func (h *Host) send(ctx context.Context, u ports.Update) error {
	select {
	case h.updates <- u:
		return nil
	case <-h.quit:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Identity returns the identity announced by the view, if any.
func (h *Host) Identity() (domain.Identity, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity == nil {
		return domain.Identity{}, false
	}
	return *h.identity, true
}

// Snapshot returns the host's own merged view of the context.
func (h *Host) Snapshot() domain.HostContext {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot.Clone()
}

// Close ends the session. It is safe to call more than once.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.mu.Lock()
		h.closed = true
		close(h.updates)
		h.mu.Unlock()
	})
	return nil
}
