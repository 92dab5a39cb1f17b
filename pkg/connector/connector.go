package connector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/google/uuid"
)

// Connector maintains a single logical session with the host.
//
// Lifecycle: unconnected -> connecting -> connected | failed.
// Failed is terminal; a retry needs a new Connector.
//
// Host updates are merged in arrival order by a pump goroutine and handed
// to a single dispatcher goroutine, which invokes the installed hooks one
// event at a time.
type Connector struct {
	identity  domain.Identity
	transport ports.HostTransport
	logger    *slog.Logger
	id        string

	mu      sync.Mutex
	state   domain.SessionState
	err     error
	hooks   []domain.SessionHooks
	started bool

	snapshot atomic.Pointer[domain.HostContext]
	queue    *eventQueue

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	doneOnce  sync.Once
	closeErr  error
}

// Option configures the Connector.
type Option func(*Connector)

// WithLogger configures a logger for the Connector.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithHooks installs session hooks at construction time.
func WithHooks(hooks domain.SessionHooks) Option {
	return func(c *Connector) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(c *Connector) {
		c.id = id
	}
}

// New creates a Connector in the unconnected state. It performs no I/O.
func New(identity domain.Identity, transport ports.HostTransport, opts ...Option) *Connector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connector{
		identity:  identity,
		transport: transport,
		logger:    logging.NewNop(),
		id:        uuid.NewString(),
		state:     domain.StateUnconnected,
		queue:     newEventQueue(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("session_id", c.id)
	c.snapshot.Store(&domain.HostContext{})
	return c
}

// Subscribe installs hooks. Hooks are called in subscription order.
func (c *Connector) Subscribe(hooks domain.SessionHooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hooks)
}

// Connect performs the handshake with the host.
// On success the initial snapshot is stored before the session is exposed as
// connected. On failure the host error is returned unchanged and the session
// becomes failed. Calling Connect more than once returns domain.ErrAlreadyConnected.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.StateUnconnected {
		c.mu.Unlock()
		return domain.ErrAlreadyConnected
	}
	c.state = domain.StateConnecting
	c.mu.Unlock()

	c.logger.Debug("Connecting to host", "name", c.identity.Name, "version", c.identity.Version)

	initial, err := c.transport.Initialize(ctx, c.identity)
	if err != nil {
		c.fail(err)
		return err
	}

	snap := initial.Clone()
	c.snapshot.Store(&snap)

	// Close reads started under mu after canceling, so checking the context
	// here decides which side tears the session down.
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		c.fail(domain.ErrSessionClosed)
		return domain.ErrSessionClosed
	}
	c.state = domain.StateConnected
	c.started = true
	c.mu.Unlock()

	c.logger.Info("Connected to host", "theme", snap.Theme)

	c.queue.push(event{typ: domain.EventConnected, update: snap.Clone(), snapshot: snap.Clone()})
	go c.dispatch()
	go c.pump()
	return nil
}

func (c *Connector) fail(err error) {
	c.mu.Lock()
	c.state = domain.StateFailed
	c.err = err
	c.mu.Unlock()

	c.logger.Error("Host connection failed", "error", err)
	if cerr := c.transport.Close(); cerr != nil {
		c.logger.Debug("Transport close after failure", "error", cerr)
	}
	c.queue.close()
	c.finish()
}

// CurrentContext returns the latest known snapshot. It is empty until the
// session is connected and never fails.
func (c *Connector) CurrentContext() domain.HostContext {
	return c.snapshot.Load().Clone()
}

// State returns the current lifecycle state.
func (c *Connector) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a view of the session.
func (c *Connector) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Session{
		ID:       c.id,
		Identity: c.identity,
		State:    c.state,
		Err:      c.err,
	}
}

// ReportError sends an advisory error to the OnError hooks.
// It never changes the session state. Errors reported before the session is
// connected are only logged.
func (c *Connector) ReportError(err error) {
	if err == nil {
		return
	}
	if c.State() != domain.StateConnected {
		c.logger.Warn("Dropping error reported outside a connected session", "error", err)
		return
	}
	if !c.queue.push(event{typ: domain.EventError, err: err}) {
		c.logger.Debug("Dropping error reported after close", "error", err)
	}
}

// Done is closed once the session has ended and all pending events were delivered.
func (c *Connector) Done() <-chan struct{} {
	return c.done
}

// Close ends the session. Pending events are still delivered.
func (c *Connector) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.closeErr = c.transport.Close()

		c.mu.Lock()
		started := c.started
		c.mu.Unlock()
		if !started {
			c.queue.close()
			c.finish()
		}
	})
	return c.closeErr
}

func (c *Connector) finish() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// pump merges host updates in arrival order and enqueues them for delivery.
func (c *Connector) pump() {
	defer c.queue.close()

	updates := c.transport.Updates()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				c.logger.Info("Host session ended")
				return
			}
			if u.Err != nil {
				c.queue.push(event{typ: domain.EventError, err: u.Err})
				continue
			}

			prev := c.snapshot.Load()
			next := domain.Merge(*prev, u.Context)
			c.snapshot.Store(&next)

			if diff := domain.Diff(c.id, *prev, next); diff != nil {
				c.logger.Debug("Host context changed", "facets", diff.Facets)
			}

			c.queue.push(event{
				typ:      domain.EventHostContextChanged,
				update:   u.Context.Clone(),
				snapshot: next.Clone(),
			})
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connector) dispatch() {
	defer c.finish()
	for {
		ev, ok := c.queue.pop()
		if !ok {
			return
		}
		c.deliver(ev)
	}
}

func (c *Connector) deliver(ev event) {
	c.mu.Lock()
	hooks := make([]domain.SessionHooks, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	base := domain.EventBase{
		Timestamp: time.Now(),
		Type:      ev.typ,
		SessionID: c.id,
	}

	switch ev.typ {
	case domain.EventConnected, domain.EventHostContextChanged:
		payload := &domain.HostContextEvent{EventBase: base, Update: ev.update, Snapshot: ev.snapshot}
		for _, h := range hooks {
			fn := h.OnHostContextChanged
			if ev.typ == domain.EventConnected {
				fn = h.OnConnected
			}
			if fn == nil {
				continue
			}
			c.safeCall(ev.typ, func() { fn(c.ctx, payload) })
		}
	case domain.EventError:
		c.logger.Warn("Host session error", "error", ev.err)
		payload := &domain.ErrorEvent{EventBase: base, Err: ev.err}
		for _, h := range hooks {
			if h.OnError == nil {
				continue
			}
			c.safeCall(ev.typ, func() { h.OnError(c.ctx, payload) })
		}
	}
}

// safeCall runs a hook, turning a panic into an advisory error.
// Panics in error hooks are only logged to avoid feedback loops.
func (c *Connector) safeCall(typ domain.EventType, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s hook panicked: %v", typ, r)
			if typ == domain.EventError {
				c.logger.Error("Error hook panicked", "error", err)
				return
			}
			c.ReportError(err)
		}
	}()
	fn()
}
