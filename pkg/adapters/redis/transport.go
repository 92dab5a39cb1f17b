package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "storefront:host:"

// Transport implements ports.HostTransport on top of Redis.
// The host keeps the full snapshot under <prefix>context and announces
// partial updates on the <prefix>context-changed channel.
type Transport struct {
	client *backend.Client
	owned  bool
	prefix string
	viewID string
	logger *slog.Logger

	mu       sync.Mutex
	pubsub   *backend.PubSub
	identity *domain.Identity

	updates     chan ports.Update
	quit        chan struct{}
	forwardDone chan struct{}
	closeOnce   sync.Once
	updatesOnce sync.Once
}

var _ ports.HostTransport = (*Transport)(nil)

type Option func(*options)

type options struct {
	prefix string
	logger *slog.Logger
}

// WithPrefix sets the key prefix shared by the host and its views.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{prefix: defaultPrefix, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a Redis transport with its own client. Close releases the client.
func New(address, password string, db int, opts ...Option) *Transport {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	t := NewFromClient(rdb, opts...)
	t.owned = true
	return t
}

// NewFromClient creates a Redis transport from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Transport {
	o := buildOptions(opts)
	return &Transport{
		client:  client,
		prefix:  o.prefix,
		viewID:  uuid.NewString(),
		logger:  o.logger,
		updates: make(chan ports.Update, 64),
		quit:    make(chan struct{}),
	}
}

func contextKey(prefix string) string { return prefix + "context" }
func channelKey(prefix string) string { return prefix + "context-changed" }
func viewsKey(prefix string) string   { return prefix + "views" }

// ViewID identifies this view in the host's views registry.
func (t *Transport) ViewID() string {
	return t.viewID
}

// Initialize subscribes to updates before reading the snapshot, so no change
// published after the read is missed.
func (t *Transport) Initialize(ctx context.Context, identity domain.Identity) (domain.HostContext, error) {
	t.mu.Lock()
	if t.pubsub != nil {
		t.mu.Unlock()
		return domain.HostContext{}, domain.ErrAlreadyConnected
	}
	select {
	case <-t.quit:
		t.mu.Unlock()
		return domain.HostContext{}, domain.ErrSessionClosed
	default:
	}
	pubsub := t.client.Subscribe(ctx, channelKey(t.prefix))
	t.pubsub = pubsub
	t.mu.Unlock()

	if _, err := pubsub.Receive(ctx); err != nil {
		return domain.HostContext{}, fmt.Errorf("%w: subscribe: %v", domain.ErrHostUnavailable, err)
	}

	val, err := t.client.Get(ctx, contextKey(t.prefix)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.HostContext{}, fmt.Errorf("%w: no host context published", domain.ErrHostUnavailable)
		}
		return domain.HostContext{}, fmt.Errorf("%w: %v", domain.ErrHostUnavailable, err)
	}

	var hc domain.HostContext
	if err := json.Unmarshal(val, &hc); err != nil {
		return domain.HostContext{}, fmt.Errorf("failed to unmarshal host context: %w", err)
	}

	entry, err := json.Marshal(identity)
	if err != nil {
		return domain.HostContext{}, fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := t.client.HSet(ctx, viewsKey(t.prefix), t.viewID, entry).Err(); err != nil {
		return domain.HostContext{}, fmt.Errorf("failed to register view: %w", err)
	}
	done := make(chan struct{})
	t.mu.Lock()
	t.identity = &identity
	t.forwardDone = done
	t.mu.Unlock()

	go t.forward(pubsub.Channel(), done)

	t.logger.Debug("Subscribed to host context", "channel", channelKey(t.prefix))
	return hc, nil
}

func (t *Transport) forward(messages <-chan *backend.Message, done chan struct{}) {
	defer close(done)
	defer t.closeUpdates()

	for {
		select {
		case <-t.quit:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var update domain.HostContext
			u := ports.Update{}
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				u.Err = fmt.Errorf("malformed host update: %w", err)
			} else {
				u.Context = update
			}
			select {
			case t.updates <- u:
			case <-t.quit:
				return
			}
		}
	}
}

// Updates implements ports.HostTransport.
func (t *Transport) Updates() <-chan ports.Update {
	return t.updates
}

func (t *Transport) closeUpdates() {
	t.updatesOnce.Do(func() { close(t.updates) })
}

// Close unsubscribes, deregisters the view and closes the update channel.
func (t *Transport) Close() error {
	var errs []error
	t.closeOnce.Do(func() {
		close(t.quit)

		t.mu.Lock()
		pubsub, identity, forwardDone := t.pubsub, t.identity, t.forwardDone
		t.mu.Unlock()

		if identity != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := t.client.HDel(ctx, viewsKey(t.prefix), t.viewID).Err(); err != nil {
				errs = append(errs, fmt.Errorf("deregister view: %w", err))
			}
			cancel()
		}
		if pubsub != nil {
			if err := pubsub.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if forwardDone != nil {
			<-forwardDone
		}
		t.closeUpdates()

		if t.owned {
			if err := t.client.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
