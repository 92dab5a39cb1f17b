package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
)

const maxMessageSize = 4 * 1024 * 1024

// Transport implements ports.HostTransport over line-delimited JSON-RPC 2.0.
// It is the view side: it sends ui/initialize and receives
// ui/notifications/host-context-changed.
type Transport struct {
	r      io.Reader
	w      io.Writer
	closer io.Closer
	logger *slog.Logger

	protocolVersion string

	writeMu sync.Mutex
	nextID  atomic.Int64

	pendingMu sync.Mutex
	pending   map[string]chan envelope

	// Host messages are buffered without bound so that readLoop keeps
	// resolving responses while the consumer is not draining updates.
	backlogMu sync.Mutex
	backlog   []ports.Update
	ended     bool
	wake      chan struct{}
	updates   chan ports.Update

	startOnce sync.Once
	readDone  chan struct{}
	readErr   error
	quit      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var _ ports.HostTransport = (*Transport)(nil)

// Option configures the Transport.
type Option func(*Transport)

// WithLogger configures a logger for the Transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithCloser registers a resource released by Close, typically the
// underlying pipe, so that a blocked read returns.
func WithCloser(c io.Closer) Option {
	return func(t *Transport) {
		t.closer = c
	}
}

// WithProtocolVersion overrides the announced protocol version.
func WithProtocolVersion(v string) Option {
	return func(t *Transport) {
		t.protocolVersion = v
	}
}

// New creates a transport reading host messages from r and writing to w.
// No I/O happens until Initialize.
func New(r io.Reader, w io.Writer, opts ...Option) *Transport {
	t := &Transport{
		r:               r,
		w:               w,
		logger:          logging.NewNop(),
		protocolVersion: ProtocolVersion,
		pending:         make(map[string]chan envelope),
		wake:            make(chan struct{}, 1),
		updates:         make(chan ports.Update),
		readDone:        make(chan struct{}),
		quit:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.forward()
	return t
}

// Initialize sends ui/initialize and returns the host context from the response.
func (t *Transport) Initialize(ctx context.Context, identity domain.Identity) (domain.HostContext, error) {
	t.startOnce.Do(func() {
		go t.readLoop()
	})

	raw, err := t.call(ctx, MethodInitialize, initializeParams{
		AppInfo:         implementation{Name: identity.Name, Version: identity.Version},
		AppCapabilities: map[string]any{},
		ProtocolVersion: t.protocolVersion,
	})
	if err != nil {
		return domain.HostContext{}, err
	}

	var result initializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.HostContext{}, fmt.Errorf("decode initialize result: %w", err)
	}
	hc, err := decodeHostContext(result.HostContext)
	if err != nil {
		return domain.HostContext{}, err
	}

	t.logger.Debug("Host initialized",
		"host", result.HostInfo.Name,
		"host_version", result.HostInfo.Version,
		"protocol", result.ProtocolVersion,
	)

	if err := t.write(notification{JSONRPC: jsonrpcVersion, Method: MethodInitialized}); err != nil {
		return domain.HostContext{}, fmt.Errorf("send initialized: %w", err)
	}
	return hc, nil
}

// Updates implements ports.HostTransport.
func (t *Transport) Updates() <-chan ports.Update {
	return t.updates
}

// Close stops delivering updates and releases the underlying resources.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.quit)
		if t.closer != nil {
			t.closeErr = t.closer.Close()
		}
		t.endUpdates()
	})
	return t.closeErr
}

func (t *Transport) endUpdates() {
	t.backlogMu.Lock()
	t.ended = true
	t.backlogMu.Unlock()
	t.signal()
}

func (t *Transport) emit(u ports.Update) {
	t.backlogMu.Lock()
	if !t.ended {
		t.backlog = append(t.backlog, u)
	}
	t.backlogMu.Unlock()
	t.signal()
}

func (t *Transport) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// forward hands buffered updates to the consumer in arrival order. It owns
// the updates channel and closes it once the stream ended and the backlog is
// drained, or right away on Close.
func (t *Transport) forward() {
	defer close(t.updates)
	for {
		t.backlogMu.Lock()
		batch := t.backlog
		t.backlog = nil
		ended := t.ended
		t.backlogMu.Unlock()

		for _, u := range batch {
			select {
			case t.updates <- u:
			case <-t.quit:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if ended {
			return
		}
		select {
		case <-t.wake:
		case <-t.quit:
			return
		}
	}
}

func (t *Transport) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := t.nextID.Add(1)
	key := strconv.FormatInt(id, 10)
	ch := make(chan envelope, 1)

	t.pendingMu.Lock()
	t.pending[key] = ch
	t.pendingMu.Unlock()
	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, key)
		t.pendingMu.Unlock()
	}()

	if err := t.write(request{JSONRPC: jsonrpcVersion, ID: id, Method: method, Params: params}); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case env := <-ch:
		if env.Error != nil {
			return nil, env.Error
		}
		return env.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.quit:
		return nil, domain.ErrSessionClosed
	case <-t.readDone:
		return nil, fmt.Errorf("%w: %v", domain.ErrHostUnavailable, t.readErr)
	}
}

func (t *Transport) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err = t.w.Write(data)
	return err
}

func (t *Transport) readLoop() {
	scanner := bufio.NewScanner(t.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		t.handle(line)
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case <-t.quit:
	default:
		if !errors.Is(err, io.EOF) {
			t.logger.Warn("Host stream failed", "error", err)
		}
	}
	t.readErr = err
	close(t.readDone)
	t.endUpdates()
}

func (t *Transport) handle(line []byte) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		t.emit(ports.Update{Err: fmt.Errorf("malformed host message: %w", err)})
		return
	}

	switch {
	case env.Method == "" && env.hasID():
		t.resolve(env)
	case env.Method != "" && env.hasID():
		// Requests from the host are not part of this view's contract.
		t.logger.Debug("Rejecting host request", "method", env.Method)
		err := t.write(response{
			JSONRPC: jsonrpcVersion,
			ID:      env.ID,
			Error:   &RPCError{Code: mcp.METHOD_NOT_FOUND, Message: "method not found: " + env.Method},
		})
		if err != nil {
			t.emit(ports.Update{Err: fmt.Errorf("reply to %s: %w", env.Method, err)})
		}
	case env.Method == MethodHostContextChanged:
		hc, err := decodeNotificationContext(line)
		if err != nil {
			t.emit(ports.Update{Err: err})
			return
		}
		t.emit(ports.Update{Context: hc})
	case env.Method != "":
		t.logger.Debug("Ignoring host notification", "method", env.Method)
	default:
		t.emit(ports.Update{Err: fmt.Errorf("invalid host message: %s", line)})
	}
}

func (t *Transport) resolve(env envelope) {
	key := idKey(env.ID)
	t.pendingMu.Lock()
	ch, ok := t.pending[key]
	t.pendingMu.Unlock()
	if !ok {
		t.logger.Debug("Response for unknown request", "id", key)
		return
	}
	select {
	case ch <- env:
	default:
		t.logger.Debug("Duplicate response", "id", key)
	}
}
