package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// HostPeer is the host side of the stdio protocol. It answers ui/initialize
// with its snapshot and pushes host-context changes. It is used to drive a
// view over pipes, e.g. in tests or when embedding the view as a subprocess.
type HostPeer struct {
	r    io.Reader
	w    io.Writer
	info implementation

	mu       sync.Mutex
	snapshot domain.HostContext
	identity *domain.Identity
	ready    chan struct{}
	once     sync.Once

	writeMu sync.Mutex
}

// NewHostPeer creates a host peer reading view messages from r and writing to w.
func NewHostPeer(r io.Reader, w io.Writer, initial domain.HostContext) *HostPeer {
	return &HostPeer{
		r:        r,
		w:        w,
		info:     implementation{Name: "storefront-host", Version: "1.0.0"},
		snapshot: initial.Clone(),
		ready:    make(chan struct{}),
	}
}

// Serve handles view messages until r is exhausted or ctx is done.
func (h *HostPeer) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(h.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			continue
		}
		switch {
		case env.Method == MethodInitialize && env.hasID():
			if err := h.answerInitialize(env); err != nil {
				return err
			}
		case env.Method == MethodInitialized:
			h.once.Do(func() { close(h.ready) })
		case env.hasID() && env.Method != "":
			err := h.write(response{
				JSONRPC: jsonrpcVersion,
				ID:      env.ID,
				Error:   &RPCError{Code: mcp.METHOD_NOT_FOUND, Message: "method not found: " + env.Method},
			})
			if err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func (h *HostPeer) answerInitialize(env envelope) error {
	var params initializeParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		return h.write(response{
			JSONRPC: jsonrpcVersion,
			ID:      env.ID,
			Error:   &RPCError{Code: mcp.INVALID_PARAMS, Message: err.Error()},
		})
	}

	h.mu.Lock()
	h.identity = &domain.Identity{Name: params.AppInfo.Name, Version: params.AppInfo.Version}
	snap := h.snapshot.Clone()
	h.mu.Unlock()

	wire, err := encodeHostContext(snap)
	if err != nil {
		return fmt.Errorf("encode host context: %w", err)
	}
	return h.write(response{
		JSONRPC: jsonrpcVersion,
		ID:      env.ID,
		Result: initializeResult{
			ProtocolVersion:  params.ProtocolVersion,
			HostInfo:         h.info,
			HostCapabilities: map[string]any{},
			HostContext:      wire,
		},
	})
}

// Ready is closed once the view confirmed the handshake.
func (h *HostPeer) Ready() <-chan struct{} {
	return h.ready
}

// Identity returns the identity announced by the view, if any.
func (h *HostPeer) Identity() (domain.Identity, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity == nil {
		return domain.Identity{}, false
	}
	return *h.identity, true
}

// Push sends a partial host-context update to the view.
func (h *HostPeer) Push(ctx context.Context, update domain.HostContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	h.snapshot = domain.Merge(h.snapshot, update)
	h.mu.Unlock()

	wire, err := encodeHostContext(update)
	if err != nil {
		return fmt.Errorf("encode host context: %w", err)
	}
	return h.write(notification{JSONRPC: jsonrpcVersion, Method: MethodHostContextChanged, Params: wire})
}

func (h *HostPeer) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_, err = h.w.Write(data)
	return err
}
