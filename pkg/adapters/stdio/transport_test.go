package stdio_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/adapters/stdio"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closers []io.Closer

func (c closers) Close() error {
	for _, cl := range c {
		_ = cl.Close()
	}
	return nil
}

// pipes returns a transport connected to a serving HostPeer.
func pipes(t *testing.T, initial domain.HostContext) (*stdio.Transport, *stdio.HostPeer) {
	t.Helper()
	hostR, viewW := io.Pipe()
	viewR, hostW := io.Pipe()

	transport := stdio.New(viewR, viewW, stdio.WithCloser(closers{viewR, viewW}))
	peer := stdio.NewHostPeer(hostR, hostW, initial)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = peer.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		_ = transport.Close()
		_ = hostR.Close()
		_ = hostW.Close()
	})
	return transport, peer
}

func TestTransport_Contract(t *testing.T) {
	ports.RunHostTransportContract(t, func(t *testing.T, initial domain.HostContext) (ports.HostTransport, ports.HostDriver) {
		return pipes(t, initial)
	})
}

func TestTransport_HandshakeAnnouncesIdentity(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, peer := pipes(t, domain.HostContext{
		SafeAreaInsets: &domain.SafeAreaInsets{Bottom: domain.Float(34)},
	})

	hc, err := transport.Initialize(ctx, domain.Identity{Name: "Tira Beauty Store", Version: "1.0.0"})
	require.NoError(t, err)
	require.NotNil(t, hc.SafeAreaInsets)
	assert.Equal(t, 34.0, *hc.SafeAreaInsets.Bottom)
	assert.Nil(t, hc.SafeAreaInsets.Top)

	select {
	case <-peer.Ready():
	case <-ctx.Done():
		t.Fatal("host never received ui/notifications/initialized")
	}
	id, ok := peer.Identity()
	require.True(t, ok)
	assert.Equal(t, "Tira Beauty Store", id.Name)
}

// rawHost lets a test script the host side line by line.
type rawHost struct {
	in  *bufio.Scanner
	out io.Writer
}

func newRaw(t *testing.T) (*stdio.Transport, *rawHost) {
	t.Helper()
	hostR, viewW := io.Pipe()
	viewR, hostW := io.Pipe()
	transport := stdio.New(viewR, viewW, stdio.WithCloser(closers{viewR, viewW}))
	t.Cleanup(func() {
		_ = transport.Close()
		_ = hostR.Close()
		_ = hostW.Close()
	})
	return transport, &rawHost{in: bufio.NewScanner(hostR), out: hostW}
}

func (h *rawHost) next(t *testing.T) map[string]any {
	t.Helper()
	require.True(t, h.in.Scan(), "expected a message from the view")
	var msg map[string]any
	require.NoError(t, json.Unmarshal(h.in.Bytes(), &msg))
	return msg
}

func (h *rawHost) send(t *testing.T, line string) {
	t.Helper()
	_, err := io.WriteString(h.out, line+"\n")
	require.NoError(t, err)
}

func TestTransport_WireFormat(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, host := newRaw(t)

	type result struct {
		hc  domain.HostContext
		err error
	}
	done := make(chan result, 1)
	go func() {
		hc, err := transport.Initialize(ctx, domain.Identity{Name: "X", Version: "1.0.0"})
		done <- result{hc, err}
	}()

	req := host.next(t)
	assert.Equal(t, "2.0", req["jsonrpc"])
	assert.Equal(t, stdio.MethodInitialize, req["method"])
	params := req["params"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "X", "version": "1.0.0"}, params["appInfo"])

	// Fonts sent as a single CSS string are accepted.
	host.send(t, `{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2025-06-18","hostInfo":{"name":"h","version":"1"},`+
		`"hostContext":{"theme":"light","styles":{"css":{"fonts":"@import url(x.css);"}}}}}`)

	initialized := host.next(t)
	assert.Equal(t, stdio.MethodInitialized, initialized["method"])

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, domain.ThemeLight, r.hc.Theme)
	assert.Equal(t, []string{"@import url(x.css);"}, r.hc.Fonts())

	// A malformed line is reported, then a request from the host is rejected,
	// then a valid notification flows through.
	host.send(t, `{not json`)
	host.send(t, `{"jsonrpc":"2.0","id":"h-1","method":"ui/resource-teardown","params":{}}`)
	host.send(t, `{"jsonrpc":"2.0","method":"ui/notifications/host-context-changed","params":{"theme":"dark"}}`)

	u := <-transport.Updates()
	assert.Error(t, u.Err)

	reply := host.next(t)
	assert.Equal(t, "h-1", reply["id"])
	assert.EqualValues(t, -32601, reply["error"].(map[string]any)["code"])

	u = <-transport.Updates()
	require.NoError(t, u.Err)
	assert.Equal(t, domain.ThemeDark, u.Context.Theme)
	assert.Nil(t, u.Context.Styles)
}

func TestTransport_NotificationsBeforeHandshakeResponse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, host := newRaw(t)
	type result struct {
		hc  domain.HostContext
		err error
	}
	done := make(chan result, 1)
	go func() {
		hc, err := transport.Initialize(ctx, domain.Identity{Name: "X", Version: "1.0.0"})
		done <- result{hc, err}
	}()

	host.next(t)
	const pushes = 200
	for i := 0; i < pushes; i++ {
		host.send(t, fmt.Sprintf(`{"jsonrpc":"2.0","method":"ui/notifications/host-context-changed","params":{"locale":"l-%d"}}`, i))
	}
	host.send(t, `{"jsonrpc":"2.0","id":1,"result":{"hostContext":{"theme":"light"}}}`)
	assert.Equal(t, stdio.MethodInitialized, host.next(t)["method"])

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, domain.ThemeLight, r.hc.Theme)

	for i := 0; i < pushes; i++ {
		select {
		case u := <-transport.Updates():
			require.NoError(t, u.Err)
			assert.Equal(t, fmt.Sprintf("l-%d", i), u.Context.Locale)
		case <-ctx.Done():
			t.Fatalf("update %d never arrived", i)
		}
	}
}

func TestTransport_ErrorResponse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transport, host := newRaw(t)
	done := make(chan error, 1)
	go func() {
		_, err := transport.Initialize(ctx, domain.Identity{Name: "X", Version: "1.0.0"})
		done <- err
	}()

	host.next(t)
	host.send(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"network unreachable"}}`)

	err := <-done
	var rpcErr *stdio.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "network unreachable", rpcErr.Message)
}

func TestTransport_HostGoneBeforeHandshake(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	viewR, hostW := io.Pipe()
	require.NoError(t, hostW.Close())

	transport := stdio.New(viewR, io.Discard)
	defer transport.Close()

	_, err := transport.Initialize(ctx, domain.Identity{Name: "X", Version: "1.0.0"})
	assert.ErrorIs(t, err, domain.ErrHostUnavailable)

	_, ok := <-transport.Updates()
	assert.False(t, ok, "updates close when the host stream ends")
}
