package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HostDriver plays the host side of a transport in contract tests.
type HostDriver interface {
	// Push delivers a partial host-context update to the view.
	Push(ctx context.Context, update domain.HostContext) error
}

// TransportFactory builds a fresh transport whose host starts with the given snapshot.
type TransportFactory func(t *testing.T, initial domain.HostContext) (HostTransport, HostDriver)

// RunHostTransportContract runs a suite of tests to verify that a HostTransport
// implementation adheres to the defined interface contract.
func RunHostTransportContract(t *testing.T, factory TransportFactory) {
	identity := domain.Identity{Name: "contract-view", Version: "1.0.0"}

	t.Run("Initialize Returns Snapshot", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		initial := domain.HostContext{
			Theme:  domain.ThemeLight,
			Styles: &domain.Styles{Variables: map[string]string{"--color-text-primary": "#111"}},
		}
		transport, _ := factory(t, initial)
		defer transport.Close()

		got, err := transport.Initialize(ctx, identity)
		require.NoError(t, err, "Initialize should not return error")
		assert.Equal(t, domain.ThemeLight, got.Theme)
		assert.Equal(t, "#111", got.Variables()["--color-text-primary"])
	})

	t.Run("Updates Arrive In Order", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		transport, host := factory(t, domain.HostContext{Theme: domain.ThemeLight})
		defer transport.Close()

		_, err := transport.Initialize(ctx, identity)
		require.NoError(t, err)

		require.NoError(t, host.Push(ctx, domain.HostContext{Theme: domain.ThemeDark}))
		require.NoError(t, host.Push(ctx, domain.HostContext{
			SafeAreaInsets: &domain.SafeAreaInsets{Top: domain.Float(20)},
		}))

		first := receive(t, ctx, transport)
		assert.Equal(t, domain.ThemeDark, first.Theme)

		second := receive(t, ctx, transport)
		require.NotNil(t, second.SafeAreaInsets)
		assert.Equal(t, 20.0, *second.SafeAreaInsets.Top)
		assert.Nil(t, second.SafeAreaInsets.Left, "absent sides must stay absent")
		assert.Empty(t, second.Theme, "updates must be partial")
	})

	t.Run("Close Ends Updates", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		transport, _ := factory(t, domain.HostContext{})
		_, err := transport.Initialize(ctx, identity)
		require.NoError(t, err)

		require.NoError(t, transport.Close())

		for {
			select {
			case _, ok := <-transport.Updates():
				if !ok {
					return
				}
			case <-ctx.Done():
				t.Fatal("Updates channel was not closed after Close")
			}
		}
	})
}

func receive(t *testing.T, ctx context.Context, transport HostTransport) domain.HostContext {
	t.Helper()
	for {
		select {
		case u, ok := <-transport.Updates():
			require.True(t, ok, "Updates closed unexpectedly")
			if u.Err != nil {
				t.Logf("transport reported error: %v", u.Err)
				continue
			}
			return u.Context
		case <-ctx.Done():
			t.Fatal("timed out waiting for update")
			return domain.HostContext{}
		}
	}
}
