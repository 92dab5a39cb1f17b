package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost_Contract(t *testing.T) {
	ports.RunHostTransportContract(t, func(t *testing.T, initial domain.HostContext) (ports.HostTransport, ports.HostDriver) {
		host := memory.NewHost(initial)
		return host, host
	})
}

func TestHost_FailedHandshake(t *testing.T) {
	host := memory.NewHost(domain.HostContext{})
	host.Fail(errors.New("network unreachable"))

	_, err := host.Initialize(context.Background(), domain.Identity{Name: "X", Version: "1.0.0"})
	assert.EqualError(t, err, "network unreachable")

	_, announced := host.Identity()
	assert.False(t, announced)
}

func TestHost_RecordsIdentityAndSnapshot(t *testing.T) {
	ctx := context.Background()
	host := memory.NewHost(domain.HostContext{Theme: domain.ThemeLight})
	defer host.Close()

	_, err := host.Initialize(ctx, domain.Identity{Name: "X", Version: "1.0.0"})
	require.NoError(t, err)

	id, ok := host.Identity()
	require.True(t, ok)
	assert.Equal(t, "X", id.Name)

	require.NoError(t, host.Push(ctx, domain.HostContext{Locale: "en-IN"}))
	snap := host.Snapshot()
	assert.Equal(t, domain.ThemeLight, snap.Theme)
	assert.Equal(t, "en-IN", snap.Locale)
}

func TestHost_PushAfterClose(t *testing.T) {
	host := memory.NewHost(domain.HostContext{})
	require.NoError(t, host.Close())
	require.NoError(t, host.Close())

	err := host.Push(context.Background(), domain.HostContext{Theme: domain.ThemeDark})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	_, err = host.Initialize(context.Background(), domain.Identity{Name: "X", Version: "1"})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestHost_CanceledHandshake(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	host := memory.NewHost(domain.HostContext{})
	_, err := host.Initialize(ctx, domain.Identity{Name: "X", Version: "1"})
	assert.ErrorIs(t, err, context.Canceled)
}
