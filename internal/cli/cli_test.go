package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/internal/presentation/tui"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenHost_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Host.Initial = domain.HostContext{Theme: domain.ThemeDark}

	host, err := cli.OpenHost(cfg, logging.NewNop())
	require.NoError(t, err)
	defer host.Close()

	require.NotNil(t, host.Pusher)
	assert.Nil(t, host.Seed)

	app := storefront.New(host.Transport)
	defer app.Close()
	require.NoError(t, app.Start(context.Background()))
	assert.Equal(t, domain.ThemeDark, app.HostContext().Theme)
}

func TestOpenHost_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Host.Transport = config.TransportRedis
	cfg.Host.Redis.Addr = mr.Addr()
	cfg.Host.Redis.Prefix = "test:"
	cfg.Host.Initial = domain.HostContext{Theme: domain.ThemeLight}

	host, err := cli.OpenHost(cfg, logging.NewNop())
	require.NoError(t, err)
	defer host.Close()

	ctx := context.Background()
	require.NotNil(t, host.Seed)
	require.NoError(t, host.Seed(ctx))
	assert.True(t, mr.Exists("test:context"))

	app := storefront.New(host.Transport)
	require.NoError(t, app.Start(ctx))

	require.NoError(t, host.Pusher.Push(ctx, domain.HostContext{Theme: domain.ThemeDark}))
	require.Eventually(t, func() bool { return app.HostContext().Theme == domain.ThemeDark }, time.Second, 5*time.Millisecond)
	require.NoError(t, app.Close())
}

func TestOpenHost_UnknownTransport(t *testing.T) {
	cfg := config.Default()
	cfg.Host.Transport = "carrier-pigeon"

	_, err := cli.OpenHost(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func TestRunView_Once(t *testing.T) {
	host := memory.NewHost(domain.HostContext{Theme: domain.ThemeDark})
	doc := tui.NewDocument(domain.ThemeLight)
	app := storefront.New(host, storefront.WithDocument(doc))
	defer app.Close()

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := cli.RunView(ctx, app, doc, cli.ViewOptions{Out: &out, Width: 120, GlamourStyle: "notty"})
	require.NoError(t, err)

	assert.Equal(t, domain.ThemeDark, doc.Theme())
	assert.Contains(t, out.String(), "Tira Beauty Store")
	assert.Equal(t, 5, strings.Count(out.String(), "[ Add to Cart ]"))
}

func TestRunView_FailedConnect(t *testing.T) {
	host := memory.NewHost(domain.HostContext{})
	host.Fail(errors.New("network unreachable"))
	doc := tui.NewDocument(domain.ThemeLight)
	app := storefront.New(host, storefront.WithDocument(doc))
	defer app.Close()

	var out bytes.Buffer
	err := cli.RunView(context.Background(), app, doc, cli.ViewOptions{Out: &out, GlamourStyle: "notty"})
	require.EqualError(t, err, "network unreachable")
	assert.Contains(t, out.String(), "network unreachable")
}

func TestSignalContext_CancelledElsewhere(t *testing.T) {
	sc := cli.NewSignalContext(context.Background())
	sc.Cancel()

	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
