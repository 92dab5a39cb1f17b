package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/presentation/html"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, connect bool) *Server {
	t.Helper()
	host := memory.NewHost(domain.HostContext{Theme: domain.ThemeDark})
	doc := html.NewDocument()
	app := storefront.New(host, storefront.WithDocument(doc))
	t.Cleanup(func() { _ = app.Close() })
	if connect {
		require.NoError(t, app.Start(context.Background()))
	}
	return NewServer(app, doc)
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t, false)

	resp, err := s.handleListProducts(context.Background(), mcp.CallToolRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Tira Beauty Store", resp.Store)
	require.Len(t, resp.Products, 5)
	first := resp.Products[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "₹340", first.Price)
	assert.Equal(t, "₹398", first.ComparePrice)
	assert.Equal(t, 15, first.Discount)
	assert.Equal(t, "Eye Shadow", resp.Products[4].Category)
}

func TestAddToCart(t *testing.T) {
	s := newTestServer(t, false)

	resp, err := s.handleAddToCart(context.Background(), mcp.CallToolRequest{}, CartArgs{ProductID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Added Lakme 9 To 5 Matte To Glass Liquid Lip Color - Passion Pink to cart", resp.Message)

	_, err = s.handleAddToCart(context.Background(), mcp.CallToolRequest{}, CartArgs{ProductID: 6})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestShowCatalog(t *testing.T) {
	s := newTestServer(t, true)

	res, err := s.handleShowCatalog(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var found bool
	for _, c := range res.Content {
		embedded, ok := c.(mcp.EmbeddedResource)
		if !ok {
			continue
		}
		text, ok := embedded.Resource.(mcp.TextResourceContents)
		require.True(t, ok)
		assert.Equal(t, CatalogURI, text.URI)
		assert.Equal(t, html.MimeType, text.MIMEType)
		assert.Contains(t, text.Text, `class="card"`)
		assert.NotContains(t, text.Text, "EventSource")
		found = true
	}
	assert.True(t, found, "catalog resource embedded in the result")
}

func TestReadCatalog_BeforeConnect(t *testing.T) {
	s := newTestServer(t, false)

	contents, err := s.handleReadCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Loading store...")
}

func TestToolsListed(t *testing.T) {
	s := newTestServer(t, false)
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"list_products", "show_catalog", "add_to_cart"} {
		assert.Contains(t, string(raw), name)
	}
}
