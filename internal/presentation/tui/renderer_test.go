package tui_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/storefront/internal/presentation/tui"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns(t *testing.T) {
	width := func(w float64) domain.HostContext {
		return domain.HostContext{ContainerDimensions: &domain.Dimensions{Width: &w}}
	}

	assert.Equal(t, 3, tui.Columns(width(900), 200))
	assert.Equal(t, 1, tui.Columns(width(100), 200), "at least one column")
	assert.Equal(t, 2, tui.Columns(domain.HostContext{}, 80))
	assert.Equal(t, 1, tui.Columns(domain.HostContext{}, 0))
}

func TestRenderer_States(t *testing.T) {
	r := tui.NewRenderer(tui.NewDocument(domain.ThemeDark), tui.WithGlamourStyle("notty"))

	out, err := r.Render(domain.ViewState{Status: domain.ViewLoading}, domain.Products())
	require.NoError(t, err)
	assert.Equal(t, "Loading store...\n", out)

	out, err = r.Render(domain.ViewState{Status: domain.ViewError, Err: errors.New("network unreachable")}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "ERROR:")
	assert.Contains(t, out, "network unreachable")
}

func TestRenderer_Catalog(t *testing.T) {
	r := tui.NewRenderer(tui.NewDocument(domain.ThemeLight), tui.WithGlamourStyle("notty"), tui.WithWidth(120))

	out, err := r.Render(domain.ViewState{Status: domain.ViewReady}, domain.Products())
	require.NoError(t, err)

	assert.Contains(t, out, "Tira Beauty Store")
	assert.Contains(t, out, "15% OFF")
	assert.Contains(t, out, "20% OFF")
	assert.Contains(t, out, "₹340")
	assert.Contains(t, out, "₹1090")
	assert.Contains(t, out, "MINIMALIST")
	assert.Equal(t, 5, strings.Count(out, "[ Add to Cart ]"))
}

func TestDocument_ThemeAndPalette(t *testing.T) {
	doc := tui.NewDocument(domain.ThemeDark)
	assert.Equal(t, "dark", doc.GlamourStyle())
	dark := doc.Palette()

	require.NoError(t, doc.ApplyTheme(domain.ThemeLight))
	assert.Equal(t, "light", doc.GlamourStyle())
	assert.NotEqual(t, dark.Text, doc.Palette().Text)
}

func TestDocument_PaletteOverrides(t *testing.T) {
	doc := tui.NewDocument(domain.ThemeDark)
	adapter := presentation.NewAdapter(doc)

	err := adapter.Apply(context.Background(), domain.HostContext{
		Styles: &domain.Styles{
			Variables: map[string]string{
				"--color-text-primary":   "#123456",
				"--color-border-primary": "light-dark(#000, #fff)",
				"--radius-md":            "8px",
			},
			CSS: &domain.StyleCSS{Fonts: []string{"Inter"}},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--color-border-primary")

	p := doc.Palette()
	assert.Equal(t, "#123456", p.Text)
	assert.Equal(t, "#764ba2", p.Border, "rejected colours keep the theme default")
	assert.Equal(t, []string{"Inter"}, doc.Fonts())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
	assert.Equal(t, 8, strings.Count(buf.String(), "\n"), "blank line, five art lines, version, blank line")
}
