package tui

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"golang.org/x/term"
)

const (
	cardWidth   = 36
	columnPx    = 280
	defaultCols = 80
)

// Renderer draws the catalog view for a terminal.
type Renderer struct {
	doc          *Document
	width        int
	glamourStyle string
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithWidth sets the terminal width in cells.
func WithWidth(cols int) RenderOption {
	return func(r *Renderer) {
		r.width = cols
	}
}

// WithGlamourStyle pins the markdown style instead of following the theme.
func WithGlamourStyle(name string) RenderOption {
	return func(r *Renderer) {
		r.glamourStyle = name
	}
}

// NewRenderer creates a renderer drawing with the document's presentation state.
func NewRenderer(doc *Document, opts ...RenderOption) *Renderer {
	r := &Renderer{doc: doc, width: defaultCols}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TerminalWidth returns the width of f, or a default when it is not a terminal.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultCols
	}
	return w
}

// Columns returns how many cards fit side by side. The host's container
// width wins over the terminal width.
func Columns(hc domain.HostContext, termWidth int) int {
	if d := hc.ContainerDimensions; d != nil && d.Width != nil && *d.Width > 0 {
		return max(1, int(*d.Width/columnPx))
	}
	if termWidth > 0 {
		return max(1, termWidth/(cardWidth+2))
	}
	return 1
}

// Render returns the view for the given state.
func (r *Renderer) Render(view domain.ViewState, products []domain.Product) (string, error) {
	palette := r.doc.Palette()

	switch view.Status {
	case domain.ViewError:
		label := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")).Render("ERROR:")
		return label + " " + view.Message() + "\n", nil
	case domain.ViewReady:
	default:
		return "Loading store...\n", nil
	}

	header, err := r.markdown(fmt.Sprintf("# %s\n\n*%s*\n", domain.StoreName, domain.StoreTagline))
	if err != nil {
		return "", err
	}
	footer, err := r.markdown(fmt.Sprintf("---\n\n%s Demo - Powered by MCP Apps\n", domain.StoreName))
	if err != nil {
		return "", err
	}

	cards := lo.Map(products, func(p domain.Product, _ int) string {
		return renderCard(p, palette)
	})
	rows := lo.Map(lo.Chunk(cards, Columns(view.Context, r.width)), func(row []string, _ int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, row...)
	})

	body := lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(rows, "\n"), footer)
	return safeArea(view.Context).Render(body) + "\n", nil
}

func (r *Renderer) markdown(src string) (string, error) {
	style := r.glamourStyle
	if style == "" {
		style = r.doc.GlamourStyle()
	}
	g, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := g.Render(src)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

func renderCard(p domain.Product, palette Palette) string {
	inner := cardWidth - 4

	category := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Accent)).Render("[" + p.Category + "]")
	discount := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(palette.Discount)).
		Render(strconv.Itoa(p.Discount()) + "% OFF")
	gap := max(1, inner-lipgloss.Width(category)-lipgloss.Width(discount))
	badges := category + strings.Repeat(" ", gap) + discount

	vendor := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Accent)).Bold(true).
		Render(strings.ToUpper(p.Vendor))
	title := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Text)).Bold(true).Width(inner).Render(p.Title)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Muted)).Width(inner).Render(p.Description)
	price := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Text)).Bold(true).Render("₹" + strconv.Itoa(p.Price))
	compare := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Muted)).Strikethrough(true).
		Render("₹" + strconv.Itoa(p.ComparePrice))
	button := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Accent)).
		Render(fmt.Sprintf("[ Add to Cart ] #%d", p.ID))

	content := lipgloss.JoinVertical(lipgloss.Left,
		badges,
		"",
		vendor,
		title,
		desc,
		"",
		price+"  "+compare,
		button,
	)
	return lipgloss.NewStyle().
		Width(cardWidth - 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(palette.Border)).
		Padding(0, 1).
		MarginRight(1).
		Render(content)
}

// safeArea converts pixel insets to cells: 16px per row, 8px per column.
func safeArea(hc domain.HostContext) lipgloss.Style {
	s := lipgloss.NewStyle()
	in := hc.SafeAreaInsets
	if in == nil {
		return s
	}
	cells := func(px float64, per float64) int { return int(math.Round(px / per)) }
	if in.Top != nil {
		s = s.PaddingTop(cells(*in.Top, 16))
	}
	if in.Bottom != nil {
		s = s.PaddingBottom(cells(*in.Bottom, 16))
	}
	if in.Left != nil {
		s = s.PaddingLeft(cells(*in.Left, 8))
	}
	if in.Right != nil {
		s = s.PaddingRight(cells(*in.Right, 8))
	}
	return s
}
