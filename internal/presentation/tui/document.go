package tui

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/muesli/termenv"
)

// Palette holds the colours used to draw the catalog.
type Palette struct {
	Text       string
	Muted      string
	Accent     string
	Discount   string
	Border     string
	Background string
}

var (
	darkPalette = Palette{
		Text:       "#f1f5f9",
		Muted:      "#94a3b8",
		Accent:     "#818cf8",
		Discount:   "#ef4444",
		Border:     "#764ba2",
		Background: "#0f172a",
	}
	lightPalette = Palette{
		Text:       "#1e293b",
		Muted:      "#64748b",
		Accent:     "#667eea",
		Discount:   "#ef4444",
		Border:     "#667eea",
		Background: "#f5f7fa",
	}
)

// Host style variables that override palette entries.
var paletteVariables = map[string]func(*Palette) *string{
	"--color-text-primary":       func(p *Palette) *string { return &p.Text },
	"--color-text-secondary":     func(p *Palette) *string { return &p.Muted },
	"--color-text-info":          func(p *Palette) *string { return &p.Accent },
	"--color-text-danger":        func(p *Palette) *string { return &p.Discount },
	"--color-border-primary":     func(p *Palette) *string { return &p.Border },
	"--color-background-primary": func(p *Palette) *string { return &p.Background },
}

var terminalColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// Document implements ports.Document for a terminal. The theme selects the
// glamour style and base palette, colour variables override the palette and
// fonts are only recorded since a terminal cannot load them.
type Document struct {
	mu        sync.RWMutex
	theme     domain.Theme
	variables map[string]string
	fonts     []string
}

var _ ports.Document = (*Document)(nil)

// NewDocument creates a document starting from the given theme.
func NewDocument(theme domain.Theme) *Document {
	return &Document{theme: theme, variables: make(map[string]string)}
}

// DetectTheme asks the terminal for its background colour.
func DetectTheme() domain.Theme {
	if termenv.HasDarkBackground() {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

// ApplyTheme implements ports.Document.
func (d *Document) ApplyTheme(theme domain.Theme) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.theme = theme
	return nil
}

// ApplyStyleVariables implements ports.Document. Palette variables must be
// terminal colours; others are kept as given.
func (d *Document) ApplyStyleVariables(vars map[string]string) error {
	var errs []error

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		value := vars[name]
		if _, ok := paletteVariables[name]; ok && !terminalColor.MatchString(value) {
			errs = append(errs, fmt.Errorf("style variable %s: %q is not a terminal colour", name, value))
			continue
		}
		d.variables[name] = value
	}
	return errors.Join(errs...)
}

// ApplyFonts implements ports.Document.
func (d *Document) ApplyFonts(fonts []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fonts = slices.Clone(fonts)
	return nil
}

// Theme returns the applied theme.
func (d *Document) Theme() domain.Theme {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.theme
}

// Fonts returns the recorded font declarations.
func (d *Document) Fonts() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.fonts)
}

// GlamourStyle returns the glamour standard style for the theme.
func (d *Document) GlamourStyle() string {
	if d.Theme() == domain.ThemeLight {
		return "light"
	}
	return "dark"
}

// Palette returns the base palette for the theme with overrides applied.
func (d *Document) Palette() Palette {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p := darkPalette
	if d.theme == domain.ThemeLight {
		p = lightPalette
	}
	for name, field := range paletteVariables {
		if v, ok := d.variables[name]; ok {
			*field(&p) = v
		}
	}
	return p
}
