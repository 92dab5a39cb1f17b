package html

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

var variableName = regexp.MustCompile(`^[A-Za-z_-][A-Za-z0-9_-]*$`)

// Document is the HTML page's presentation state: the data-theme attribute,
// the :root custom properties and the font style blocks.
// Safe for concurrent use.
type Document struct {
	mu        sync.RWMutex
	theme     domain.Theme
	variables map[string]string
	fonts     []string
}

var _ ports.Document = (*Document)(nil)

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{variables: make(map[string]string)}
}

// ApplyTheme implements ports.Document.
func (d *Document) ApplyTheme(theme domain.Theme) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.theme = theme
	return nil
}

// ApplyStyleVariables implements ports.Document. Entries that cannot be
// written safely into a style block are skipped and reported.
func (d *Document) ApplyStyleVariables(vars map[string]string) error {
	var errs []error

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		value := vars[name]
		if !variableName.MatchString(name) {
			errs = append(errs, fmt.Errorf("invalid style variable name %q", name))
			continue
		}
		if strings.ContainsAny(value, "<>{};") {
			errs = append(errs, fmt.Errorf("invalid value for style variable %q", name))
			continue
		}
		d.variables[name] = value
	}
	return errors.Join(errs...)
}

// ApplyFonts implements ports.Document. The list replaces the current
// fonts; declarations containing markup are dropped and reported.
func (d *Document) ApplyFonts(fonts []string) error {
	var errs []error
	kept := make([]string, 0, len(fonts))
	for i, f := range fonts {
		if strings.Contains(f, "<") {
			errs = append(errs, fmt.Errorf("font declaration %d contains markup", i))
			continue
		}
		kept = append(kept, f)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fonts = kept
	return errors.Join(errs...)
}

// Theme returns the applied theme.
func (d *Document) Theme() domain.Theme {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.theme
}

// Variables returns a copy of the applied style variables.
func (d *Document) Variables() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.variables)
}

// Fonts returns the applied font declarations in priority order.
func (d *Document) Fonts() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.fonts)
}

// rootCSS renders the variables as a :root rule, sorted by name.
func (d *Document) rootCSS() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.variables) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(":root {")
	for _, name := range slices.Sorted(maps.Keys(d.variables)) {
		prop := name
		if !strings.HasPrefix(prop, "--") {
			prop = "--" + prop
		}
		fmt.Fprintf(&b, " %s: %s;", prop, d.variables[name])
	}
	b.WriteString(" }")
	return b.String()
}
