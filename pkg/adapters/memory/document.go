package memory

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// Call records one Document method invocation.
type Call struct {
	Method string
	Args   any
}

// DocumentState is the observable presentation state of a Document.
type DocumentState struct {
	Theme     domain.Theme
	Variables map[string]string
	Fonts     []string
}

// Document implements ports.Document in memory and records every call.
// Safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	state    DocumentState
	calls    []Call
	failures map[string]error
}

var _ ports.Document = (*Document)(nil)

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		state:    DocumentState{Variables: make(map[string]string)},
		failures: make(map[string]error),
	}
}

// FailOn makes the named method ("ApplyTheme", "ApplyStyleVariables",
// "ApplyFonts") return err. A nil err clears the failure.
func (d *Document) FailOn(method string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, method)
		return
	}
	d.failures[method] = err
}

func (d *Document) record(method string, args any) error {
	d.calls = append(d.calls, Call{Method: method, Args: args})
	if err, ok := d.failures[method]; ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// ApplyTheme implements ports.Document.
func (d *Document) ApplyTheme(theme domain.Theme) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("ApplyTheme", theme); err != nil {
		return err
	}
	d.state.Theme = theme
	return nil
}

// ApplyStyleVariables implements ports.Document.
func (d *Document) ApplyStyleVariables(vars map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("ApplyStyleVariables", maps.Clone(vars)); err != nil {
		return err
	}
	for k, v := range vars {
		d.state.Variables[k] = v
	}
	return nil
}

// ApplyFonts implements ports.Document.
func (d *Document) ApplyFonts(fonts []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("ApplyFonts", slices.Clone(fonts)); err != nil {
		return err
	}
	d.state.Fonts = slices.Clone(fonts)
	return nil
}

// State returns a copy of the current presentation state.
func (d *Document) State() DocumentState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DocumentState{
		Theme:     d.state.Theme,
		Variables: maps.Clone(d.state.Variables),
		Fonts:     slices.Clone(d.state.Fonts),
	}
}

// Calls returns the recorded invocations in order.
func (d *Document) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// CallCount returns how many times method was invoked.
func (d *Document) CallCount(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
