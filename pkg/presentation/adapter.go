package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// Adapter applies host-context snapshots to a Document.
//
// Theme, style variables and fonts are independent effects: each one is
// skipped when its facet is absent, and a failure in one does not prevent
// the others. Every effect sets absolute values, so Apply is idempotent.
type Adapter struct {
	doc    ports.Document
	logger *slog.Logger
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger configures a logger for the Adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter creates an adapter that drives doc.
func NewAdapter(doc ports.Document, opts ...Option) *Adapter {
	a := &Adapter{
		doc:    doc,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply applies the snapshot to the document and returns the joined
// failures of the individual effects, if any.
func (a *Adapter) Apply(ctx context.Context, snapshot domain.HostContext) error {
	var errs []error

	if snapshot.Theme != "" {
		errs = append(errs, a.run(domain.FacetTheme, func() error {
			return a.doc.ApplyTheme(snapshot.Theme)
		}))
	}
	if vars := snapshot.Variables(); len(vars) > 0 {
		errs = append(errs, a.run(domain.FacetStyleVariables, func() error {
			return a.doc.ApplyStyleVariables(vars)
		}))
	}
	if fonts := snapshot.Fonts(); len(fonts) > 0 {
		errs = append(errs, a.run(domain.FacetFonts, func() error {
			return a.doc.ApplyFonts(fonts)
		}))
	}

	return errors.Join(errs...)
}

// run executes one effect, converting a panic into an error.
func (a *Adapter) run(facet domain.Facet, apply func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("apply %s: panic: %v", facet, r)
		}
	}()
	if err := apply(); err != nil {
		return fmt.Errorf("apply %s: %w", facet, err)
	}
	a.logger.Debug("Applied host facet", "facet", facet)
	return nil
}

// Hooks returns session hooks that re-apply the merged snapshot on connect
// and on every host-context change. Failures go to reporter, typically the
// Connector, instead of interrupting rendering.
func (a *Adapter) Hooks(reporter domain.ErrorReporter) domain.SessionHooks {
	apply := func(ctx context.Context, e *domain.HostContextEvent) {
		if err := a.Apply(ctx, e.Snapshot); err != nil {
			a.logger.Warn("Presentation apply failed", "error", err)
			if reporter != nil {
				reporter.ReportError(err)
			}
		}
	}
	return domain.SessionHooks{
		OnConnected:          apply,
		OnHostContextChanged: apply,
	}
}
