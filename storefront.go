package storefront

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/connector"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/observability"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/presentation"
)

// App is the high-level entry point: one view connected to one host.
type App struct {
	identity  domain.Identity
	catalog   ports.ProductSource
	documents []ports.Document
	hooks     []domain.SessionHooks
	metrics   *observability.Metrics
	logger    *slog.Logger

	conn *connector.Connector
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithIdentity overrides the name and version announced to the host.
func WithIdentity(id domain.Identity) Option {
	return func(a *App) {
		a.identity = id
	}
}

// WithCatalog replaces the built-in product list.
func WithCatalog(c ports.ProductSource) Option {
	return func(a *App) {
		a.catalog = c
	}
}

// WithDocument registers a document that follows the host context.
// It may be given several times.
func WithDocument(doc ports.Document) Option {
	return func(a *App) {
		a.documents = append(a.documents, doc)
	}
}

// WithSessionHooks registers additional session observers.
func WithSessionHooks(hooks domain.SessionHooks) Option {
	return func(a *App) {
		a.hooks = append(a.hooks, hooks)
	}
}

// WithMetrics records session activity.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates an App talking to the host through transport. No I/O happens until Start.
func New(transport ports.HostTransport, opts ...Option) *App {
	a := &App{
		identity: domain.DefaultIdentity,
		catalog:  memory.NewStaticCatalog(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.conn = connector.New(a.identity, transport, connector.WithLogger(a.logger))
	for _, doc := range a.documents {
		adapter := presentation.NewAdapter(doc, presentation.WithLogger(a.logger))
		a.conn.Subscribe(adapter.Hooks(a.conn))
	}
	if a.metrics != nil {
		a.conn.Subscribe(a.metrics.Hooks())
	}
	for _, h := range a.hooks {
		a.conn.Subscribe(h)
	}
	return a
}

// Start connects to the host. On failure the view switches to its error page
// and the host error is returned.
func (a *App) Start(ctx context.Context) error {
	if a.metrics != nil && a.conn.State() == domain.StateUnconnected {
		a.metrics.SetState(domain.StateConnecting)
	}
	err := a.conn.Connect(ctx)
	if a.metrics != nil && !errors.Is(err, domain.ErrAlreadyConnected) {
		a.metrics.ObserveConnect(err)
	}
	return err
}

// Subscribe registers session hooks after construction.
func (a *App) Subscribe(hooks domain.SessionHooks) {
	a.conn.Subscribe(hooks)
}

// View returns what the view should currently render.
func (a *App) View() domain.ViewState {
	return domain.ViewStateFor(a.conn.Session(), a.conn.CurrentContext())
}

// Session returns the host session.
func (a *App) Session() domain.Session {
	return a.conn.Session()
}

// HostContext returns the current merged snapshot.
func (a *App) HostContext() domain.HostContext {
	return a.conn.CurrentContext()
}

// Identity returns the identity announced to the host.
func (a *App) Identity() domain.Identity {
	return a.identity
}

// Products lists the catalog.
func (a *App) Products(ctx context.Context) ([]domain.Product, error) {
	return a.catalog.List(ctx)
}

// AddToCart logs the product as added. There is no cart state.
func (a *App) AddToCart(ctx context.Context, productID int) (domain.Product, error) {
	p, err := a.catalog.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	a.logger.Info("Added "+p.Title+" to cart", "product_id", p.ID)
	if a.metrics != nil {
		a.metrics.ObserveCart(p)
	}
	return p, nil
}

// ReportError routes an advisory error to the session error hooks.
func (a *App) ReportError(err error) {
	a.conn.ReportError(err)
}

// Done is closed once the host session has ended.
func (a *App) Done() <-chan struct{} {
	return a.conn.Done()
}

// Close ends the host session.
func (a *App) Close() error {
	return a.conn.Close()
}
