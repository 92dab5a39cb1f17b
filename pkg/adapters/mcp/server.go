package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/internal/presentation/html"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the UI resource hosts embed.
const CatalogURI = "ui://storefront/catalog.html"

// ProductView is a product as tools report it.
type ProductView struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Vendor       string `json:"vendor"`
	Category     string `json:"category"`
	Price        string `json:"price"`
	ComparePrice string `json:"comparePrice"`
	Discount     int    `json:"discount" jsonschema_description:"Discount in percent, rounded half up"`
	Image        string `json:"image"`
}

// CatalogResponse is the structured output of list_products.
type CatalogResponse struct {
	Store    string        `json:"store"`
	Tagline  string        `json:"tagline"`
	Products []ProductView `json:"products" jsonschema_description:"The catalog in display order"`
}

// CartArgs are the arguments of add_to_cart.
type CartArgs struct {
	ProductID int `json:"product_id"`
}

// CartResponse is the structured output of add_to_cart.
type CartResponse struct {
	Added   string `json:"added"`
	Message string `json:"message"`
}

// App defines what the MCP server needs from the storefront.
type App interface {
	View() domain.ViewState
	Products(ctx context.Context) ([]domain.Product, error)
	AddToCart(ctx context.Context, productID int) (domain.Product, error)
}

// Server exposes the storefront as an MCP server.
type Server struct {
	app       App
	doc       *html.Document
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. doc renders the UI resource
// and should be a document registered with app.
func NewServer(app App, doc *html.Document, opts ...Option) *Server {
	s := &Server{
		app:    app,
		doc:    doc,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("storefront-mcp", strings.TrimSpace(storefront.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE endpoints on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	if baseURL == "" {
		baseURL = "http://localhost" + addr
		if !strings.HasPrefix(addr, ":") {
			baseURL = "http://" + addr
		}
	}

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr, "base_url", baseURL)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_products",
		mcp.WithDescription("List the products of the beauty catalog with prices and discounts."),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleListProducts))

	s.mcpServer.AddTool(mcp.NewTool("show_catalog",
		mcp.WithDescription("Show the interactive catalog view."),
	), s.handleShowCatalog)

	s.mcpServer.AddTool(mcp.NewTool("add_to_cart",
		mcp.WithDescription("Add a product to the cart."),
		mcp.WithNumber("product_id", mcp.Required(), mcp.Description("ID of the product to add")),
		mcp.WithOutputSchema[CartResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddToCart))
}

func (s *Server) handleListProducts(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (CatalogResponse, error) {
	products, err := s.app.Products(ctx)
	if err != nil {
		return CatalogResponse{}, fmt.Errorf("list products: %w", err)
	}

	resp := CatalogResponse{Store: domain.StoreName, Tagline: domain.StoreTagline}
	for _, p := range products {
		resp.Products = append(resp.Products, ProductView{
			ID:           p.ID,
			Title:        p.Title,
			Vendor:       p.Vendor,
			Category:     p.Category,
			Price:        html.Rupees(p.Price),
			ComparePrice: html.Rupees(p.ComparePrice),
			Discount:     p.Discount(),
			Image:        p.Image,
		})
	}
	return resp, nil
}

func (s *Server) handleShowCatalog(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.renderCatalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultResource("Showing the "+domain.StoreName+" catalog.", mcp.TextResourceContents{
		URI:      CatalogURI,
		MIMEType: html.MimeType,
		Text:     page,
	}), nil
}

func (s *Server) handleAddToCart(ctx context.Context, _ mcp.CallToolRequest, args CartArgs) (CartResponse, error) {
	p, err := s.app.AddToCart(ctx, args.ProductID)
	if err != nil {
		s.logger.Warn("MCP AddToCart: rejected", "product_id", args.ProductID, "error", err)
		return CartResponse{}, fmt.Errorf("add to cart: %w", err)
	}
	return CartResponse{
		Added:   p.Title,
		Message: "Added " + p.Title + " to cart",
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, domain.StoreName,
		mcp.WithResourceDescription(domain.StoreTagline),
		mcp.WithMIMEType(html.MimeType),
	), s.handleReadCatalog)
}

func (s *Server) handleReadCatalog(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	page, err := s.renderCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: html.MimeType,
			Text:     page,
		},
	}, nil
}

// renderCatalog renders a static page: the embedding host owns the
// connection, so neither live reload nor the cart endpoint apply.
func (s *Server) renderCatalog(ctx context.Context) (string, error) {
	products, err := s.app.Products(ctx)
	if err != nil {
		return "", fmt.Errorf("list products: %w", err)
	}
	var buf bytes.Buffer
	if err := s.doc.Render(&buf, html.Page{View: s.app.View(), Products: products}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
