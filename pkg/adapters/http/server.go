package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/internal/presentation/html"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	eventsPath = "/events"
	cartPath   = "/cart"
)

// App defines what the view server needs from the storefront.
type App interface {
	View() domain.ViewState
	HostContext() domain.HostContext
	Session() domain.Session
	Identity() domain.Identity
	Products(ctx context.Context) ([]domain.Product, error)
	AddToCart(ctx context.Context, productID int) (domain.Product, error)
	Subscribe(hooks domain.SessionHooks)
}

// HostPusher plays the host, e.g. memory.Host or redis.Publisher.
type HostPusher interface {
	Push(ctx context.Context, update domain.HostContext) error
}

// Server serves the catalog view over HTTP.
type Server struct {
	app      App
	doc      *html.Document
	pusher   HostPusher
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	Streams  *StreamManager

	router chi.Router

	mu   sync.Mutex
	last domain.HostContext
}

// Option configures the Server.
type Option func(*Server)

// WithHostPusher enables POST /host/context.
func WithHostPusher(p HostPusher) Option {
	return func(s *Server) {
		s.pusher = p
	}
}

// WithGatherer exposes the gatherer's metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the view server and subscribes it to the app's session,
// so SSE clients re-render after every applied host-context change.
// doc must be a document registered with the app.
func NewServer(app App, doc *html.Document, opts ...Option) *Server {
	s := &Server{
		app:    app,
		doc:    doc,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	app.Subscribe(domain.SessionHooks{
		OnConnected:          s.onContext,
		OnHostContextChanged: s.onContext,
	})

	r := chi.NewRouter()
	r.Get("/", s.GetView)
	r.Get("/context", s.GetContext)
	r.Get(eventsPath, s.SubscribeEvents)
	r.Post(cartPath+"/{id}", s.AddToCart)
	if s.pusher != nil {
		r.Post("/host/context", s.PushContext)
	}
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	enableCORS(s.router).ServeHTTP(w, r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onContext(_ context.Context, e *domain.HostContextEvent) {
	s.mu.Lock()
	diff := domain.Diff(e.SessionID, s.last, e.Snapshot)
	s.last = e.Snapshot.Clone()
	s.mu.Unlock()

	if diff == nil && e.Type != domain.EventConnected {
		return
	}
	if diff == nil {
		diff = &domain.ContextDiff{SessionID: e.SessionID}
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("Failed to encode render event", "error", err)
		return
	}
	s.Streams.Broadcast(e.SessionID, string(payload))
}

// Refresh tells connected clients to re-render, e.g. after a failed connect.
func (s *Server) Refresh() {
	sess := s.app.Session()
	payload, _ := json.Marshal(map[string]string{"sessionId": sess.ID, "state": string(sess.State)})
	s.Streams.Broadcast(sess.ID, string(payload))
}

// GetView handles GET /.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	products, err := s.app.Products(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Catalog error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Catalog failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.doc.Render(w, html.Page{
		View:       s.app.View(),
		Products:   products,
		EventsPath: eventsPath,
		CartPath:   cartPath,
	})
	if err != nil {
		s.logger.Error("Render failed", "error", err)
	}
}

// GetContext handles GET /context.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	sess := s.app.Session()
	resp := struct {
		SessionID string              `json:"sessionId"`
		State     domain.SessionState `json:"state"`
		Error     string              `json:"error,omitempty"`
		Context   domain.HostContext  `json:"hostContext"`
	}{
		SessionID: sess.ID,
		State:     sess.State,
		Context:   s.app.HostContext(),
	}
	if sess.Err != nil {
		resp.Error = sess.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// AddToCart handles POST /cart/{id}.
func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	p, err := s.app.AddToCart(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Cart error: %v", err), http.StatusInternalServerError)
		s.logger.Error("AddToCart failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": p.Title, "productId": p.ID}, s.logger)
}

// PushContext handles POST /host/context by forwarding a partial update to the host.
func (s *Server) PushContext(w http.ResponseWriter, r *http.Request) {
	var update domain.HostContext
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PushContext: Invalid request body", "error", err)
		return
	}
	if err := s.pusher.Push(r.Context(), update); err != nil {
		http.Error(w, fmt.Sprintf("Push error: %v", err), http.StatusBadGateway)
		s.logger.Error("PushContext failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	id := s.app.Identity()
	resp := map[string]string{
		"app":         id.Name,
		"app_version": id.Version,
		"version":     strings.TrimSpace(storefront.Version),
		"state":       string(s.app.Session().State),
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := s.app.Session().ID
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	s.logger.Debug("SSE: Client subscribed", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: render\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
