// Package httpapi exposes the fruit service over HTTP and JSON.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/saulfrancisco-ruizacevedo/fruitgraph/fruit"
	"github.com/saulfrancisco-ruizacevedo/fruitgraph/models"
)

// FruitService is the subset of *fruit.Service the handlers call.
type FruitService interface {
	Search(ctx context.Context, keyword string) (*fruit.SearchResult, error)
	GetByID(ctx context.Context, fruitID string) (*fruit.Detail, error)
	Create(ctx context.Context, input map[string]any) error
	Update(ctx context.Context, fruitID string, input map[string]any) error
	Delete(ctx context.Context, fruitID string) error
	DashboardStats(ctx context.Context) (*fruit.Dashboard, error)
	FruitGraph(ctx context.Context, fruitID string) (*models.GraphResult, error)
	Ping(ctx context.Context) ([]map[string]any, error)
	Reconcile(ctx context.Context, opts fruit.ReconcileOptions) (*fruit.ReconcileReport, error)
}

// Options configures a Server.
type Options struct {
	Logger *slog.Logger
	// Version is served at /api/version.
	Version string
	// CORSOrigin is sent as Access-Control-Allow-Origin on /api/ paths.
	// Empty disables CORS headers.
	CORSOrigin string
}

// Server routes HTTP requests to the fruit service.
type Server struct {
	svc     FruitService
	log     *slog.Logger
	version string
	mux     *http.ServeMux
	routes  []string
	handler http.Handler
}

// New builds the server and registers its routes.
func New(svc FruitService, opts Options) *Server {
	s := &Server{
		svc:     svc,
		log:     opts.Logger,
		version: opts.Version,
		mux:     http.NewServeMux(),
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.version == "" {
		s.version = "dev"
	}

	s.handle("GET /{$}", s.home)
	s.handle("GET /api/version", s.apiVersion)
	s.handle("GET /api/routes", s.listRoutes)
	s.handle("GET /api/graph/ping", s.pingGraph)
	s.handle("GET /api/fruits/search", s.searchFruits)
	s.handle("GET /api/fruits/{id}", s.getFruit)
	s.handle("GET /api/fruits/{id}/graph", s.getFruitGraph)
	s.handle("POST /api/fruits", s.createFruit)
	s.handle("PUT /api/fruits/{id}", s.updateFruit)
	s.handle("DELETE /api/fruits/{id}", s.deleteFruit)
	s.handle("GET /api/stats/dashboard", s.dashboard)
	s.handle("POST /api/admin/reconcile", s.reconcile)
	sort.Strings(s.routes)

	s.handler = Chain(s.mux,
		RequestID(),
		AccessLog(s.log),
		RecoverPanic(s.log),
		CORS(opts.CORSOrigin),
	)
	return s
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
	s.routes = append(s.routes, pattern)
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes returns the registered route patterns, sorted.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}
