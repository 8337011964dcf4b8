// Package server is the gateway's HTTP surface: the chi router, the
// middleware chain and the route handlers. Every response goes through
// the envelope package; every request leaves exactly one durable
// request log row behind.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brightops/bright-gateway/internal/ai"
	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/auth"
	"github.com/brightops/bright-gateway/internal/storage"
	"github.com/brightops/bright-gateway/internal/tenant"
)

// Deps bundles everything the route handlers need.
type Deps struct {
	Logger   *slog.Logger
	Store    *storage.Store
	Recorder *audit.Recorder
	Resolver *tenant.Resolver
	Identity *auth.IdentityClient
	AI       *ai.Service
	Roles    tenant.RoleAccess
}

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
	http   *http.Server
}

// New builds the router. Middleware order matters: the trace id must
// exist before anything logs, the tenant holder must wrap the request
// log stage so the durable row can carry a resolved tenant, and the
// request log stage recovers panics so the row is written regardless.
func New(port int, deps Deps) *Server {
	h := &handlers{
		logger:   deps.Logger,
		store:    deps.Store,
		recorder: deps.Recorder,
		identity: deps.Identity,
		ai:       deps.AI,
		roles:    deps.Roles,
	}

	r := chi.NewRouter()
	r.Use(TraceIDMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "bright-gateway")
	})
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(tenant.Middleware(deps.Resolver))
	r.Use(RequestLogMiddleware(deps.Recorder))
	r.Use(TimeoutMiddleware(30 * time.Second))

	r.Get("/", h.health)
	r.Get("/health", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/auth/me", h.authMe)
		r.Get("/dashboard", h.dashboard)

		r.Get("/inbox", h.listInbox)
		r.Post("/inbox/ingest", h.ingestInbox)

		r.Get("/tenants/{id}/members", h.listMembers)

		r.Get("/tasks", h.listTasks)
		r.Post("/tasks", h.createTask)
		r.Patch("/tasks/{id}", h.updateTask)
		r.Delete("/tasks/{id}", h.deleteTask)
		r.Post("/tasks/{id}/acknowledge", h.acknowledgeTask)

		r.Get("/notifications", h.listNotifications)
		r.Patch("/notifications/{id}/read", h.readNotification)

		r.Post("/ai/chat", h.aiChat)
		r.Get("/ai/tools", h.aiTools)

		r.Get("/docs", h.listDocs)
		r.Post("/docs/index", h.indexDoc)
		r.Post("/docs/search", h.searchDocs)
		r.Get("/docs/{id}", h.getDoc)
		r.Patch("/docs/{id}", h.updateDoc)
		r.Delete("/docs/{id}", h.deleteDoc)

		r.Get("/hr/cases", h.hrCases)
		r.Post("/hr/surveys", h.submitSurvey)

		r.Get("/integrations", h.listIntegrations)
		r.Post("/integrations/{id}", h.updateIntegration)
	})

	return &Server{
		Router: r,
		Port:   port,
		logger: deps.Logger,
		http:   &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: r},
	}
}

// Start runs the listener until Shutdown is called. Returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.Int("port", s.Port))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
