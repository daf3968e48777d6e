/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/sessions/*    Statement sessions, transactions, statement output
  /api/statements    Stateless one-shot computation
  /                  Minimal landing page listing endpoints

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Get("/{id}", h.GetSession)
			r.Delete("/{id}", h.DeleteSession)

			r.Post("/{id}/transactions", h.AddTransactions)
			r.Get("/{id}/transactions", h.ListTransactions)
			r.Delete("/{id}/transactions/{entryID}", h.DeleteTransaction)

			r.Get("/{id}/statement", h.GetStatement)
			r.Get("/{id}/chart", h.GetChart)
			r.Get("/{id}/export", h.ExportStatement)
		})

		// Stateless computation
		r.Post("/statements", h.ComputeStatement)
	})

	// Minimal landing page
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Deposit Statement Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Deposit Statement Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/sessions">/api/sessions</a> - List statement sessions</li>
<li><code>POST /api/sessions</code> - Open a session</li>
<li><code>POST /api/sessions/{id}/transactions</code> - Append rows</li>
<li><code>GET /api/sessions/{id}/statement</code> - Compute statement</li>
<li><code>GET /api/sessions/{id}/export?format=csv|xlsx</code> - Download</li>
<li><code>POST /api/statements</code> - One-shot computation</li>
</ul>
</body>
</html>`))
	})

	return r
}
