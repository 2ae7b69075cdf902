/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/reports          Aggregated reporting
  /api/timesheets/*     Time-entry mutations and day submission
  /api/billing/*        Service-description topic mutations
  /api/admin/*          Dev conveniences (demo seed)

SECURITY NOTE:
  Caller identity comes from the X-User-ID header; there is no session
  middleware here. Authentication is handled upstream of this service.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
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
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/reports", h.GetReport)

		r.Route("/timesheets", func(r chi.Router) {
			r.Post("/submit", h.SubmitTimesheet)
			r.Patch("/{id}", h.UpdateTimeEntry)
			r.Delete("/{id}", h.DeleteTimeEntry)
		})

		r.Route("/billing/{sdID}/topics", func(r chi.Router) {
			r.Patch("/{topicID}", h.UpdateBillingTopic)
			r.Delete("/{topicID}", h.DeleteBillingTopic)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", h.SeedDemo)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Billing Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Billing Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><code>GET /api/reports?startDate=YYYY-MM-DD&amp;endDate=YYYY-MM-DD</code> - Aggregated report</li>
<li><code>PATCH /api/timesheets/{id}</code> - Update a time entry</li>
<li><code>POST /api/timesheets/submit</code> - Submit a day</li>
<li><code>PATCH /api/billing/{sdID}/topics/{topicID}</code> - Update pricing rules</li>
</ul>
<p>Requests are identified via the <code>X-User-ID</code> header.</p>
</body>
</html>`))
	})

	return r
}
