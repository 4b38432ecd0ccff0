/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through zap
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the HR frontend

ROUTE GROUPS:
  /api/health           Liveness
  /api/employees/*      Employee directory and balances
  /api/requests/*       Leave requests
  /api/quotas/*         Quota catalog
  /api/policy           Settings and quotas as one document
  /api/ledger/*         Monthly carry-forward ledger
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// DefaultAllowedOrigins is used when no origins are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/balance", h.GetBalance)
		})

		// Leave request routes
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.ListLeaveRequests)
			r.Post("/", h.CreateLeaveRequest)
			r.Post("/validate", h.ValidateLeaveRequest)
			r.Post("/{id}/status", h.SetRequestStatus)
		})

		// Quota routes
		r.Route("/quotas", func(r chi.Router) {
			r.Get("/", h.ListQuotas)
			r.Post("/rename", h.RenameQuota)
			r.Put("/{leaveType}", h.SetQuota)
			r.Delete("/{leaveType}", h.DeleteQuota)
		})

		// Policy document routes
		r.Get("/policy", h.GetPolicy)
		r.Put("/policy", h.ImportPolicy)

		// Ledger routes
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/config", h.GetLedgerConfig)
			r.Put("/config", h.UpdateLedgerConfig)
			r.Get("/{period}", h.GetLedger)
			r.Post("/{period}/save", h.SaveLedger)
			r.Post("/{period}/manual", h.SaveManualLedger)
			r.Post("/{period}/retry", h.RetryLedger)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
