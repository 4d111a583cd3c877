package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/srm-sim/internal/api/handlers"
	"github.com/wonny/srm-sim/internal/metrics"
	"github.com/wonny/srm-sim/pkg/database"
	"github.com/wonny/srm-sim/pkg/logger"
)

// DBHealth reports database health (database.DB)
type DBHealth interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// Handlers groups everything the router mounts
type Handlers struct {
	Sessions  *handlers.SessionHandler
	Campaigns *handlers.CampaignHandler
	Jobs      *handlers.JobHandler // nil disables /api/jobs
	Metrics   *metrics.Recorder    // nil disables /metrics and request metrics
	DB        DBHealth             // nil when no database is configured
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(h.DB)).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Session endpoints
	s := h.Sessions
	api.HandleFunc("/sessions", s.Create).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.Get).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.Delete).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/suppliers", s.Suppliers).Methods("GET")
	api.HandleFunc("/sessions/{id}/suppliers/{supplier}", s.SupplierView).Methods("GET")
	api.HandleFunc("/sessions/{id}/orders", s.PlaceOrder).Methods("POST")
	api.HandleFunc("/sessions/{id}/orders/commit", s.CommitDrafts).Methods("POST")
	api.HandleFunc("/sessions/{id}/orders/drafts", s.CancelDrafts).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/invoices/{invoice:[0-9]+}/pay", s.PayInvoice).Methods("POST")
	api.HandleFunc("/sessions/{id}/advance", s.Advance).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.History).Methods("GET")
	api.HandleFunc("/sessions/{id}/deliveries", s.Deliveries).Methods("GET")
	api.HandleFunc("/sessions/{id}/transactions.csv", s.Transactions).Methods("GET")
	api.HandleFunc("/sessions/{id}/stream", s.Stream).Methods("GET")

	// Campaign endpoints
	if c := h.Campaigns; c != nil {
		api.HandleFunc("/campaigns", c.Run).Methods("POST")
		api.HandleFunc("/campaigns", c.List).Methods("GET")
		api.HandleFunc("/campaigns/{id}", c.Get).Methods("GET")
	}

	// Housekeeping jobs
	if j := h.Jobs; j != nil {
		api.HandleFunc("/jobs", j.List).Methods("GET")
		api.HandleFunc("/jobs/{name}/history", j.History).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", j.Run).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}

	return r
}

// healthCheckHandler returns server health status.
// A configured database that fails its ping turns the answer into 503.
func healthCheckHandler(db DBHealth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "srm-sim-api",
		}
		code := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			status, err := db.HealthCheck(ctx)
			body["database"] = status
			if err != nil {
				body["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(body)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
