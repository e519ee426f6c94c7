package chi

import (
	"context"
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/adapters/metrics"
	"csv-drop/internal/config"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const dbPingTimeout = 2 * time.Second

// Pinger checks a backing connection, *sql.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter builds http.Handler with chi. /health/db is only served when db is not nil.
func NewRouter(logger *slog.Logger, fileHandler *file.HandlerV1, httpMetrics *metrics.HTTPMetrics, gatherer prometheus.Gatherer, db Pinger, cfg config.ServerConfig, env string) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Mount("/api/v1", fileHandler.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	if db != nil {
		r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), dbPingTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Error("database ping failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
				writeHealth(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
			writeHealth(w, http.StatusOK, "ok")
		})
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func writeHealth(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(HealthResponse{Status: text, Timestamp: time.Now()})
}
