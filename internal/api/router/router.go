package router

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/catalog"
	httpmiddleware "github.com/ChefJodlak/prooptica-sub000/internal/http/middleware"
	"github.com/ChefJodlak/prooptica-sub000/internal/http/respond"
	"github.com/ChefJodlak/prooptica-sub000/internal/wizard"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Calendar           *calendar.Handler
	Catalog            *catalog.Handler
	Wizard             *wizard.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// TrustProxyHeaders rewrites RemoteAddr from X-Real-Ip/X-Forwarded-For.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	// CalendarLimiter guards /calendar, which costs two upstream requests per call.
	CalendarLimiter *httpmiddleware.RateLimiter

	// HealthChecks are named dependency probes (redis, postgres) run by /health.
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Calendar != nil {
		r.Group(func(cal chi.Router) {
			if cfg.CalendarLimiter != nil {
				cal.Use(cfg.CalendarLimiter.Middleware)
			}
			cal.Get("/calendar", cfg.Calendar.GetCalendar)
		})
	}

	if cfg.Catalog != nil {
		r.Get("/catalog", cfg.Catalog.GetCatalog)
		r.Get("/catalog/eligible", cfg.Catalog.GetEligibleSpecialists)
	}

	if cfg.Wizard != nil {
		r.Route("/wizard", cfg.Wizard.Routes)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if len(names) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			resp.Checks = make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					resp.Checks[name] = err.Error()
					resp.Status = "degraded"
					continue
				}
				resp.Checks[name] = "ok"
			}
		}
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, resp)
	}
}
