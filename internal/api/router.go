package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"filamento/internal/constants"
	"filamento/internal/matcher"
	"filamento/pkg/events"
	"filamento/pkg/logging"
	"filamento/pkg/metrics"
)

// RouterOptions wires the optional parts of the HTTP surface.
type RouterOptions struct {
	Logger      *logging.Logger
	Health      http.Handler      // served at /healthz; a bare 200 when nil
	Events      events.EventStore // enables /api/events
	CORSOrigin  string
	RateRPS     float64 // 0 disables rate limiting
	RateBurst   int
	MetricsPath string // empty disables exposition
	Tracing     bool
	ServiceName string
}

// NewRouter builds the API. Health and metrics are outside the rate limiter.
func NewRouter(svc *matcher.Service, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	router := mux.NewRouter()
	router.Use(Recover(logger), RequestLogger(logger), CORS(opts.CORSOrigin))

	health := opts.Health
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}
	router.Handle("/healthz", health).Methods(http.MethodGet)
	if opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	if opts.RateRPS > 0 {
		api.Use(NewRateLimiter(opts.RateRPS, opts.RateBurst, constants.RateLimiterIdleTTL).Middleware)
	}
	api.HandleFunc("/filters", FiltersHandler(svc)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/compare", CompareHandler(svc)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/similar", SimilarHandler(svc)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/score", ScoreHandler(svc)).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats", StatsHandler(svc)).Methods(http.MethodGet, http.MethodOptions)
	if opts.Events != nil {
		api.HandleFunc("/events", EventsHandler(opts.Events)).Methods(http.MethodGet, http.MethodOptions)
	}

	if opts.Tracing {
		name := opts.ServiceName
		if name == "" {
			name = "filamento"
		}
		return Tracing(name)(router)
	}
	return router
}
