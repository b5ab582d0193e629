// Package kernel assembles the HTTP handler for the Ostaa API: the
// global middleware stack, the operational endpoints, and the
// application routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/cpbyrne/ostaa/app/routes"
	"github.com/cpbyrne/ostaa/pkg/metrics"
	"github.com/cpbyrne/ostaa/pkg/middleware"
	"github.com/cpbyrne/ostaa/pkg/reqid"
	"github.com/cpbyrne/ostaa/pkg/response"
	"github.com/cpbyrne/ostaa/pkg/router"
)

// NewRouter builds the fully wired router. Exposed (rather than just the
// http.Handler) so the CLI can introspect the named route table.
func NewRouter() *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Recovery          — catches panics before they kill the goroutine
	//  3. Request ID        — inject unique ID before anything logs
	//  4. Logger            — logs request_id from context
	//  5. CORS              — set CORS headers
	//  6. Rate limiter      — reject abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// Prometheus /metrics endpoint — no auth, no rate limit.
	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", healthz)

	routes.RegisterAPI(r)

	return r
}

// NewHandler is the entry point used by the HTTP server.
func NewHandler() http.Handler {
	return NewRouter().Handler()
}

func healthz(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"})
}
