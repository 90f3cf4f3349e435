// Package api is the thin HTTP surface around the game core: room
// creation/listing, user registration, the websocket session endpoint,
// and the ambient health/metrics endpoints. It never mutates game state
// itself — everything goes through the core router's seams.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/generals-server/core/internal/auth"
	"github.com/generals-server/core/internal/config"
	"github.com/generals-server/core/internal/logging"
	"github.com/generals-server/core/internal/middleware"
	"github.com/generals-server/core/internal/redisbus"
	"github.com/generals-server/core/internal/router"
	"github.com/generals-server/core/internal/userstore"
)

type Router struct {
	mux    *http.ServeMux
	core   *router.Router
	db     *userstore.Database
	jwtMgr *auth.JWTManager
	cfg    *config.Config
	logger *logging.Logger
}

// NewRouter creates the HTTP router with configured handlers and
// middleware. db may be nil (user registration then reports
// unavailability), jwtMgr may be nil (no session tokens minted or
// checked), cache may be nil (no rate limiting).
func NewRouter(core *router.Router, db *userstore.Database, cache *redisbus.Cache, jwtMgr *auth.JWTManager, cfg *config.Config, logger *logging.Logger) http.Handler {
	r := &Router{
		mux:    http.NewServeMux(),
		core:   core,
		db:     db,
		jwtMgr: jwtMgr,
		cfg:    cfg,
		logger: logger,
	}

	// Rate limiting keyed by remote address on the three plain HTTP
	// endpoints; the websocket endpoint is long-lived and exempt.
	limit := func(h http.Handler) http.Handler { return h }
	if cache != nil {
		limiter := middleware.NewRateLimiter(cache.GetClient())
		limit = limiter.Middleware(func(req *http.Request) string { return req.RemoteAddr })
	}

	r.mux.Handle("/createRoom", limit(http.HandlerFunc(r.CreateRoomHandler)))
	r.mux.Handle("/getRooms", limit(http.HandlerFunc(r.GetRoomsHandler)))
	r.mux.Handle("/register", limit(http.HandlerFunc(r.RegisterHandler)))
	r.mux.Handle("/ws", http.HandlerFunc(r.WebSocketHandler))
	r.mux.HandleFunc("/healthz", r.HealthzHandler)
	r.mux.Handle("/metrics", promhttp.Handler())

	routerWithMiddleware := middleware.RequestIDMiddleware(r.mux)
	routerWithMiddleware = middleware.TracingMiddleware(routerWithMiddleware)
	return routerWithMiddleware
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
