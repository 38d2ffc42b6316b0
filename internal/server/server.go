// Package server assembles the router, middleware chain and http.Server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"

	"github.com/hongminglow/mediavault/internal/config"
	"github.com/hongminglow/mediavault/internal/http/handlers"
	"github.com/hongminglow/mediavault/internal/http/middleware"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/metrics"
)

// Uploads and downloads stream whole media files, so reads and writes get
// far more room than the header timeout.
const (
	readHeaderTimeout = 5 * time.Second
	transferTimeout   = 10 * time.Minute
	idleTimeout       = 120 * time.Second
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Auth    handlers.Authenticator
	Catalog handlers.Catalog
	Gate    *middleware.Gate
	Metrics *metrics.Metrics
	DB      handlers.Pinger
	Logger  logging.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       transferTimeout,
		WriteTimeout:      transferTimeout,
		IdleTimeout:       idleTimeout,
	}}
}

// NewHandler builds the full middleware chain around the router.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	r := mux.NewRouter()
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
		r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	var loginLimit func(http.Handler) http.Handler
	if cfg.LoginRatePerMinute > 0 {
		loginLimit = httprate.LimitByIP(cfg.LoginRatePerMinute, time.Minute)
	}
	var logins handlers.LoginObserver
	if deps.Metrics != nil {
		logins = deps.Metrics
	}

	handlers.NewHealthHandler(time.Now(), deps.DB).Register(r)
	handlers.NewAuthHandler(deps.Auth, deps.Logger, logins).Register(r, loginLimit)
	handlers.NewMeHandler(deps.Auth, deps.Logger).Register(r, deps.Gate)
	handlers.NewAssetHandler(deps.Catalog, cfg.MaxUploadBytes, deps.Logger).Register(r, deps.Gate)

	return middleware.CORS(cfg.CORSOrigins, middleware.RequestID(middleware.Logging(deps.Logger, r)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
