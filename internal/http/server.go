// Package http provides the console's http server and API client.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	APIPrefix     = "/api"
	UIPrefix      = "/app"
	WebhookPrefix = "/webhooks"

	// shutdownTimeout is the time given for outstanding requests to finish
	// before shutdown.
	shutdownTimeout = 1 * time.Second
)

// healthz is the payload of the health endpoint.
type healthz struct {
	Version string
	Commit  string
	Built   string
	Status  string
	Error   string `json:",omitempty"`
}

type (
	// ServerConfig is the http server config
	ServerConfig struct {
		SSL                  bool
		CertFile, KeyFile    string
		EnableRequestLogging bool

		Handlers   []Handlers
		Middleware []mux.MiddlewareFunc

		// HealthCheck, if set, is called by the health endpoint, which
		// reports the server unavailable if it errors.
		HealthCheck func(context.Context) error
	}

	// Handlers is a collection of http handlers that registers itself with
	// a router.
	Handlers interface {
		AddHandlers(*mux.Router)
	}

	// Server is the http server for the console
	Server struct {
		logr.Logger
		ServerConfig

		server *http.Server
	}
)

// NewServer constructs the http server for the console
func NewServer(logger logr.Logger, cfg ServerConfig) (*Server, error) {
	if cfg.SSL {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, fmt.Errorf("must provide both --cert-file and --key-file")
		}
	}

	r := mux.NewRouter()

	// Catch panics and return 500s
	r.Use(gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true)))

	// Redirect paths with a trailing slash to path without, e.g. /apps/ ->
	// /apps. Uses an HTTP301.
	r.StrictSlash(true)

	r.Handle("/", http.RedirectHandler(UIPrefix+"/apps", http.StatusFound))

	// Serve static files
	AddStaticHandler(r)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/healthz", healthHandler(logger, cfg.HealthCheck)).Methods("GET")

	// Subrouter for service routes
	svcRouter := r.NewRoute().Subrouter()

	// Subject service routes to provided middleware, e.g. installing the
	// actor.
	svcRouter.Use(cfg.Middleware...)

	// Add handlers for each service
	for _, h := range cfg.Handlers {
		h.AddHandlers(svcRouter)
	}

	// Record every request, and optionally log it too.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			observeRequest(r.Method, m.Code, m.Duration.Seconds())
			if !cfg.EnableRequestLogging {
				return
			}
			logger.Info("request",
				"duration", fmt.Sprintf("%dms", m.Duration.Milliseconds()),
				"status", m.Code,
				"method", r.Method,
				"bytes", m.Written,
				"path", fmt.Sprintf("%s?%s", r.URL.Path, r.URL.RawQuery))
		})
	})

	return &Server{
		Logger:       logger,
		ServerConfig: cfg,
		server:       &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second},
	}, nil
}

// Start starts serving http traffic on the given listener and waits until the
// server exits due to error or the context is cancelled.
func (s *Server) Start(ctx context.Context, ln net.Listener) (err error) {
	errch := make(chan error)

	go func() {
		if s.SSL {
			errch <- s.server.ServeTLS(ln, s.CertFile, s.KeyFile)
		} else {
			errch <- s.server.Serve(ln)
		}
	}()

	s.Info("started server", "address", ln.Addr().String(), "ssl", s.SSL)

	// Block until server stops listening or context is cancelled.
	select {
	case err := <-errch:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Info("gracefully shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return s.server.Close()
		}

		return nil
	}
}

func healthHandler(logger logr.Logger, check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := healthz{
			Version: internal.Version,
			Commit:  internal.Commit,
			Built:   internal.Built,
			Status:  "ok",
		}
		status := http.StatusOK
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.Error(err, "health check failed")
				payload.Status = "unavailable"
				payload.Error = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}
}

// APIRouter wraps the given router with a router suitable for API routes.
func APIRouter(r *mux.Router) *mux.Router {
	return r.PathPrefix(APIPrefix).Subrouter()
}

// UIRouter wraps the given router with a router suitable for web UI routes.
func UIRouter(r *mux.Router) *mux.Router {
	return r.PathPrefix(UIPrefix).Subrouter()
}
