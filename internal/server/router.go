// Package server assembles the HTTP surface: Connect services behind their
// interceptors, health and metrics endpoints, and the shared HTTP middleware.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/namansharma3007/Equi-share/internal/auth"
	"github.com/namansharma3007/Equi-share/internal/ledger"
	"github.com/namansharma3007/Equi-share/internal/middleware"
	"github.com/namansharma3007/Equi-share/internal/service"
	"github.com/namansharma3007/Equi-share/internal/storage"
	"github.com/namansharma3007/Equi-share/pkg/api/apiconnect"
)

// Deps are the components the router exposes.
type Deps struct {
	Store         storage.Store
	Ledger        *ledger.Service
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Logger        *slog.Logger

	// AllowedOrigins feeds the CORS policy. Empty allows any origin.
	AllowedOrigins []string
}

// readyChecker is implemented by stores that can report connectivity.
type readyChecker interface {
	Ready(ctx context.Context) error
}

// NewRouter builds the chi router for the whole server.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         300,
	}))

	// Metrics sees every call, including ones auth rejects. Logging runs
	// after auth so it can attribute the call to a user.
	public := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.OptionalAuth(d.JWT),
		middleware.LoggingInterceptor(logger),
	)
	private := connect.WithInterceptors(
		middleware.MetricsInterceptor(),
		middleware.RequireAuth(d.JWT),
		middleware.LoggingInterceptor(logger),
	)

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(d.Authenticator, d.JWT, d.Store, logger), public)
	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(
		service.NewExpenseService(d.Ledger), private)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(
		service.NewGroupService(d.Store, logger), private)

	r.Handle(authPath+"*", authHandler)
	r.Handle(expensePath+"*", expenseHandler)
	r.Handle(groupPath+"*", groupHandler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(d.Store))
	r.Handle("/metrics", middleware.MetricsHandler())

	return r
}

func readyz(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, ok := store.(readyChecker)
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		if err := rc.Ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// requestLogger logs all incoming requests
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("Request completed",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"remote_addr", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
