package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"problem_tracker/internal/api/handler"
	"problem_tracker/internal/api/middleware"
	"problem_tracker/internal/app/service"
	"problem_tracker/internal/common"
)

type Options struct {
	RequestTimeout time.Duration
	// Metrics is optional; nil disables instrumentation and /metrics.
	Metrics *middleware.Metrics
}

func NewRouter(svc service.Services, db handler.Pinger, logger *zap.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	if opts.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	handler.NewHealthHandler(db, logger).RegisterRoutes(r)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	handler.NewUserHandler(svc.Users, logger).RegisterRoutes(r)
	handler.NewProblemHandler(svc.Problems, svc.Views, logger).RegisterRoutes(r)
	handler.NewSolutionHandler(svc.Solutions, logger).RegisterRoutes(r)
	handler.NewResourceHandler(svc.Resources, svc.Views, logger).RegisterRoutes(r)
	handler.NewTagHandler(svc.Tags, logger).RegisterRoutes(r)
	handler.NewLinkHandler(svc.Links, logger).RegisterRoutes(r)
	handler.NewDashboardHandler(svc.Views, logger).RegisterRoutes(r)

	return r
}
