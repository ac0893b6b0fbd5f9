// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rogeriosantos/broskate2/internal/auth"
	"github.com/rogeriosantos/broskate2/internal/metrics"
)

// Router wires handlers to routes with the middleware stack.
type Router struct {
	handlers   *Handlers
	middleware *auth.Middleware
}

// NewRouter creates a router over the given handlers and auth middleware.
func NewRouter(handlers *Handlers, middleware *auth.Middleware) *Router {
	return &Router{
		handlers:   handlers,
		middleware: middleware,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// CORS is global so OPTIONS preflights are answered everywhere.
	r.Use(chiMiddleware(router.middleware.CORS))

	r.Get("/health", router.handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/ws", func(r chi.Router) {
		// The WebSocket upgrade authenticates via query token inside the
		// session handshake, not via the HTTP middleware: browsers cannot
		// set an Authorization header on WebSocket requests.
		r.Get("/{user_id:[0-9]+}", router.handlers.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(router.middleware.RateLimit))
			r.Use(prometheusMetrics)
			r.Use(chiMiddleware(router.middleware.Authenticate))

			r.Get("/connections", router.handlers.Connections)
			r.Post("/notify/{user_id:[0-9]+}", router.handlers.NotifyUser)
		})

		// Channel broadcast is admin-only.
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(router.middleware.RateLimit))
			r.Use(prometheusMetrics)
			r.Use(chiMiddleware(func(next http.HandlerFunc) http.HandlerFunc {
				return router.middleware.RequireRole("admin", next)
			}))

			r.Post("/broadcast/{channel}", router.handlers.Broadcast)
		})
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(chiMiddleware(router.middleware.RateLimit))
		r.Use(prometheusMetrics)
		r.Use(chiMiddleware(router.middleware.Authenticate))

		r.Get("/", router.handlers.Notifications)
		r.Get("/unread-count", router.handlers.UnreadCount)
		r.Post("/{notification_id}/read", router.handlers.MarkNotificationRead)
		r.Post("/read-all", router.handlers.MarkAllNotificationsRead)
	})

	return r
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// prometheusMetrics records request counts and latency per route pattern.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// The route pattern is only complete after the handler ran.
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.APIRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
