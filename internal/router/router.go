// Package router declares the HTTP routes and the middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BorisDmv/posts-api/internal/auth"
	"github.com/BorisDmv/posts-api/internal/handlers"
	appmiddleware "github.com/BorisDmv/posts-api/internal/middleware"
	"github.com/BorisDmv/posts-api/internal/policy"
)

// Store is what the routes need from persistence.
type Store interface {
	handlers.PostStore
	handlers.Pinger
}

type Options struct {
	Store              Store
	Tokens             *auth.Tokens
	CorsAllowedOrigins []string

	// Policy defaults to policy.PostPolicy.
	Policy policy.Authorizer
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
}

func New(opts Options) http.Handler {
	if opts.Policy == nil {
		opts.Policy = policy.PostPolicy{}
	}
	if opts.Tokens == nil {
		// rejects every token
		opts.Tokens = auth.NewTokens(nil)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if len(opts.CorsAllowedOrigins) == 0 {
		opts.CorsAllowedOrigins = []string{"*"}
	}

	metrics := appmiddleware.NewMetrics(opts.Registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	r.Use(metrics.Handler)

	r.Get("/health", handlers.Health(opts.Store))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	posts := handlers.NewPostsHandler(opts.Store, opts.Policy)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", posts.List)
		r.Get("/{id}", posts.Show)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Authenticate(opts.Tokens))
			r.Use(appmiddleware.RequireVerified)
			r.Post("/", posts.Create)
			r.Put("/{id}", posts.Update)
			r.Delete("/{id}", posts.Delete)
		})
	})

	return r
}
