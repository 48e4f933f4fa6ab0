// Package router sets up all HTTP routes and middleware chains for the
// inkpress API. Routes are grouped by rate-limit budget, with admin
// authentication layered on top for mutating endpoints.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/auth"
	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/ratelimit"
)

// Per-minute request budgets, keyed per action and client IP.
const (
	loginLimit  = 5
	readLimit   = 60
	writeLimit  = 10
	updateLimit = 20

	limitWindow = time.Minute
)

// Deps bundles everything the router needs.
type Deps struct {
	Tokens     *auth.TokenService
	Limiter    *ratelimit.Limiter
	Auth       *handlers.Auth
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Upload     *handlers.Upload
	Feeds      *handlers.Feeds
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Authenticate(d.Tokens))

	limit := func(action string, max int) func(chi.Router) {
		return func(r chi.Router) {
			r.Use(middleware.RateLimit(d.Limiter, action, max, limitWindow))
		}
	}

	// Health check — no auth, no rate limit.
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		// Login is the tightest budget; failures consume it too.
		r.Group(func(r chi.Router) {
			limit("login", loginLimit)(r)
			r.Post("/auth", d.Auth.Login)
			r.Get("/auth", d.Auth.Check)
		})

		// Public reads.
		r.Group(func(r chi.Router) {
			limit("read", readLimit)(r)
			r.Get("/posts", d.Posts.List)
			r.Get("/posts/{slug}", d.Posts.Get)
			r.Get("/categories", d.Categories.Get)
		})

		// Admin mutations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Group(func(r chi.Router) {
				limit("write", writeLimit)(r)
				r.Post("/posts", d.Posts.Create)
				r.Delete("/posts/{slug}", d.Posts.Delete)
				r.Post("/categories", d.Categories.Add)
				r.Delete("/categories", d.Categories.Remove)
			})

			r.Group(func(r chi.Router) {
				limit("update", updateLimit)(r)
				r.Put("/posts/{slug}", d.Posts.Update)
			})

			r.Group(func(r chi.Router) {
				limit("upload", writeLimit)(r)
				r.Post("/upload", d.Upload.Post)
			})
		})
	})

	// Feed documents share the read budget.
	r.Group(func(r chi.Router) {
		limit("read", readLimit)(r)
		r.Get("/feed.xml", d.Feeds.RSS)
		r.Get("/sitemap.xml", d.Feeds.Sitemap)
	})

	return r
}
