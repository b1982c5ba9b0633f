package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakshee44566/CareerHub/internal/db"
	appmiddleware "github.com/sakshee44566/CareerHub/internal/middleware"
	"github.com/sakshee44566/CareerHub/internal/session"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 10 << 20

type Deps struct {
	Store              *db.Store
	Sessions           *session.Authority
	Relay              Relay
	CorsAllowedOrigins []string
	Production         bool
}

// Router is the HTTP surface of the API. Close releases the rate limiters.
type Router struct {
	chi.Router
	limiters []*appmiddleware.RateLimiter
}

func NewRouter(d Deps) *Router {
	// Global limit: 100 requests per 15 minutes per IP.
	globalLimiter := appmiddleware.NewRateLimiter(100, 15*time.Minute, "Too many requests, please try again later.")
	// 5 login attempts per minute per IP.
	loginLimiter := appmiddleware.NewRateLimiter(5, time.Minute, "Too many login attempts, please try again later.")
	emailLimit, emailWindow := 1000, time.Minute
	if d.Production {
		emailLimit, emailWindow = 5, time.Hour
	}
	emailLimiter := appmiddleware.NewRateLimiter(emailLimit, emailWindow, "Too many email requests, please try again later.")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "SAMEORIGIN"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	r.Use(middleware.RequestSize(MaxBodyBytes))
	r.Use(globalLimiter.Limit)

	r.Get("/health", Health)

	authHandler := NewAuthHandler(d.Sessions)
	postsHandler := NewPostsHandler(d.Store)
	contactHandler := NewContactHandler(d.Relay)
	requireSession := appmiddleware.RequireSession(d.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", APIHealth)

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Limit).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postsHandler.List)
			r.Get("/{id}", postsHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", postsHandler.Create)
				r.Put("/{id}", postsHandler.Update)
				r.Delete("/{id}", postsHandler.Delete)
			})
		})

		r.With(emailLimiter.Limit).Post("/contact", contactHandler.Contact)
		r.With(emailLimiter.Limit).Post("/subscribe", contactHandler.Subscribe)
		r.With(requireSession).Get("/email/verify", contactHandler.VerifyEmail)
	})

	return &Router{
		Router:   r,
		limiters: []*appmiddleware.RateLimiter{globalLimiter, loginLimiter, emailLimiter},
	}
}

func (rt *Router) Close() {
	for _, l := range rt.limiters {
		l.Stop()
	}
}

var _ http.Handler = (*Router)(nil)
