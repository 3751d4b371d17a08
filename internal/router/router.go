package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/profilehub/profilehub/internal/api/auth"
)

// Config contains the dependencies needed for the router setup.
type Config struct {
	AuthHandler    *auth.AuthHandler
	Gate           *auth.Gate
	MetricsHandler http.Handler
	UploadsDir     string
}

// SetupRouter wires the application routes. Server-wide middleware (request
// ID, logging, recoverer) is applied by the caller before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Uploaded avatars are public static assets.
	if cfg.UploadsDir != "" {
		fs := http.FileServer(http.Dir(cfg.UploadsDir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fs))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Protected routes behind the authorization gate.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Gate.Middleware)

			r.Get("/auth/profile", cfg.AuthHandler.GetProfile)
			r.Put("/auth/profile", cfg.AuthHandler.UpdateProfile)
		})
	})

	return r
}
