package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/Blurjp/pathavana/docs"
	"github.com/Blurjp/pathavana/internal/api/auth"
	"github.com/Blurjp/pathavana/internal/api/itinerary"
	"github.com/Blurjp/pathavana/internal/api/session"
)

// Config contains the handlers and middleware needed for the router setup.
type Config struct {
	AuthHandler            auth.Handler
	SessionHandler         session.Handler
	ItineraryHandler       itinerary.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires all API routes. Server-wide middleware (request ID,
// logging, recoverer) is applied before mounting this router in main.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
		})

		// Everything below requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)

			r.Route("/travel/sessions", func(r chi.Router) {
				r.Post("/", cfg.SessionHandler.StartSession)
				r.Get("/", cfg.SessionHandler.ListUserSessions)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", cfg.SessionHandler.GetSession)
					r.Post("/chat", cfg.SessionHandler.Chat)
					r.Post("/end", cfg.SessionHandler.EndSession)

					r.Route("/itinerary", func(r chi.Router) {
						r.Post("/", cfg.ItineraryHandler.AddItem)
						r.Get("/", cfg.ItineraryHandler.GetItinerary)
						r.Get("/summary", cfg.ItineraryHandler.GetSummary)
						r.Patch("/{itemID}", cfg.ItineraryHandler.UpdateItem)
						r.Delete("/{itemID}", cfg.ItineraryHandler.RemoveItem)
					})
				})
			})
		})
	})

	return r
}
