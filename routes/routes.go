package routes

import (
	"github.com/Dosada05/skyblock-api/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes регистрирует все HTTP-маршруты приложения.
func SetupRoutes(
	router *chi.Mux,
	profileHandler *handlers.ProfileHandler,
	contestHandler *handlers.ContestHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/players", func(r chi.Router) {
		r.Post("/{playerUuid}/ingest", profileHandler.IngestPlayer)
		r.Get("/{playerUuid}/contests", profileHandler.PlayerContestHistory)
	})

	router.Route("/contests", func(r chi.Router) {
		r.Get("/at/{timestamp}", contestHandler.GetContestsAt)
		r.Get("/month/{year}/{month}", contestHandler.GetContestsInMonth)

		r.Route("/calendar", func(r chi.Router) {
			r.Post("/", contestHandler.SubmitCalendar)
			r.Get("/{year}", contestHandler.GetCalendar)
		})

		// Ключ конкурса сам содержит двоеточия и подчеркивания, поэтому
		// он живет за статическими префиксами выше.
		r.Get("/{key}", contestHandler.GetContestByKey)
	})

	router.Get("/ws/events", webSocketHandler.ServeEvents)
}
