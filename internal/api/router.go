package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/focustrack/backend/internal/analysis"
	"github.com/focustrack/backend/internal/api/handlers"
	"github.com/focustrack/backend/internal/api/middleware"
	"github.com/focustrack/backend/internal/auth"
	"github.com/focustrack/backend/internal/blob"
	"github.com/focustrack/backend/internal/config"
	"github.com/focustrack/backend/internal/db"
	"github.com/focustrack/backend/internal/profile"
)

func NewRouter(
	database *db.Database,
	jwtService *auth.JWTService,
	cfg *config.Config,
	blobs *blob.Store,
	profiles *profile.Service,
	pipeline *analysis.Pipeline,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	bucketer := analysis.NewBucketer(cfg.Location)
	authHandler := handlers.NewAuthHandler(database, jwtService)
	profileHandler := handlers.NewProfileHandler(profiles)
	videoHandler := handlers.NewVideoHandler(database, pipeline)
	resultsHandler := handlers.NewResultsHandler(database, bucketer)
	engineHandler := handlers.NewEngineHandler(database, cfg.EngineToken)

	// Stored blobs (videos, profile pictures) are public, like the managed
	// store's public bucket URLs.
	fileServer := http.StripPrefix("/blobs/", http.FileServer(http.Dir(blobs.BasePath())))
	r.Get("/blobs/*", fileServer.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// Auth (public)
		r.With(middleware.MaxBodySize(1 << 20)).Post("/auth/login", authHandler.Login)

		// Analysis engine write surface (token-guarded, not session-guarded)
		r.Post("/engine/results", engineHandler.IngestResults)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Auth
			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/signout", authHandler.SignOut)

			// Profile
			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(1 << 20))
				r.Get("/profile", profileHandler.Get)
				r.Put("/profile", profileHandler.Update)
			})
			r.Post("/profile/picture", profileHandler.UploadPicture)

			// Videos
			r.Post("/videos", videoHandler.Upload)
			r.Get("/videos/current", videoHandler.Current)

			// Results
			r.Get("/results", resultsHandler.Grouped)
			r.Get("/results/latest", resultsHandler.Latest)
			r.Get("/home", resultsHandler.Home)
		})
	})

	return r
}
