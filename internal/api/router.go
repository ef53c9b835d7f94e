package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/api/handlers"
	"github.com/dom/cyprine-heroes/internal/api/middleware"
	"github.com/dom/cyprine-heroes/internal/config"
	"github.com/dom/cyprine-heroes/internal/service"
	"github.com/dom/cyprine-heroes/internal/storage"
)

func NewRouter(services *service.Services, images *storage.ImageStore, cfg *config.Config, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Uploaded pictures
	r.Handle(storage.PublicPrefix+"*", http.StripPrefix(storage.PublicPrefix, http.FileServer(images.HTTPFileSystem())))

	authHandler := handlers.NewAuthHandler(services.Auth, log)
	heroHandler := handlers.NewHeroHandler(services.Hero, log)
	requireAuth := middleware.Auth(services.Auth, log)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Route("/heroes", func(r chi.Router) {
			r.Get("/", heroHandler.GetAll)
			r.Get("/{id}", heroHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", heroHandler.Create)
				r.Put("/{id}", heroHandler.Update)
				r.Delete("/{id}", heroHandler.Delete)
				r.Post("/upload-image/{id}", heroHandler.UploadImage)
			})
		})
	})

	return r
}
