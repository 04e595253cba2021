package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hanbit-dev/pagecraft/internal/api/handlers"
	"github.com/hanbit-dev/pagecraft/internal/config"
	"github.com/hanbit-dev/pagecraft/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, content *services.ContentService, story *services.StoryService, media *services.MediaService, sidebar *services.SidebarService) *Server {
	contentHandler := handlers.NewContentHandler(content)
	storyHandler := handlers.NewStoryHandler(story)
	mediaHandler := handlers.NewMediaHandler(media, cfg.MaxUploadMB)
	sidebarHandler := handlers.NewSidebarHandler(sidebar)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Fitting-cut synthesis polls a remote task and can take a while.
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		// Cache-or-generate content pipeline.
		api.Post("/generate-reviews", contentHandler.GenerateReviews)
		api.Post("/generate-qna", contentHandler.GenerateQnA)
		api.Post("/generate-policy", contentHandler.GeneratePolicy)

		// Vision copywriting.
		api.Post("/product-story", storyHandler.ProductStory)
		api.Post("/image-descriptions", storyHandler.ImageDescriptions)

		// Media.
		api.Post("/uploads", mediaHandler.Upload)
		api.Post("/fitting-cut", mediaHandler.FittingCut)

		// Sidebar.
		api.Get("/sidebar-info/{userId}", sidebarHandler.Get)
		api.Put("/sidebar-info/{userId}", sidebarHandler.Update)
		api.Post("/save-edited-prompt", sidebarHandler.SaveEditedPrompt)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
