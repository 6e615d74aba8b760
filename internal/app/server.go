package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/orgsearch-io/orgsearch/internal/api/handlers"
	appMiddleware "github.com/orgsearch-io/orgsearch/internal/api/middlewares"
	"github.com/orgsearch-io/orgsearch/internal/config"
	"github.com/orgsearch-io/orgsearch/internal/core"
	ingest "github.com/orgsearch-io/orgsearch/internal/core/ingestion_engine"
	"github.com/orgsearch-io/orgsearch/internal/core/retrieval"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, ing *ingest.DocumentIngestor, engine *retrieval.Engine) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	ingestHandler := handlers.NewIngestHandler(obj, ing, cfg)
	searchHandler := handlers.NewSearchHandler(engine)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)
		api.Get("/search/health", searchHandler.Health)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JWTSecret))
			protected.Post("/documents/upload", ingestHandler.UploadDocuments)
			protected.Get("/ingest/progress/{jobID}", ingestHandler.Progress)
			protected.Post("/search/hybrid", searchHandler.HybridSearch)
		})
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
