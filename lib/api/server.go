package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rangefence/rangefence/lib/log"
)

// Server is the HTTP API server with its integrated sync service.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	syncSvc    *SyncService
}

func NewServer(configPath string, bindAddr string) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		syncSvc: NewSyncService(configPath),
	}

	s.router.Use(RecoveryMiddleware)
	s.router.Use(LoggingMiddleware)
	s.router.Use(CORSMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         bindAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", HandleStatus(s.syncSvc))

		r.Route("/feeds", func(r chi.Router) {
			r.Get("/", HandleFeedsList(s.syncSvc))
			r.Post("/{feed_name}/sync", HandleFeedSync(s.syncSvc))
			r.Get("/{feed_name}/addresses", HandleFeedAddresses(s.syncSvc))
		})
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Infof("[API] Listening on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down...")
	return s.httpServer.Shutdown(ctx)
}
