package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
	"github.com/ziadkadry99/campusbot/internal/history"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins
}

// Answerer answers questions over the indexed corpus.
type Answerer interface {
	Ask(ctx context.Context, question string) (*chatbot.Answer, error)
	Len() int
}

// HistoryStore records answered questions.
type HistoryStore interface {
	Record(ctx context.Context, ex history.Exchange) (*history.Exchange, error)
	Recent(ctx context.Context, limit int) ([]history.Exchange, error)
}

// Server is the campus chatbot HTTP server.
type Server struct {
	cfg        Config
	bot        Answerer
	history    HistoryStore
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. history may be nil, in which case exchanges are
// not recorded and /api/history returns an empty list.
func New(cfg Config, bot Answerer, hist HistoryStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		bot:     bot,
		history: hist,
		logger:  logger,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", s.handleIndex)
		r.Get("/healthz", s.handleHealth)
		r.Post("/chat", s.handleChat)
		r.Get("/api/history", s.handleHistory)
	})

	// Long-lived connection, outside the request timeout.
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("campusbot server listening", "addr", addr, "documents", s.bot.Len())
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
