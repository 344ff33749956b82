package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"go.uber.org/zap"
)

// Server is the HTTP surface consumed by the rendering layer.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer wires the search handler into a router with the standard
// middleware chain.
func NewServer(port string, handler *SearchHandler, log *logger.Logger) *Server {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware, LoggingMiddleware(log))

	router.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/search/{location}", handler.Search).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log.Named("HTTPServer"),
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
