// Package web serves a read-only review API over a pipeline run's output
// directory, so an operator can inspect the run summary, the column
// mapping and the review queue without opening the CSVs by hand.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
)

// Server exposes one output directory over HTTP.
type Server struct {
	outputDir  string
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a review server for an existing output directory.
func NewServer(outputDir string, addr string) (*Server, error) {
	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", outputDir)
	}

	server := &Server{outputDir: outputDir}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server, nil
}

// setupRoutes configures all HTTP routes. Everything is read-only; the
// run's partitions are never modified through this surface.
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	h := &Handler{OutputDir: s.outputDir}

	s.router.HandleFunc("/healthz", h.Health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/mapping", h.GetMapping).Methods("GET")
	api.HandleFunc("/partitions", h.ListPartitions).Methods("GET")
	api.HandleFunc("/partitions/{name}", h.GetPartition).Methods("GET")
	api.HandleFunc("/review", h.GetReviewQueue).Methods("GET")

	s.router.Use(requestLogging())
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Review server on http://%s (output dir: %s)\n", s.httpServer.Addr, s.outputDir)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down review server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Router exposes the handler tree, used by tests to serve requests
// without binding a socket.
func (s *Server) Router() http.Handler {
	return s.router
}

// requestLogging logs each request with its duration.
func requestLogging() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			fmt.Printf("%s %s %s\n", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
		})
	}
}
