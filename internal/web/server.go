package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/collegeapp/registrar/internal/config"
	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/relations"
	"github.com/collegeapp/registrar/internal/rows"
	"github.com/collegeapp/registrar/internal/view"
	"github.com/collegeapp/registrar/internal/web/handlers"
	"github.com/collegeapp/registrar/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	port       int
	bind       string
	allowedNet *net.IPNet
	runtime    *config.Runtime
	router     *chi.Mux
	handlers   *handlers.Handlers
}

// NewServer creates a new web server
func NewServer(db *database.DB, prims *rows.Primitives, rel *relations.Manager, viewer *view.Viewer, port int, bind string, allowedNet *net.IPNet, rt *config.Runtime) *Server {
	if rt == nil {
		rt = config.Load(nil)
	}
	s := &Server{
		port:       port,
		bind:       bind,
		allowedNet: allowedNet,
		runtime:    rt,
		router:     chi.NewRouter(),
		handlers:   handlers.New(db, prims, rel, viewer, rt.ViewRowLimit),
	}
	s.setupRoutes()
	return s
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	r := s.router
	h := s.handlers

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.allowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/views", h.Tables)
		r.Get("/views/{table}", h.ViewTable)
		r.Get("/students/{studentID}/schedule", h.StudentSchedule)

		r.Route("/courses/{courseID}", func(r chi.Router) {
			r.Get("/members", h.CourseMembers)
			r.Post("/students/{studentID}", h.Enroll)
			r.Delete("/students/{studentID}", h.Withdraw)
			r.Post("/instructors/{instructorID}", h.Assign)
			r.Delete("/instructors/{instructorID}", h.Unassign)
		})
	})
}

// Start starts the web server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.runtime.HTTPReadTimeout,
		WriteTimeout: s.runtime.HTTPWriteTimeout,
		// IdleTimeout for keep-alive connections between requests
		IdleTimeout: 120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
