package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/service"
)

// Server exposes the read-side REST API: dialog history, character listings
// and an admin deactivation hook.
type Server struct {
	cfg        *config.Config
	users      *service.UserService
	characters *service.CharacterService
	dialogs    *service.DialogService

	http *http.Server
}

func NewServer(cfg *config.Config, users *service.UserService, characters *service.CharacterService, dialogs *service.DialogService) *Server {
	s := &Server{
		cfg:        cfg,
		users:      users,
		characters: characters,
		dialogs:    dialogs,
	}
	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/dialogs/{telegramID}/{characterID}/history", s.handleHistory)
		r.Get("/dialogs/{telegramID}/{characterID}/stats", s.handleStats)
		r.Get("/characters", s.handleCharacters)
		r.Post("/characters/{characterID}/deactivate-dialogs", s.handleDeactivateDialogs)
	})

	return r
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// swallowed, it is the normal shutdown path.
func (s *Server) ListenAndServe() error {
	slog.Info("http api listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// requireToken guards the API with a static bearer token. An empty
// configured token disables the API entirely rather than leaving it open.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken == "" {
			writeError(w, http.StatusForbidden, "api disabled")
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.APIToken {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
