// Package api exposes learning sessions over HTTP/JSON.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/notify"
	"github.com/p-n-ai/pai-quest/internal/session"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Config holds dependencies for the HTTP API.
type Config struct {
	Sessions       *session.Manager
	Hub            *notify.Hub
	Skills         []curriculum.Skill
	Checks         map[string]Checker
	AllowedOrigins []string
}

// Server serves the HTTP API.
type Server struct {
	sessions *session.Manager
	catalog  curriculum.Repository
	hub      *notify.Hub
	skills   []curriculum.Skill
	checks   map[string]Checker
	stream   notify.StreamOptions
}

// New builds the router.
func New(cfg Config) http.Handler {
	s := &Server{
		sessions: cfg.Sessions,
		catalog:  cfg.Sessions.Catalog(),
		hub:      cfg.Hub,
		skills:   cfg.Skills,
		checks:   cfg.Checks,
		stream:   notify.StreamOptions{OriginPatterns: originHosts(cfg.AllowedOrigins)},
	}
	if s.hub == nil {
		s.hub = notify.NewHub()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Get("/modules", s.handleListModules)
	r.Get("/modules/{moduleID}", s.handleGetModule)
	r.Get("/skills", s.handleSkills)
	r.Get("/learners/{learnerID}/achievements", s.handleAchievements)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleEndSession)
			r.Post("/advance", s.handleAdvance)
			r.Post("/retreat", s.handleRetreat)
			r.Post("/reset", s.handleReset)
			r.Put("/quiz/answers", s.handleSelectAnswer)
			r.Post("/quiz/submit", s.handleSubmitQuiz)
			r.Post("/quiz/reveal", s.handleRevealAnswers)
			r.Get("/quiz/report.xlsx", s.handleQuizReport)
			r.Get("/events", s.handleEvents)
		})
	})

	return r
}

// requestLogger logs one line per request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// originHosts turns allowed origins into websocket origin patterns.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
