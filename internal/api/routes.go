package api

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdeck/quizdeck/internal/dataset"
	"github.com/quizdeck/quizdeck/internal/repository"
	"github.com/quizdeck/quizdeck/internal/session"
)

type Server struct {
	Sessions  *session.Manager
	Dataset   *dataset.Repository
	Attempts  repository.AttemptRepository
	Templates *template.Template
	StaticDir string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(sessionMiddleware)

	r.Get("/", s.handleWelcome)
	r.Post("/quiz/start", s.handleStartQuiz)
	r.Get("/quiz", s.handleQuiz)
	r.Post("/quiz/select", s.handleSelect)
	r.Post("/quiz/next", s.handleNext)
	r.Post("/quiz/previous", s.handlePrevious)
	r.Post("/quiz/explanation", s.handleToggleExplanation)
	r.Post("/quiz/key", s.handleKey)
	r.Post("/quiz/reset", s.handleReset)
	r.Get("/results", s.handleResults)
	r.Get("/results/export", s.handleExport)
	r.Get("/attempts/{id}", s.handleAttemptDetail)

	staticDir := s.StaticDir
	if staticDir == "" {
		staticDir = "web/static"
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return r
}
