package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizdeck/quizdeck/internal/errors"
	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/results"
	"github.com/quizdeck/quizdeck/internal/session"
)

type pageData map[string]any

// optionView is one answer control in display order.
type optionView struct {
	Key      models.OptionKey
	Text     string
	Selected bool
}

func (s *Server) session(r *http.Request) *session.Session {
	return s.Sessions.Get(r.Context(), sessionIDFromContext(r.Context()))
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("rendering welcome page")

	view := s.session(r).View()

	var attempts []models.Attempt
	if s.Attempts != nil {
		var err error
		attempts, err = s.Attempts.List(r.Context(), models.AttemptFilter{SessionID: view.ID, Limit: 10})
		if err != nil {
			log.Warn("failed to list past attempts: %v", err)
		}
	}

	s.render(w, r, "pages/welcome.html", pageData{
		"topics":     s.Dataset.Topics(),
		"attempts":   attempts,
		"inProgress": view.Screen == models.ScreenQuiz,
	})
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	modeStr := strings.ToLower(strings.TrimSpace(r.FormValue("mode")))
	if modeStr != string(quiz.ModeAll) && modeStr != string(quiz.ModeRandom) {
		log.Warn("invalid quiz mode: %q", modeStr)
		handleError(w, r, errors.NewBadRequestError("invalid quiz mode"))
		return
	}
	topic := strings.TrimSpace(r.FormValue("topic"))

	s.session(r).Start(r.Context(), quiz.Mode(modeStr), topic)
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	view := s.session(r).View()

	switch view.Screen {
	case models.ScreenResults:
		http.Redirect(w, r, "/results", http.StatusSeeOther)
		return
	case models.ScreenWelcome:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if view.Question == nil {
		// Engine completed between redirects; results screen owns it now.
		http.Redirect(w, r, "/results", http.StatusSeeOther)
		return
	}

	options := make([]optionView, 0, len(view.OptionOrder))
	for _, key := range view.OptionOrder {
		options = append(options, optionView{
			Key:      key,
			Text:     view.Question.Options[key],
			Selected: view.Pending == key,
		})
	}

	s.render(w, r, "pages/quiz.html", pageData{
		"index":           view.Index,
		"total":           view.Total,
		"question":        view.Question,
		"options":         options,
		"hasSelection":    view.Pending != "",
		"showExplanation": view.ShowExplanation,
		"correctText":     view.Question.Options[view.Question.CorrectKey],
		"isLast":          view.Index == view.Total-1,
		"canRetreat":      view.Index > 0,
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	key := models.OptionKey(strings.ToUpper(strings.TrimSpace(r.FormValue("key"))))
	if !key.Valid() {
		handleError(w, r, errors.NewBadRequestError("invalid option key"))
		return
	}
	s.session(r).Select(r.Context(), key)
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.Advance(r.Context())
	if sess.View().Screen == models.ScreenResults {
		http.Redirect(w, r, "/results", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.session(r).Retreat(r.Context())
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleToggleExplanation(w http.ResponseWriter, r *http.Request) {
	s.session(r).ToggleExplanation()
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	key := r.FormValue("key")
	logger.FromContext(r.Context()).Debug("keyboard event: %q", key)
	s.session(r).ApplyKey(r.Context(), key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Info("resetting session")
	s.session(r).Reset(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	view := s.session(r).View()
	if view.Screen == models.ScreenQuiz {
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}
	if len(view.History) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	summary := results.Summarize(view.History)
	s.render(w, r, "pages/results.html", pageData{
		"summary":      summary,
		"isRandomMode": view.Mode == quiz.ModeRandom,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view := s.session(r).View()
	if view.Screen != models.ScreenResults || len(view.History) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	now := time.Now()
	sheet := results.ExportReviewSheet(results.Summarize(view.History), now)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+results.ExportFilename(now)+`"`)
	_, _ = w.Write([]byte(sheet))
}

func (s *Server) handleAttemptDetail(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Warn("invalid attempt id: %s", idStr)
		handleError(w, r, errors.NewBadRequestError("invalid attempt id"))
		return
	}

	attempt, err := s.Attempts.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	if attempt == nil || attempt.SessionID != sessionIDFromContext(r.Context()) {
		handleError(w, r, errors.NewNotFoundError("attempt", id))
		return
	}

	entries, err := s.Attempts.Entries(r.Context(), id)
	if err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}

	summary := results.Summarize(entries)
	s.render(w, r, "pages/results.html", pageData{
		"summary":      summary,
		"isRandomMode": attempt.Mode == string(quiz.ModeRandom),
		"attempt":      attempt,
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}

	log := logger.FromContext(r.Context())
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
