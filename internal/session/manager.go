// Package session is the host shell around the quiz engine: it maps browser
// sessions to live engines, persists the session-level record and archives
// completed attempts.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/quizdeck/quizdeck/internal/dataset"
	"github.com/quizdeck/quizdeck/internal/keys"
	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/quiz"
	"github.com/quizdeck/quizdeck/internal/repository"
)

// Manager owns all live sessions. At most one engine exists per session id,
// so no two engines ever share a progress key.
type Manager struct {
	mu         sync.Mutex
	log        *logger.Logger
	dataset    *dataset.Repository
	store      repository.ProgressStore
	attempts   repository.AttemptRepository
	randomSize int
	sessions   map[string]*Session
}

// NewManager creates a session manager over the given collaborators.
func NewManager(ds *dataset.Repository, store repository.ProgressStore, attempts repository.AttemptRepository, randomSize int) *Manager {
	return &Manager{
		log:        logger.Default().WithPrefix("session"),
		dataset:    ds,
		store:      store,
		attempts:   attempts,
		randomSize: randomSize,
		sessions:   make(map[string]*Session),
	}
}

// Session is one browser session. All engine operations go through its
// mutex, so transitions (including their persistence writes) run to
// completion before the next one starts.
type Session struct {
	mu sync.Mutex
	m  *Manager

	id          string
	screen      string
	mode        quiz.Mode
	topicFilter string
	questionIDs []int64
	engine      *quiz.Engine
	finished    []models.AnsweredEntry
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	ID              string
	Screen          string
	Mode            quiz.Mode
	TopicFilter     string
	Index           int
	Total           int
	Question        *models.QuestionRecord
	OptionOrder     [4]models.OptionKey
	Pending         models.OptionKey
	ShowExplanation bool
	History         []models.AnsweredEntry
}

func shellKey(id string) string    { return "session:" + id }
func progressKey(id string) string { return "progress:" + id }

// Get returns the live session for id, restoring it from the persisted
// session record when the server has restarted since the quiz began.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	s := &Session{m: m, id: id, screen: models.ScreenWelcome}
	if shell, ok := m.loadShell(ctx, id); ok {
		s.mode = quiz.ParseMode(shell.QuizMode)
		s.topicFilter = shell.TopicFilter
		s.questionIDs = shell.QuestionIDs
		switch shell.CurrentScreen {
		case models.ScreenQuiz:
			questions := m.dataset.ByIDs(shell.QuestionIDs)
			m.log.Info("restoring quiz session %s with %d questions", id, len(questions))
			s.screen = models.ScreenQuiz
			s.engine = quiz.New(ctx, questions, m.store, progressKey(id), s.completeFn(), s.resetFn())
		case models.ScreenResults:
			s.screen = models.ScreenResults
			s.finished = shell.AnswerHistory
		}
	}

	m.sessions[id] = s
	return s
}

func (m *Manager) loadShell(ctx context.Context, id string) (models.ShellState, bool) {
	var shell models.ShellState

	raw, err := m.store.Load(ctx, shellKey(id))
	if err != nil {
		m.log.Warn("failed to load session record %s: %v", id, err)
		return shell, false
	}
	if raw == nil {
		return shell, false
	}
	if err := json.Unmarshal(raw, &shell); err != nil {
		m.log.Warn("malformed session record %s, ignoring: %v", id, err)
		return shell, false
	}
	return shell, true
}

// Start begins a new quiz for the session, replacing any previous engine.
func (s *Session) Start(ctx context.Context, mode quiz.Mode, topicFilter string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == quiz.ModeRandom {
		topicFilter = ""
	}

	// Discard any leftover progress from an earlier quiz.
	if err := s.m.store.Clear(ctx, progressKey(s.id)); err != nil {
		s.m.log.Warn("failed to clear stale progress: %v", err)
	}

	set := quiz.Initialize(s.m.dataset.All(), mode, topicFilter, s.m.randomSize)
	ids := make([]int64, len(set))
	for i, q := range set {
		ids[i] = q.ID
	}

	s.mode = mode
	s.topicFilter = topicFilter
	s.questionIDs = ids
	s.finished = nil
	s.screen = models.ScreenQuiz
	s.persistShell(ctx)

	s.m.log.Info("session %s started: mode=%s, topic=%q, questions=%d", s.id, mode, topicFilter, len(set))
	s.engine = quiz.New(ctx, set, s.m.store, progressKey(s.id), s.completeFn(), s.resetFn())
}

// completeFn builds the engine's completion callback. It runs inside an
// engine operation while the session lock is held, so it must not re-lock.
func (s *Session) completeFn() quiz.CompletionFunc {
	return func(history []models.AnsweredEntry) {
		ctx := context.Background()
		s.finished = history
		s.screen = models.ScreenResults
		s.persistShell(ctx)
		s.archive(ctx, history)
	}
}

func (s *Session) resetFn() func() {
	return func() {
		ctx := context.Background()
		s.screen = models.ScreenWelcome
		s.engine = nil
		s.finished = nil
		s.questionIDs = nil
		if err := s.m.store.Clear(ctx, shellKey(s.id)); err != nil {
			s.m.log.Warn("failed to clear session record: %v", err)
		}
	}
}

func (s *Session) persistShell(ctx context.Context) {
	shell := models.ShellState{
		CurrentScreen: s.screen,
		QuizMode:      string(s.mode),
		TopicFilter:   s.topicFilter,
		QuestionIDs:   s.questionIDs,
		AnswerHistory: s.finished,
	}
	raw, err := json.Marshal(shell)
	if err != nil {
		s.m.log.Error("failed to marshal session record: %v", err)
		return
	}
	if err := s.m.store.Save(ctx, shellKey(s.id), raw); err != nil {
		s.m.log.Warn("failed to save session record: %v", err)
	}
}

func (s *Session) archive(ctx context.Context, history []models.AnsweredEntry) {
	if s.m.attempts == nil || len(history) == 0 {
		return
	}
	correct := 0
	for _, entry := range history {
		if entry.IsCorrect {
			correct++
		}
	}
	attempt := models.Attempt{
		SessionID:   s.id,
		Mode:        string(s.mode),
		TopicFilter: s.topicFilter,
		Total:       len(history),
		Correct:     correct,
		Percent:     correct * 100 / len(history),
		FinishedAt:  time.Now(),
	}
	if _, err := s.m.attempts.Insert(ctx, attempt, history); err != nil {
		s.m.log.Warn("failed to archive attempt: %v", err)
	}
}

// Select records an answer selection by option key.
func (s *Session) Select(ctx context.Context, key models.OptionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.SelectOption(ctx, key)
	}
}

// Advance moves to the next question (or completes the quiz).
func (s *Session) Advance(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.Advance(ctx)
	}
}

// Retreat moves back to the previous question.
func (s *Session) Retreat(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.Retreat(ctx)
	}
}

// ToggleExplanation flips explanation visibility.
func (s *Session) ToggleExplanation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		s.engine.ToggleExplanation()
	}
}

// ApplyKey routes a raw keyboard event through the key mapper. Unrecognized
// keys are ignored.
func (s *Session) ApplyKey(ctx context.Context, key string) {
	cmd, ok := keys.Map(key)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		cmd.Apply(ctx, s.engine)
	}
}

// Reset abandons the session: progress and session records are cleared and
// the engine is discarded.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		s.engine.Reset(ctx)
		return
	}
	// No engine (welcome or results screen): clear records directly.
	if err := s.m.store.Clear(ctx, progressKey(s.id)); err != nil {
		s.m.log.Warn("failed to clear progress: %v", err)
	}
	s.resetFn()()
}

// View returns a snapshot of the session for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:          s.id,
		Screen:      s.screen,
		Mode:        s.mode,
		TopicFilter: s.topicFilter,
		History:     s.finished,
	}
	if s.engine != nil && !s.engine.Completed() {
		v.Index = s.engine.Index()
		v.Total = s.engine.Len()
		v.Question = s.engine.Current()
		v.OptionOrder = s.engine.OptionOrder()
		v.Pending = s.engine.Pending()
		v.ShowExplanation = s.engine.ExplanationVisible()
		v.History = s.engine.History()
	}
	return v
}
