// Package quiz contains the session core: building the question sequence for
// a session and driving it question by question with resumable progress.
package quiz

import (
	"context"
	"encoding/json"
	"math/rand"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/repository"
)

// CompletionFunc receives the full answer history exactly once, when the
// session advances past its last question.
type CompletionFunc func(history []models.AnsweredEntry)

// Engine owns one quiz session: the current-question pointer, the display
// order of the current question's options, the accumulated answer history and
// the persisted progress snapshot.
//
// The engine is not safe for concurrent use; callers serialize operations.
type Engine struct {
	log         *logger.Logger
	questions   []models.QuestionRecord
	store       repository.ProgressStore
	progressKey string
	onComplete  CompletionFunc
	onReset     func()

	index       int
	pending     models.OptionKey // "" means no selection yet
	history     []models.AnsweredEntry
	optionOrder [4]models.OptionKey
	showExplain bool
	completed   bool
}

// New constructs an engine over a fixed question sequence. A structurally
// valid snapshot under progressKey resumes the session at its saved point;
// anything else starts fresh at the first question. An empty question
// sequence completes immediately with an empty history.
func New(ctx context.Context, questions []models.QuestionRecord, store repository.ProgressStore, progressKey string, onComplete CompletionFunc, onReset func()) *Engine {
	e := &Engine{
		log:         logger.Default().WithPrefix("engine"),
		questions:   questions,
		store:       store,
		progressKey: progressKey,
		onComplete:  onComplete,
		onReset:     onReset,
		optionOrder: shuffledKeys(),
	}

	if snap, ok := e.loadProgress(ctx); ok {
		e.index = snap.CurrentIndex
		e.history = snap.History
		e.pending = snap.PendingSelection
		e.log.Info("resumed session: index=%d, answered=%d", e.index, len(e.history))
	}

	if len(e.questions) == 0 {
		e.complete(ctx)
	}
	return e
}

// loadProgress reads the persisted snapshot and validates it against the
// question set. Malformed or out-of-range snapshots are treated as absent.
func (e *Engine) loadProgress(ctx context.Context) (models.SessionProgress, bool) {
	var snap models.SessionProgress

	raw, err := e.store.Load(ctx, e.progressKey)
	if err != nil {
		e.log.Warn("failed to load progress, starting fresh: %v", err)
		return snap, false
	}
	if raw == nil {
		return snap, false
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		e.log.Warn("malformed progress snapshot, starting fresh: %v", err)
		return snap, false
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(e.questions) {
		e.log.Warn("progress index %d out of range for %d questions, starting fresh", snap.CurrentIndex, len(e.questions))
		return models.SessionProgress{}, false
	}
	if len(snap.History) != snap.CurrentIndex {
		e.log.Warn("progress history length %d does not match index %d, starting fresh", len(snap.History), snap.CurrentIndex)
		return models.SessionProgress{}, false
	}
	if snap.PendingSelection != "" && !snap.PendingSelection.Valid() {
		e.log.Warn("progress has invalid pending selection %q, starting fresh", snap.PendingSelection)
		return models.SessionProgress{}, false
	}
	return snap, true
}

// persist writes the current snapshot. Failures are non-fatal: the in-memory
// session keeps working, only resume-after-reload is lost.
func (e *Engine) persist(ctx context.Context) {
	raw, err := json.Marshal(models.SessionProgress{
		CurrentIndex:     e.index,
		History:          e.history,
		PendingSelection: e.pending,
	})
	if err != nil {
		e.log.Error("failed to marshal progress: %v", err)
		return
	}
	if err := e.store.Save(ctx, e.progressKey, raw); err != nil {
		e.log.Warn("failed to save progress: %v", err)
	}
}

// SelectOption records key as the in-progress selection for the current
// question. Re-selecting overwrites; history is untouched.
func (e *Engine) SelectOption(ctx context.Context, key models.OptionKey) {
	if e.completed || !key.Valid() {
		return
	}
	e.pending = key
	e.persist(ctx)
}

// SelectPosition selects whatever option currently occupies the given screen
// position (0-3), translating it to the underlying option key.
func (e *Engine) SelectPosition(ctx context.Context, pos int) {
	if pos < 0 || pos >= len(e.optionOrder) {
		return
	}
	e.SelectOption(ctx, e.optionOrder[pos])
}

// Advance records the pending selection and moves to the next question, or
// completes the session on the last one. Without a pending selection this is
// a no-op: the engine never records an unanswered question.
func (e *Engine) Advance(ctx context.Context) {
	if e.completed || e.pending == "" {
		return
	}

	q := e.questions[e.index]
	e.history = append(e.history, models.AnsweredEntry{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Options:      q.Options,
		SelectedKey:  e.pending,
		CorrectKey:   q.CorrectKey,
		Explanation:  q.Explanation,
		IsCorrect:    e.pending == q.CorrectKey,
		Topic:        q.Topic,
	})

	if e.index == len(e.questions)-1 {
		e.complete(ctx)
		return
	}

	e.index++
	e.pending = ""
	e.showExplain = false
	e.optionOrder = shuffledKeys()
	e.persist(ctx)
}

// Retreat steps back to the previous question, removing its history entry and
// restoring the selection that was recorded for it. The option order is
// regenerated; the restored selection is tracked by key, so the highlight
// stays on the right option regardless of the new permutation.
func (e *Engine) Retreat(ctx context.Context) {
	if e.completed || e.index == 0 {
		return
	}

	e.index--
	e.showExplain = false
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.pending = last.SelectedKey
	e.optionOrder = shuffledKeys()
	e.persist(ctx)
}

// ToggleExplanation flips explanation visibility. It has no effect on history
// or navigation and is allowed whether or not a selection exists.
func (e *Engine) ToggleExplanation() {
	if e.completed {
		return
	}
	e.showExplain = !e.showExplain
}

// Reset clears the persisted progress for this session and signals the host
// to discard the engine.
func (e *Engine) Reset(ctx context.Context) {
	if err := e.store.Clear(ctx, e.progressKey); err != nil {
		e.log.Warn("failed to clear progress on reset: %v", err)
	}
	if e.onReset != nil {
		e.onReset()
	}
}

func (e *Engine) complete(ctx context.Context) {
	e.completed = true
	e.pending = ""
	e.showExplain = false
	if err := e.store.Clear(ctx, e.progressKey); err != nil {
		e.log.Warn("failed to clear progress on completion: %v", err)
	}
	e.log.Info("session completed: %d answers", len(e.history))
	if e.onComplete != nil {
		e.onComplete(e.History())
	}
}

// Completed reports whether the session has reached its terminal state.
func (e *Engine) Completed() bool { return e.completed }

// Index returns the 0-based current question index.
func (e *Engine) Index() int { return e.index }

// Len returns the session's fixed question count.
func (e *Engine) Len() int { return len(e.questions) }

// Current returns the current question, or nil when completed.
func (e *Engine) Current() *models.QuestionRecord {
	if e.completed || e.index >= len(e.questions) {
		return nil
	}
	q := e.questions[e.index]
	return &q
}

// OptionOrder returns the display permutation for the current question. It is
// computed when a question becomes current and held fixed until navigation,
// so re-rendering never reshuffles the options.
func (e *Engine) OptionOrder() [4]models.OptionKey { return e.optionOrder }

// Pending returns the in-progress selection, or "" when none exists.
func (e *Engine) Pending() models.OptionKey { return e.pending }

// ExplanationVisible reports whether the explanation is toggled on.
func (e *Engine) ExplanationVisible() bool { return e.showExplain }

// History returns a copy of the accumulated answer history.
func (e *Engine) History() []models.AnsweredEntry {
	return append([]models.AnsweredEntry(nil), e.history...)
}

func shuffledKeys() [4]models.OptionKey {
	order := models.AllOptionKeys
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
