package models

import "time"

// OptionKey identifies one of the four fixed answer choices of a question,
// independent of the position it is displayed at on screen.
type OptionKey string

const (
	OptionA OptionKey = "A"
	OptionB OptionKey = "B"
	OptionC OptionKey = "C"
	OptionD OptionKey = "D"
)

// AllOptionKeys lists the four option keys in their canonical order.
var AllOptionKeys = [4]OptionKey{OptionA, OptionB, OptionC, OptionD}

// Valid reports whether k is one of A, B, C or D.
func (k OptionKey) Valid() bool {
	switch k {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// QuestionRecord is one multiple-choice question from the dataset.
// Records are immutable once loaded.
type QuestionRecord struct {
	ID          int64                `json:"id"`
	Text        string               `json:"question"`
	Options     map[OptionKey]string `json:"options"`
	CorrectKey  OptionKey            `json:"correctAnswer"`
	Explanation string               `json:"explanation"`
	Topic       string               `json:"topic"`
	Difficulty  string               `json:"difficulty"`
}

// AnsweredEntry is a frozen projection of a question plus the user's choice,
// recorded when the user advances past the question. It carries a copy of the
// question content so results stay reviewable independent of the dataset.
type AnsweredEntry struct {
	QuestionID   int64                `json:"questionId"`
	QuestionText string               `json:"question"`
	Options      map[OptionKey]string `json:"options"`
	SelectedKey  OptionKey            `json:"selectedAnswer"`
	CorrectKey   OptionKey            `json:"correctAnswer"`
	Explanation  string               `json:"explanation"`
	IsCorrect    bool                 `json:"isCorrect"`
	Topic        string               `json:"topic"`
}

// SessionProgress is the engine's persisted snapshot. It is written after
// every mutating transition and read once when an engine is constructed.
// A consistent snapshot has len(History) == CurrentIndex.
type SessionProgress struct {
	CurrentIndex     int             `json:"currentIndex"`
	History          []AnsweredEntry `json:"history"`
	PendingSelection OptionKey       `json:"pendingSelection,omitempty"`
}

// Screen names for the shell state machine.
const (
	ScreenWelcome = "welcome"
	ScreenQuiz    = "quiz"
	ScreenResults = "results"
)

// ShellState is the session-level persisted record owned by the host shell.
// QuestionIDs pins the exact question sequence of the running quiz so a
// restarted server reconstructs the same session the user started.
type ShellState struct {
	CurrentScreen string          `json:"currentScreen"`
	QuizMode      string          `json:"quizMode,omitempty"`
	TopicFilter   string          `json:"topicFilter,omitempty"`
	QuestionIDs   []int64         `json:"questionIds,omitempty"`
	AnswerHistory []AnsweredEntry `json:"answerHistory,omitempty"`
}

// Attempt is one archived, completed quiz run.
type Attempt struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Mode        string    `json:"mode"`
	TopicFilter string    `json:"topic_filter"`
	Total       int       `json:"total"`
	Correct     int       `json:"correct"`
	Percent     int       `json:"percent"`
	FinishedAt  time.Time `json:"finished_at"`
}

// AttemptFilter narrows attempt listings.
type AttemptFilter struct {
	SessionID string
	Mode      string
	Limit     int
	Offset    int
}
