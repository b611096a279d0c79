// Package dataset loads the static question set and answers
// topic-prefix queries over it.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
)

// Repository holds the full ordered set of question records. It is read-only
// after Load.
type Repository struct {
	questions []models.QuestionRecord
	byID      map[int64]models.QuestionRecord
}

type datasetFile struct {
	Quiz []models.QuestionRecord `json:"quiz"`
}

// Load reads and validates the JSON dataset at path.
func Load(path string) (*Repository, error) {
	log := logger.Default().WithPrefix("dataset")
	log.Info("loading dataset: %s", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var file datasetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	repo, err := New(file.Quiz)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded: %d questions, %d topics", repo.Len(), len(repo.Topics()))
	return repo, nil
}

// New builds a Repository from already-parsed records, validating each one.
func New(questions []models.QuestionRecord) (*Repository, error) {
	byID := make(map[int64]models.QuestionRecord, len(questions))
	for i, q := range questions {
		if err := validate(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id %d", i, q.ID)
		}
		byID[q.ID] = q
	}
	return &Repository{
		questions: append([]models.QuestionRecord(nil), questions...),
		byID:      byID,
	}, nil
}

func validate(q models.QuestionRecord) error {
	if q.ID <= 0 {
		return fmt.Errorf("id must be positive, got %d", q.ID)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("id %d: empty question text", q.ID)
	}
	if len(q.Options) != len(models.AllOptionKeys) {
		return fmt.Errorf("id %d: expected %d options, got %d", q.ID, len(models.AllOptionKeys), len(q.Options))
	}
	for _, key := range models.AllOptionKeys {
		if strings.TrimSpace(q.Options[key]) == "" {
			return fmt.Errorf("id %d: missing option %s", q.ID, key)
		}
	}
	if !q.CorrectKey.Valid() {
		return fmt.Errorf("id %d: invalid correct answer key %q", q.ID, q.CorrectKey)
	}
	if strings.TrimSpace(q.Topic) == "" {
		return fmt.Errorf("id %d: empty topic", q.ID)
	}
	return nil
}

// Len returns the number of questions in the repository.
func (r *Repository) Len() int {
	return len(r.questions)
}

// All returns a copy of the full ordered question set.
func (r *Repository) All() []models.QuestionRecord {
	return append([]models.QuestionRecord(nil), r.questions...)
}

// ByTopicPrefix returns the subset of questions whose topic starts with
// prefix, in dataset order. An empty prefix matches everything.
func (r *Repository) ByTopicPrefix(prefix string) []models.QuestionRecord {
	if prefix == "" {
		return r.All()
	}
	var out []models.QuestionRecord
	for _, q := range r.questions {
		if strings.HasPrefix(q.Topic, prefix) {
			out = append(out, q)
		}
	}
	return out
}

// ByIDs resolves ids against the repository, preserving the given order.
// Unknown ids are skipped.
func (r *Repository) ByIDs(ids []int64) []models.QuestionRecord {
	out := make([]models.QuestionRecord, 0, len(ids))
	for _, id := range ids {
		if q, ok := r.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Topics returns the sorted unique topic prefixes of the dataset, where the
// prefix is the portion of the topic before the " - " separator.
func (r *Repository) Topics() []string {
	seen := make(map[string]bool)
	var topics []string
	for _, q := range r.questions {
		p := TopicPrefix(q.Topic)
		if !seen[p] {
			seen[p] = true
			topics = append(topics, p)
		}
	}
	sort.Strings(topics)
	return topics
}

// TopicPrefix returns the portion of a topic string before the " - "
// separator, or the whole string when no separator is present.
func TopicPrefix(topic string) string {
	if idx := strings.Index(topic, " - "); idx >= 0 {
		return topic[:idx]
	}
	return topic
}
