package repository

import (
	"context"

	"github.com/quizdeck/quizdeck/internal/models"
)

// ProgressStore is a scoped key-value store for JSON snapshots. Load returns
// (nil, nil) when the key is absent; callers treat any load failure the same
// as absence.
type ProgressStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// AttemptRepository archives completed quiz runs.
type AttemptRepository interface {
	Insert(ctx context.Context, attempt models.Attempt, entries []models.AnsweredEntry) (int64, error)
	Get(ctx context.Context, id int64) (*models.Attempt, error)
	Entries(ctx context.Context, attemptID int64) ([]models.AnsweredEntry, error)
	List(ctx context.Context, filter models.AttemptFilter) ([]models.Attempt, error)
	Count(ctx context.Context, filter models.AttemptFilter) (int, error)
}
