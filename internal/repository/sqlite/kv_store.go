package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/repository"
)

type kvStore struct {
	db *sql.DB
}

// NewProgressStore creates a ProgressStore backed by the kv table.
func NewProgressStore(db *sql.DB) repository.ProgressStore {
	return &kvStore{db: db}
}

func (s *kvStore) Load(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_store")

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("key absent: %s", key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load key %s: %v", key, err)
		return nil, err
	}
	return []byte(value), nil
}

func (s *kvStore) Save(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	log.Debug("saving key: %s (%d bytes)", key, len(value))

	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`, key, string(value))
	if err != nil {
		log.Error("failed to save key %s: %v", key, err)
	}
	return err
}

func (s *kvStore) Clear(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	log.Debug("clearing key: %s", key)

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		log.Error("failed to clear key %s: %v", key, err)
	}
	return err
}
