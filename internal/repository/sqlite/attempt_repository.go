package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates an AttemptRepository implementation.
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Insert(ctx context.Context, attempt models.Attempt, entries []models.AnsweredEntry) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("archiving attempt: session=%s, score=%d/%d", attempt.SessionID, attempt.Correct, attempt.Total)

	var id int64
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
INSERT INTO attempts (session_id, mode, topic_filter, total, correct, percent, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, attempt.SessionID, attempt.Mode, attempt.TopicFilter, attempt.Total, attempt.Correct, attempt.Percent, attempt.FinishedAt)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for i, entry := range entries {
			options, err := json.Marshal(entry.Options)
			if err != nil {
				return err
			}
			if _, err := t.ExecContext(ctx, `
INSERT INTO attempt_entries (attempt_id, position, question_id, question, options, selected_key, correct_key, explanation, topic, is_correct)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, i, entry.QuestionID, entry.QuestionText, string(options), entry.SelectedKey, entry.CorrectKey, entry.Explanation, entry.Topic, entry.IsCorrect); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to archive attempt: %v", err)
		return 0, err
	}
	log.Debug("attempt archived: id=%d", id)
	return id, nil
}

func (r *attemptRepository) Get(ctx context.Context, id int64) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	var a models.Attempt
	err := r.db.QueryRowContext(ctx, `
SELECT id, session_id, mode, topic_filter, total, correct, percent, finished_at
FROM attempts
WHERE id = ?
`, id).Scan(&a.ID, &a.SessionID, &a.Mode, &a.TopicFilter, &a.Total, &a.Correct, &a.Percent, &a.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("attempt not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepository) Entries(ctx context.Context, attemptID int64) ([]models.AnsweredEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT question_id, question, options, selected_key, correct_key, explanation, topic, is_correct
FROM attempt_entries
WHERE attempt_id = ?
ORDER BY position
`, attemptID)
	if err != nil {
		log.Error("failed to query attempt entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.AnsweredEntry
	for rows.Next() {
		var entry models.AnsweredEntry
		var options string
		if err := rows.Scan(&entry.QuestionID, &entry.QuestionText, &options, &entry.SelectedKey, &entry.CorrectKey, &entry.Explanation, &entry.Topic, &entry.IsCorrect); err != nil {
			log.Error("failed to scan attempt entry: %v", err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(options), &entry.Options); err != nil {
			log.Error("failed to decode entry options: %v", err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *attemptRepository) List(ctx context.Context, filter models.AttemptFilter) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	query := sqlBuilder.
		Select("id", "session_id", "mode", "topic_filter", "total", "correct", "percent", "finished_at").
		From("attempts").
		OrderBy("finished_at DESC")

	if filter.SessionID != "" {
		query = query.Where(squirrel.Eq{"session_id": filter.SessionID})
	}
	if filter.Mode != "" {
		query = query.Where(squirrel.Eq{"mode": filter.Mode})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Mode, &a.TopicFilter, &a.Total, &a.Correct, &a.Percent, &a.FinishedAt); err != nil {
			log.Error("failed to scan attempt: %v", err)
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *attemptRepository) Count(ctx context.Context, filter models.AttemptFilter) (int, error) {
	query := sqlBuilder.Select("COUNT(*)").From("attempts")
	if filter.SessionID != "" {
		query = query.Where(squirrel.Eq{"session_id": filter.SessionID})
	}
	if filter.Mode != "" {
		query = query.Where(squirrel.Eq{"mode": filter.Mode})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
