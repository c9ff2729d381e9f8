package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/prepdeck-backend/internal/model"
)

// AttemptRepository handles question attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Insert persists a single attempt row.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.QueuedAttempt) error {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (user_id, question_id, is_correct, chapter, set_id, tags, mode, user_answer, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.UserID, a.QuestionID, a.IsCorrect, a.Chapter, a.SetID, tags, a.Mode, a.UserAnswer,
		time.UnixMilli(a.CreatedAt),
	)
	return err
}

// ListByUser retrieves the most recent attempts for a user.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, question_id, is_correct, chapter, set_id, tags, mode, user_answer, created_at
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.IsCorrect, &a.Chapter, &a.SetID, &a.Tags, &a.Mode, &a.UserAnswer, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
