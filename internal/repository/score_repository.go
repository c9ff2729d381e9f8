package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/prepdeck-backend/internal/model"
)

// ScoreRepository handles quiz session and leaderboard persistence.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Persist writes the session row and folds it into the leaderboard aggregate
// inside one transaction, so a crash cannot count a session twice.
func (r *ScoreRepository) Persist(ctx context.Context, s *model.QueuedScore) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO quiz_sessions (user_id, correct, total, time_ms, mode, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.UserID, s.Correct, s.Total, s.ElapsedMs, s.Mode, tags, time.UnixMilli(s.CreatedAt),
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO leaderboard (user_id, total_correct, total_attempted, sessions)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (user_id) DO UPDATE
		 SET total_correct = leaderboard.total_correct + $2,
		     total_attempted = leaderboard.total_attempted + $3,
		     sessions = leaderboard.sessions + 1,
		     updated_at = NOW()`,
		s.UserID, s.Correct, s.Total,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByUser retrieves the most recent sessions for a user.
func (r *ScoreRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, correct, total, time_ms, mode, tags, created_at
		 FROM quiz_sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.QuizSession
	for rows.Next() {
		var s model.QuizSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Correct, &s.Total, &s.ElapsedMs, &s.Mode, &s.Tags, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
