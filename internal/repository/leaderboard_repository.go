package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/prepdeck-backend/internal/model"
)

// LeaderboardRepository handles leaderboard reads.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// Top returns the highest-ranked named users. Users without a display name
// never appear, and rows with zero attempts are skipped to keep accuracy
// well defined.
func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT l.user_id, u.name, l.total_correct, l.total_attempted, l.sessions,
		        ROUND(l.total_correct::numeric / l.total_attempted, 4)::float8 AS accuracy,
		        l.updated_at
		 FROM leaderboard l
		 JOIN users u ON u.id = l.user_id
		 WHERE u.name IS NOT NULL AND l.total_attempted > 0
		 ORDER BY accuracy DESC, l.total_correct DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalCorrect, &e.TotalAttempted, &e.Sessions, &e.Accuracy, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
