package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/prepdeck-backend/internal/model"
)

// UserRepository handles anonymous user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert creates the user row if missing, otherwise refreshes last_seen_at.
// A non-empty name overwrites the stored display name; an empty one keeps it.
func (r *UserRepository) Upsert(ctx context.Context, id, name string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name)
		 VALUES ($1, NULLIF($2, ''))
		 ON CONFLICT (id) DO UPDATE
		 SET last_seen_at = NOW(),
		     name = COALESCE(NULLIF($2, ''), users.name)
		 RETURNING id, name, created_at, last_seen_at`,
		id, name,
	).Scan(&u.ID, &u.Name, &u.CreatedAt, &u.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a single user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, last_seen_at
		 FROM users
		 WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.CreatedAt, &u.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
