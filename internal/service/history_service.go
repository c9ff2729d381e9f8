package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/repository"
)

// historyLimit caps both activity lists. The endpoint is a recent-activity
// view, not a paginated archive.
const historyLimit = 50

// ErrUserNotFound marks a valid identity token whose user row is gone.
var ErrUserNotFound = errors.New("user not found")

// HistoryService assembles a user's recent activity from the persisted
// attempt and session rows the queue workers write.
type HistoryService struct {
	users    *repository.UserRepository
	attempts *repository.AttemptRepository
	scores   *repository.ScoreRepository
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(users *repository.UserRepository, attempts *repository.AttemptRepository, scores *repository.ScoreRepository) *HistoryService {
	return &HistoryService{users: users, attempts: attempts, scores: scores}
}

// Overview returns the user's profile with their most recent quiz sessions
// and question attempts, newest first.
func (s *HistoryService) Overview(ctx context.Context, userID string) (*model.UserHistory, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	sessions, err := s.scores.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	attempts, err := s.attempts.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	return &model.UserHistory{User: user, Sessions: sessions, Attempts: attempts}, nil
}
