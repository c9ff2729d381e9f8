package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/engine"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// Score validation errors.
var (
	ErrScoreInconsistent = errors.New("correct count exceeds total")
	ErrScoreEmpty        = errors.New("score has no attempted questions")
)

// TrackerService accepts attempts and scores and pushes them onto Redis
// queues for the persistence workers. It also backs live quiz sessions
// through ForUser, whose UserTracker binds a user ID and satisfies the
// engine's AttemptTracker and ScoreTracker interfaces.
type TrackerService struct {
	rdb *redis.Client
	now func() time.Time
}

// NewTrackerService creates a new TrackerService.
func NewTrackerService(rdb *redis.Client) *TrackerService {
	return &TrackerService{rdb: rdb, now: time.Now}
}

// RecordAttempt queues a single attempt for persistence.
func (s *TrackerService) RecordAttempt(ctx context.Context, userID string, req *model.AttemptRequest) error {
	queued := &model.QueuedAttempt{
		UserID:     userID,
		QuestionID: req.QuestionID,
		IsCorrect:  req.IsCorrect,
		Chapter:    req.Chapter,
		SetID:      req.SetID,
		Tags:       req.Tags,
		Mode:       req.Mode,
		UserAnswer: req.UserAnswer,
		CreatedAt:  s.now().UnixMilli(),
	}
	return s.push(ctx, config.WorkerKey.PersistAttemptsQueue, queued)
}

// RecordScore validates and queues a finished session's score.
// An inconsistent score (correct > total) is rejected; an empty one
// (total == 0) is silently dropped so clients need no special casing.
func (s *TrackerService) RecordScore(ctx context.Context, userID string, req *model.ScoreRequest) error {
	if req.Correct > req.Total {
		return ErrScoreInconsistent
	}
	if req.Total == 0 {
		return ErrScoreEmpty
	}

	queued := &model.QueuedScore{
		UserID:    userID,
		Correct:   req.Correct,
		Total:     req.Total,
		ElapsedMs: req.ElapsedMs,
		Mode:      req.Mode,
		Tags:      req.Tags,
		CreatedAt: s.now().UnixMilli(),
	}
	return s.push(ctx, config.WorkerKey.PersistScoresQueue, queued)
}

// TrackAttempt implements engine.AttemptTracker for live sessions.
func (s *TrackerService) TrackAttempt(ctx context.Context, userID string, a engine.Attempt) error {
	return s.RecordAttempt(ctx, userID, &model.AttemptRequest{
		QuestionID: a.QuestionID,
		IsCorrect:  a.Correct,
		Chapter:    a.Chapter,
		SetID:      a.Set,
		Tags:       a.Tags,
		Mode:       a.Mode,
		UserAnswer: a.UserAnswer,
	})
}

// SubmitScore implements engine.ScoreTracker for live sessions.
func (s *TrackerService) SubmitScore(ctx context.Context, userID string, sum engine.ScoreSummary) error {
	err := s.RecordScore(ctx, userID, &model.ScoreRequest{
		Correct:   sum.Correct,
		Total:     sum.Attempted,
		ElapsedMs: sum.ElapsedMs,
		Mode:      sum.Mode,
		Tags:      sum.Tags,
	})
	if errors.Is(err, ErrScoreEmpty) {
		return nil
	}
	return err
}

func (s *TrackerService) push(ctx context.Context, queue string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := s.rdb.RPush(ctx, queue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue payload: %w", err)
	}
	return nil
}

// ForUser binds the tracker to one user ID so it can be handed to a quiz
// session as its engine.AttemptTracker and engine.ScoreTracker.
func (s *TrackerService) ForUser(userID string) *UserTracker {
	return &UserTracker{svc: s, userID: userID}
}

// UserTracker is a TrackerService scoped to a single user.
type UserTracker struct {
	svc    *TrackerService
	userID string
}

// TrackAttempt implements engine.AttemptTracker.
func (t *UserTracker) TrackAttempt(ctx context.Context, a engine.Attempt) error {
	return t.svc.TrackAttempt(ctx, t.userID, a)
}

// SubmitScore implements engine.ScoreTracker.
func (t *UserTracker) SubmitScore(ctx context.Context, sum engine.ScoreSummary) error {
	return t.svc.SubmitScore(ctx, t.userID, sum)
}
