package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/engine"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T) (*TrackerService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewTrackerService(client)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, mr
}

func TestRecordAttemptQueuesPayload(t *testing.T) {
	svc, mr := newTestTracker(t)

	err := svc.RecordAttempt(context.Background(), "user-1", &model.AttemptRequest{
		QuestionID: "q-7",
		IsCorrect:  true,
		Chapter:    "kinematics",
		SetID:      "physics-1",
		Tags:       []string{"motion"},
		Mode:       "normal",
		UserAnswer: "[2]",
	})
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	raw, err := mr.Lpop(config.WorkerKey.PersistAttemptsQueue)
	if err != nil {
		t.Fatalf("queue read: %v", err)
	}

	var queued model.QueuedAttempt
	if err := json.Unmarshal([]byte(raw), &queued); err != nil {
		t.Fatalf("decode queued attempt: %v", err)
	}
	if queued.UserID != "user-1" || queued.QuestionID != "q-7" || !queued.IsCorrect {
		t.Errorf("unexpected queued attempt: %+v", queued)
	}
	if queued.CreatedAt != 1700000000000 {
		t.Errorf("CreatedAt = %d, want injected clock value", queued.CreatedAt)
	}
}

func TestRecordScoreValidation(t *testing.T) {
	svc, mr := newTestTracker(t)
	ctx := context.Background()

	err := svc.RecordScore(ctx, "user-1", &model.ScoreRequest{Correct: 5, Total: 3})
	if !errors.Is(err, ErrScoreInconsistent) {
		t.Fatalf("correct > total: got %v, want ErrScoreInconsistent", err)
	}

	err = svc.RecordScore(ctx, "user-1", &model.ScoreRequest{Correct: 0, Total: 0})
	if !errors.Is(err, ErrScoreEmpty) {
		t.Fatalf("total == 0: got %v, want ErrScoreEmpty", err)
	}

	if mr.Exists(config.WorkerKey.PersistScoresQueue) {
		t.Error("rejected scores must not reach the queue")
	}

	if err := svc.RecordScore(ctx, "user-1", &model.ScoreRequest{Correct: 3, Total: 4, ElapsedMs: 90000}); err != nil {
		t.Fatalf("valid score rejected: %v", err)
	}

	raw, err := mr.Lpop(config.WorkerKey.PersistScoresQueue)
	if err != nil {
		t.Fatalf("queue read: %v", err)
	}
	var queued model.QueuedScore
	if err := json.Unmarshal([]byte(raw), &queued); err != nil {
		t.Fatalf("decode queued score: %v", err)
	}
	if queued.Correct != 3 || queued.Total != 4 || queued.ElapsedMs != 90000 {
		t.Errorf("unexpected queued score: %+v", queued)
	}
}

func TestUserTrackerImplementsEngineInterfaces(t *testing.T) {
	svc, mr := newTestTracker(t)
	tracker := svc.ForUser("user-9")

	var _ engine.AttemptTracker = tracker
	var _ engine.ScoreTracker = tracker

	err := tracker.TrackAttempt(context.Background(), engine.Attempt{
		QuestionID: "q-1",
		Correct:    false,
		Set:        "algebra-2",
		Mode:       "instant",
		UserAnswer: "[0]",
	})
	if err != nil {
		t.Fatalf("track attempt: %v", err)
	}

	raw, err := mr.Lpop(config.WorkerKey.PersistAttemptsQueue)
	if err != nil {
		t.Fatalf("queue read: %v", err)
	}
	var queued model.QueuedAttempt
	if err := json.Unmarshal([]byte(raw), &queued); err != nil {
		t.Fatalf("decode queued attempt: %v", err)
	}
	if queued.UserID != "user-9" {
		t.Errorf("UserID = %q, want bound user", queued.UserID)
	}
	if queued.SetID != "algebra-2" {
		t.Errorf("SetID = %q, want mapped set field", queued.SetID)
	}
}

func TestSubmitScoreSwallowsEmptySessions(t *testing.T) {
	svc, mr := newTestTracker(t)
	tracker := svc.ForUser("user-2")

	// A session with zero attempted questions produces no row and no error.
	if err := tracker.SubmitScore(context.Background(), engine.ScoreSummary{}); err != nil {
		t.Fatalf("empty summary should be dropped silently, got %v", err)
	}
	if mr.Exists(config.WorkerKey.PersistScoresQueue) {
		t.Error("empty score must not reach the queue")
	}
}
