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
	"github.com/prepdeck/prepdeck-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	payloadCacheTTL = 6 * time.Hour
	catalogCacheTTL = 10 * time.Minute
)

// ErrQuestionSetNotFound is returned when no set matches the requested ID.
var ErrQuestionSetNotFound = errors.New("question set not found")

// QuestionSetService serves the question set catalog and payloads from a
// Redis cache with a PostgreSQL fallback.
type QuestionSetService struct {
	repo *repository.QuestionSetRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewQuestionSetService creates a new QuestionSetService.
func NewQuestionSetService(repo *repository.QuestionSetRepository, rdb *redis.Client, log zerolog.Logger) *QuestionSetService {
	return &QuestionSetService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "question_set_service").Logger(),
	}
}

// List returns the question set catalog, cache-first.
func (s *QuestionSetService) List(ctx context.Context) ([]model.QuestionSet, error) {
	key := config.CacheKey.QuestionSetListKey()

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var sets []model.QuestionSet
		if err := json.Unmarshal([]byte(cached), &sets); err == nil {
			return sets, nil
		}
		// Corrupt cache entry, fall through to the database.
		s.rdb.Del(ctx, key)
	}

	sets, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}

	if raw, err := json.Marshal(sets); err == nil {
		s.rdb.Set(ctx, key, raw, catalogCacheTTL)
	}

	return sets, nil
}

// GetPayload returns a set with its question data, cache-first.
func (s *QuestionSetService) GetPayload(ctx context.Context, setID string) (*model.QuestionSetPayload, error) {
	key := config.CacheKey.QuestionSetPayloadKey(setID)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		p := &model.QuestionSetPayload{}
		if err := json.Unmarshal([]byte(cached), p); err == nil {
			return p, nil
		}
		s.rdb.Del(ctx, key)
	}

	p, err := s.repo.GetPayload(ctx, setID)
	if err != nil {
		return nil, ErrQuestionSetNotFound
	}

	if raw, err := json.Marshal(p); err == nil {
		s.rdb.Set(ctx, key, raw, payloadCacheTTL)
	}

	return p, nil
}

// LoadQuestions fetches a set's payload and decodes it for the session engine.
func (s *QuestionSetService) LoadQuestions(ctx context.Context, setID string) (*model.QuestionSetPayload, []engine.Question, error) {
	p, err := s.GetPayload(ctx, setID)
	if err != nil {
		return nil, nil, err
	}

	var questions []engine.Question
	if err := json.Unmarshal(p.Questions, &questions); err != nil {
		return nil, nil, fmt.Errorf("decode questions for set %s: %w", setID, err)
	}
	if len(questions) == 0 {
		return nil, nil, fmt.Errorf("set %s has no questions", setID)
	}

	return p, questions, nil
}

// Prewarm loads every payload into the cache. Called once at startup so the
// first player of each set does not pay the database round trip.
func (s *QuestionSetService) Prewarm(ctx context.Context) {
	sets, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("prewarm skipped, catalog query failed")
		return
	}

	warmed := 0
	for _, set := range sets {
		if _, err := s.GetPayload(ctx, set.SetID); err != nil {
			s.log.Warn().Err(err).Str("set_id", set.SetID).Msg("prewarm payload failed")
			continue
		}
		warmed++
	}

	s.log.Info().Int("sets", warmed).Msg("question set cache prewarmed")
}
