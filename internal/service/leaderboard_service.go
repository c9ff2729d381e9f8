package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// leaderboardCacheTTL is short: the board is written by a background worker
// so staleness of a few seconds is invisible to players anyway.
const leaderboardCacheTTL = 30 * time.Second

// LeaderboardService serves the public leaderboard with a small cache in
// front of the aggregate table.
type LeaderboardService struct {
	repo  *repository.LeaderboardRepository
	rdb   *redis.Client
	limit int
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(repo *repository.LeaderboardRepository, rdb *redis.Client, limit int) *LeaderboardService {
	return &LeaderboardService{repo: repo, rdb: rdb, limit: limit}
}

// Top returns the ranked leaderboard snapshot.
func (s *LeaderboardService) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	key := config.CacheKey.LeaderboardKey()

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var entries []model.LeaderboardEntry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return entries, nil
		}
		s.rdb.Del(ctx, key)
	}

	entries, err := s.repo.Top(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}

	if raw, err := json.Marshal(entries); err == nil {
		s.rdb.Set(ctx, key, raw, leaderboardCacheTTL)
	}

	return entries, nil
}
