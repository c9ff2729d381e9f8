package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoreWorker drains the score queue: each item becomes a session row plus
// a leaderboard aggregate update.
type ScoreWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	repo *repository.ScoreRepository
	log  zerolog.Logger
}

// NewScoreWorker creates a new ScoreWorker.
func NewScoreWorker(pool *pgxpool.Pool, rdb *redis.Client, repo *repository.ScoreRepository, log zerolog.Logger) *ScoreWorker {
	return &ScoreWorker{
		pool: pool,
		rdb:  rdb,
		repo: repo,
		log:  log.With().Str("component", "score_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then flushes the
// remaining batch.
func (w *ScoreWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoreWorker started")

	batch := make([]*model.QueuedScore, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var s model.QueuedScore
			if err := json.Unmarshal([]byte(item[1]), &s); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			// Defense in depth: the API validates, but the queue is
			// writable by anything holding a Redis connection.
			if s.Total <= 0 || s.Correct > s.Total {
				w.log.Warn().Str("user_id", s.UserID).Msg("Dropping inconsistent score")
				continue
			}

			batch = append(batch, &s)
		}
	}
}

func (w *ScoreWorker) flushSafe(ctx context.Context, batch []*model.QueuedScore) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkPersist(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk score persist failed, using fallback")

		for _, s := range batch {
			if err := w.repo.Persist(ctx, s); err != nil {
				w.log.Error().Err(err).Msg("single persist failed, requeueing")
				raw, _ := json.Marshal(s)
				w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
			}
		}
	}

	// Invalidate the cached leaderboard snapshot so the next read sees the
	// new aggregates. The fallback path changes them row by row, so this
	// covers both outcomes.
	w.rdb.Del(ctx, config.CacheKey.LeaderboardKey())
}

// bulkPersist writes session rows with one UNNEST insert, then folds the
// batch into the leaderboard per user, all in one transaction.
func (w *ScoreWorker) bulkPersist(ctx context.Context, batch []*model.QueuedScore) error {
	n := len(batch)

	userIDs := make([]string, 0, n)
	corrects := make([]int, 0, n)
	totals := make([]int, 0, n)
	elapsed := make([]int64, 0, n)
	modes := make([]string, 0, n)
	tags := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	type agg struct {
		correct  int
		total    int
		sessions int
	}
	perUser := make(map[string]*agg, n)

	for _, s := range batch {
		rowTags := s.Tags
		if rowTags == nil {
			rowTags = []string{}
		}
		rawTags, err := json.Marshal(rowTags)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, s.UserID)
		corrects = append(corrects, s.Correct)
		totals = append(totals, s.Total)
		elapsed = append(elapsed, s.ElapsedMs)
		modes = append(modes, s.Mode)
		tags = append(tags, string(rawTags))
		createdAts = append(createdAts, time.UnixMilli(s.CreatedAt))

		a := perUser[s.UserID]
		if a == nil {
			a = &agg{}
			perUser[s.UserID] = a
		}
		a.correct += s.Correct
		a.total += s.Total
		a.sessions++
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO quiz_sessions (user_id, correct, total, time_ms, mode, tags, created_at)
		SELECT u.user_id, u.correct, u.total, u.time_ms, u.mode,
		       ARRAY(SELECT jsonb_array_elements_text(u.tags::jsonb)),
		       u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::int[],
			$4::bigint[],
			$5::text[],
			$6::text[],
			$7::timestamptz[]
		) AS u (user_id, correct, total, time_ms, mode, tags, created_at)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		userIDs, corrects, totals, elapsed, modes, tags, createdAts); err != nil {
		return err
	}

	aggUsers := make([]string, 0, len(perUser))
	aggCorrects := make([]int, 0, len(perUser))
	aggTotals := make([]int, 0, len(perUser))
	aggSessions := make([]int, 0, len(perUser))
	for userID, a := range perUser {
		aggUsers = append(aggUsers, userID)
		aggCorrects = append(aggCorrects, a.correct)
		aggTotals = append(aggTotals, a.total)
		aggSessions = append(aggSessions, a.sessions)
	}

	upsertQuery := `
		INSERT INTO leaderboard (user_id, total_correct, total_attempted, sessions)
		SELECT u.user_id, u.total_correct, u.total_attempted, u.sessions
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::int[],
			$4::int[]
		) AS u (user_id, total_correct, total_attempted, sessions)
		ON CONFLICT (user_id) DO UPDATE
		SET total_correct = leaderboard.total_correct + EXCLUDED.total_correct,
		    total_attempted = leaderboard.total_attempted + EXCLUDED.total_attempted,
		    sessions = leaderboard.sessions + EXCLUDED.sessions,
		    updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, upsertQuery,
		aggUsers, aggCorrects, aggTotals, aggSessions); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
