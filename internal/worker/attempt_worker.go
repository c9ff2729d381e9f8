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
	AttemptBatchSize    = 100
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptWorker drains the attempt queue into PostgreSQL in batches.
type AttemptWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	repo *repository.AttemptRepository
	log  zerolog.Logger
}

// NewAttemptWorker creates a new AttemptWorker.
func NewAttemptWorker(pool *pgxpool.Pool, rdb *redis.Client, repo *repository.AttemptRepository, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		pool: pool,
		rdb:  rdb,
		repo: repo,
		log:  log.With().Str("component", "attempt_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then flushes the
// remaining batch.
func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]*model.QueuedAttempt, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a model.QueuedAttempt
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &a)
		}
	}
}

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []*model.QueuedAttempt) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk attempt insert failed, using fallback")

		for _, a := range batch {
			if err := w.repo.Insert(ctx, a); err != nil {
				w.log.Error().Err(err).Msg("single insert failed — requeueing")
				raw, _ := json.Marshal(a)
				w.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw)
			}
		}
	}
}

// bulkInsert writes one batch with a single UNNEST statement. Tags arrive
// as JSON text per row because UNNEST cannot carry ragged string arrays.
func (w *AttemptWorker) bulkInsert(ctx context.Context, batch []*model.QueuedAttempt) error {
	n := len(batch)

	userIDs := make([]string, 0, n)
	questionIDs := make([]string, 0, n)
	corrects := make([]bool, 0, n)
	chapters := make([]string, 0, n)
	setIDs := make([]string, 0, n)
	tags := make([]string, 0, n)
	modes := make([]string, 0, n)
	answers := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, a := range batch {
		// Nil tags must encode as an empty JSON array, not null, for the
		// jsonb expansion below.
		rowTags := a.Tags
		if rowTags == nil {
			rowTags = []string{}
		}
		rawTags, err := json.Marshal(rowTags)
		if err != nil {
			return err
		}
		userIDs = append(userIDs, a.UserID)
		questionIDs = append(questionIDs, a.QuestionID)
		corrects = append(corrects, a.IsCorrect)
		chapters = append(chapters, a.Chapter)
		setIDs = append(setIDs, a.SetID)
		tags = append(tags, string(rawTags))
		modes = append(modes, a.Mode)
		answers = append(answers, a.UserAnswer)
		createdAts = append(createdAts, time.UnixMilli(a.CreatedAt))
	}

	query := `
		INSERT INTO attempts (user_id, question_id, is_correct, chapter, set_id, tags, mode, user_answer, created_at)
		SELECT u.user_id, u.question_id, u.is_correct, u.chapter, u.set_id,
		       ARRAY(SELECT jsonb_array_elements_text(u.tags::jsonb)),
		       u.mode, u.user_answer, u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::bool[],
			$4::text[],
			$5::text[],
			$6::text[],
			$7::text[],
			$8::text[],
			$9::timestamptz[]
		) AS u (user_id, question_id, is_correct, chapter, set_id, tags, mode, user_answer, created_at)
	`

	_, err := w.pool.Exec(ctx, query,
		userIDs, questionIDs, corrects, chapters, setIDs, tags, modes, answers, createdAts)
	return err
}
