package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdeck/prepdeck-backend/internal/model"
)

// QuestionSetRepository handles question set data access.
type QuestionSetRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionSetRepository creates a new QuestionSetRepository.
func NewQuestionSetRepository(pool *pgxpool.Pool) *QuestionSetRepository {
	return &QuestionSetRepository{pool: pool}
}

// List retrieves the full question set catalog without payloads.
func (r *QuestionSetRepository) List(ctx context.Context) ([]model.QuestionSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT set_id, title, subject, chapter, question_count, time_limit_minutes, updated_at
		 FROM question_sets
		 ORDER BY subject, chapter, set_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []model.QuestionSet
	for rows.Next() {
		var s model.QuestionSet
		if err := rows.Scan(&s.SetID, &s.Title, &s.Subject, &s.Chapter, &s.QuestionCount, &s.TimeLimitMinutes, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// GetPayload retrieves a single question set with its question data.
func (r *QuestionSetRepository) GetPayload(ctx context.Context, setID string) (*model.QuestionSetPayload, error) {
	p := &model.QuestionSetPayload{}
	err := r.pool.QueryRow(ctx,
		`SELECT set_id, title, subject, chapter, question_count, time_limit_minutes, updated_at, questions
		 FROM question_sets
		 WHERE set_id = $1`, setID,
	).Scan(&p.SetID, &p.Title, &p.Subject, &p.Chapter, &p.QuestionCount, &p.TimeLimitMinutes, &p.UpdatedAt, &p.Questions)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert writes a question set and its payload. Used by the seeder.
func (r *QuestionSetRepository) Upsert(ctx context.Context, p *model.QuestionSetPayload) error {
	count := p.QuestionCount
	if count == 0 {
		// Derive the count from the payload when the caller did not set it.
		var probe []json.RawMessage
		if err := json.Unmarshal(p.Questions, &probe); err == nil {
			count = len(probe)
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO question_sets (set_id, title, subject, chapter, question_count, time_limit_minutes, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (set_id) DO UPDATE
		 SET title = $2,
		     subject = $3,
		     chapter = $4,
		     question_count = $5,
		     time_limit_minutes = $6,
		     questions = $7,
		     updated_at = NOW()`,
		p.SetID, p.Title, p.Subject, p.Chapter, count, p.TimeLimitMinutes, p.Questions,
	)
	return err
}
