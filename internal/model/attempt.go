package model

import "time"

// Attempt is a single graded question attempt persisted for analytics.
type Attempt struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	IsCorrect  bool      `json:"is_correct"`
	Chapter    string    `json:"chapter"`
	SetID      string    `json:"set_id"`
	Tags       []string  `json:"tags"`
	Mode       string    `json:"mode"`
	UserAnswer string    `json:"user_answer"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttemptRequest is the payload for recording a question attempt.
type AttemptRequest struct {
	QuestionID string   `json:"question_id" binding:"required,max=120"`
	IsCorrect  bool     `json:"is_correct"`
	Chapter    string   `json:"chapter" binding:"omitempty,max=120"`
	SetID      string   `json:"set" binding:"omitempty,max=120"`
	Tags       []string `json:"tags" binding:"omitempty,dive,max=60"`
	Mode       string   `json:"mode" binding:"omitempty,oneof=normal instant"`
	UserAnswer string   `json:"user_answer" binding:"omitempty,max=500"`
}

// QueuedAttempt is the unit pushed onto the persistence queue. The user ID
// comes from the identity cookie rather than the request body.
type QueuedAttempt struct {
	UserID     string   `json:"user_id"`
	QuestionID string   `json:"question_id"`
	IsCorrect  bool     `json:"is_correct"`
	Chapter    string   `json:"chapter"`
	SetID      string   `json:"set_id"`
	Tags       []string `json:"tags"`
	Mode       string   `json:"mode"`
	UserAnswer string   `json:"user_answer"`
	CreatedAt  int64    `json:"created_at"` // Unix milliseconds
}
