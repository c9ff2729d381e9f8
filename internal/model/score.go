package model

import "time"

// QuizSession is a finished quiz run persisted for history and the
// leaderboard aggregate.
type QuizSession struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	ElapsedMs int64     `json:"time_ms"`
	Mode      string    `json:"mode"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreRequest is the payload for submitting a finished session's score.
// Correct may not exceed Total; a zero Total is accepted but not persisted.
type ScoreRequest struct {
	Correct   int      `json:"correct" binding:"min=0"`
	Total     int      `json:"total" binding:"min=0"`
	ElapsedMs int64    `json:"time_ms" binding:"omitempty,min=0"`
	Mode      string   `json:"mode" binding:"omitempty,oneof=normal instant"`
	Tags      []string `json:"tags" binding:"omitempty,dive,max=60"`
}

// QueuedScore is the unit pushed onto the persistence queue.
type QueuedScore struct {
	UserID    string   `json:"user_id"`
	Correct   int      `json:"correct"`
	Total     int      `json:"total"`
	ElapsedMs int64    `json:"time_ms"`
	Mode      string   `json:"mode"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"created_at"` // Unix milliseconds
}
