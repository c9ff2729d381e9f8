package model

import "time"

// LeaderboardEntry is a single aggregated row on the public leaderboard.
// Only users with a display name appear.
type LeaderboardEntry struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	TotalCorrect   int       `json:"total_correct"`
	TotalAttempted int       `json:"total_attempted"`
	Sessions       int       `json:"sessions"`
	Accuracy       float64   `json:"accuracy"`
	UpdatedAt      time.Time `json:"updated_at"`
}
