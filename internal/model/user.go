package model

import "time"

// User is an anonymous visitor identified by a client-generated UUID.
// A row is created or refreshed by the tracking handshake; the display
// name is optional and only needed for the public leaderboard.
type User struct {
	ID         string    `json:"id"`
	Name       *string   `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// TrackRequest is the payload for the identity handshake. All fields are
// optional: a missing user_id mints a fresh identity, a present one is
// upserted and refreshed.
type TrackRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	Name   string `json:"name" binding:"omitempty,max=60"`
}

// TrackResponse is returned after a successful handshake.
type TrackResponse struct {
	UserID string `json:"user_id"`
}

// UserHistory is the recent-activity view served to the identified user:
// their profile plus the latest persisted sessions and attempts.
type UserHistory struct {
	User     *User         `json:"user"`
	Sessions []QuizSession `json:"sessions"`
	Attempts []Attempt     `json:"attempts"`
}
