package model

import (
	"encoding/json"
	"time"
)

// QuestionSet is a catalog entry for a playable set of questions.
type QuestionSet struct {
	SetID            string    `json:"set_id"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject"`
	Chapter          string    `json:"chapter"`
	QuestionCount    int       `json:"question_count"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QuestionSetPayload is a catalog entry together with its question data.
// Questions stays raw JSON here; the session engine decodes it on start.
type QuestionSetPayload struct {
	QuestionSet
	Questions json.RawMessage `json:"questions"`
}
