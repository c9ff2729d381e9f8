package engine

import (
	"context"
	"time"
)

// Observer receives the engine's rendering callbacks. Implementations are
// invoked synchronously from engine operations and must not call back into
// the session.
type Observer interface {
	// QuestionShown fires on every navigation: the active question, its
	// position, the current slot state and whether it is locked by an
	// instant check.
	QuestionShown(q *Question, index, total int, slot *Slot, checked bool)
	// AnswerChanged fires after every accepted answer mutation.
	AnswerChanged(index int, slot *Slot)
	// TimerTick fires once per global tick with the remaining budget.
	// warning is set inside the final minute.
	TimerTick(remaining time.Duration, warning bool)
	// QuestionTick fires once per tick with the active question's elapsed time.
	QuestionTick(elapsed time.Duration)
	// InstantChecked fires when an instant-mode check grades the current question.
	InstantChecked(index int, correct bool)
	// SessionFinished fires exactly once with the final report.
	SessionFinished(report *Report, elapsed time.Duration, timeUp bool)
}

// NopObserver is an Observer that ignores every callback. Embed it to
// implement only the callbacks a consumer cares about.
type NopObserver struct{}

func (NopObserver) QuestionShown(*Question, int, int, *Slot, bool) {}
func (NopObserver) AnswerChanged(int, *Slot)                       {}
func (NopObserver) TimerTick(time.Duration, bool)                  {}
func (NopObserver) QuestionTick(time.Duration)                     {}
func (NopObserver) InstantChecked(int, bool)                       {}
func (NopObserver) SessionFinished(*Report, time.Duration, bool)   {}

// Attempt is the per-question record sent to the attempt tracker.
type Attempt struct {
	QuestionID string   `json:"question_id"`
	Correct    bool     `json:"is_correct"`
	Chapter    string   `json:"chapter,omitempty"`
	Set        string   `json:"set,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	UserAnswer string   `json:"user_answer"`
}

// ScoreSummary is the per-session record sent to the score tracker.
type ScoreSummary struct {
	Correct   int           `json:"correct"`
	Attempted int           `json:"total"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMs int64         `json:"time_ms"`
	Mode      string        `json:"mode,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
}

// AttemptTracker receives graded attempts. Calls are fire-and-forget from the
// engine: failures are logged and never block or fail the session.
type AttemptTracker interface {
	TrackAttempt(ctx context.Context, attempt Attempt) error
}

// ScoreTracker receives one aggregate score per finished session with at
// least one attempted question.
type ScoreTracker interface {
	SubmitScore(ctx context.Context, score ScoreSummary) error
}
