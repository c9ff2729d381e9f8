package engine

import "time"

// Tracker keeps the two session clocks: the global countdown and the current
// question's elapsed time. Pausing freezes both; paused wall-clock time is
// never attributed to the session or to any question.
type Tracker struct {
	now   func() time.Time
	limit time.Duration

	startedAt         time.Time
	questionStartedAt time.Time

	paused           bool
	pauseBeganAt     time.Time
	pausedTotal      time.Duration
	questionPausedMs time.Duration
}

func newTracker(limit time.Duration, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	t := &Tracker{now: now, limit: limit}
	start := t.now()
	t.startedAt = start
	t.questionStartedAt = start
	return t
}

// Remaining returns the time left on the global countdown.
func (t *Tracker) Remaining() time.Duration {
	return t.limit - t.SessionElapsed()
}

// SessionElapsed returns active (non-paused) time since the session started.
func (t *Tracker) SessionElapsed() time.Duration {
	elapsed := t.now().Sub(t.startedAt) - t.pausedTotal
	if t.paused {
		elapsed -= t.now().Sub(t.pauseBeganAt)
	}
	return elapsed
}

// QuestionElapsed returns active time spent on the current question,
// excluding any in-flight pause.
func (t *Tracker) QuestionElapsed() time.Duration {
	elapsed := t.now().Sub(t.questionStartedAt) - t.questionPausedMs
	if t.paused {
		elapsed -= t.now().Sub(t.pauseBeganAt)
	}
	return elapsed
}

// Pause freezes both clocks. No-op if already paused.
func (t *Tracker) Pause() {
	if t.paused {
		return
	}
	t.paused = true
	t.pauseBeganAt = t.now()
}

// Resume unfreezes both clocks, charging the pause delta to both the session
// and the per-question accumulator. No-op if not paused.
func (t *Tracker) Resume() {
	if !t.paused {
		return
	}
	delta := t.now().Sub(t.pauseBeganAt)
	t.pausedTotal += delta
	t.questionPausedMs += delta
	t.paused = false
}

// Paused reports whether the clocks are currently frozen.
func (t *Tracker) Paused() bool { return t.paused }

// PausedTotal returns the accumulated session-wide pause time.
func (t *Tracker) PausedTotal() time.Duration {
	total := t.pausedTotal
	if t.paused {
		total += t.now().Sub(t.pauseBeganAt)
	}
	return total
}

// CommitQuestion returns the active time accumulated on the current question
// and restarts the question clock, clearing the per-question pause
// accumulator. Call immediately before navigating away or finishing.
func (t *Tracker) CommitQuestion() time.Duration {
	elapsed := t.QuestionElapsed()
	t.questionStartedAt = t.now()
	t.questionPausedMs = 0
	if t.paused {
		// The new question's clock must not start inside the old pause
		// window; the in-flight pause is re-anchored at the restart.
		t.pausedTotal += t.now().Sub(t.pauseBeganAt)
		t.pauseBeganAt = t.now()
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}
