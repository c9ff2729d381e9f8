package engine

import (
	"testing"
	"time"
)

// fakeClock provides a manually advanced clock for deterministic timing tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTrackerCountdown(t *testing.T) {
	clock := newFakeClock()
	tr := newTracker(10*time.Minute, clock.now)

	clock.advance(3 * time.Minute)
	if got := tr.Remaining(); got != 7*time.Minute {
		t.Fatalf("remaining = %v, want 7m", got)
	}
	if got := tr.QuestionElapsed(); got != 3*time.Minute {
		t.Fatalf("question elapsed = %v, want 3m", got)
	}
}

func TestPauseFreezesBothClocks(t *testing.T) {
	clock := newFakeClock()
	tr := newTracker(10*time.Minute, clock.now)

	clock.advance(time.Minute)
	tr.Pause()
	clock.advance(5 * time.Minute) // review time, must not count anywhere
	tr.Resume()
	clock.advance(time.Minute)

	if got := tr.Remaining(); got != 8*time.Minute {
		t.Errorf("remaining = %v, want 8m", got)
	}
	if got := tr.QuestionElapsed(); got != 2*time.Minute {
		t.Errorf("question elapsed = %v, want 2m", got)
	}
	if got := tr.PausedTotal(); got != 5*time.Minute {
		t.Errorf("paused total = %v, want 5m", got)
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	clock := newFakeClock()
	tr := newTracker(time.Minute, clock.now)

	tr.Resume() // not paused: no-op
	tr.Pause()
	tr.Pause() // already paused: no-op, anchor unchanged
	clock.advance(30 * time.Second)
	tr.Resume()
	tr.Resume()

	if got := tr.PausedTotal(); got != 30*time.Second {
		t.Fatalf("paused total = %v, want 30s", got)
	}
}

func TestCommitQuestionAccountsInFlightPause(t *testing.T) {
	clock := newFakeClock()
	tr := newTracker(10*time.Minute, clock.now)

	clock.advance(90 * time.Second)
	tr.Pause()
	clock.advance(time.Minute)

	// Committed while paused: only the active 90s belongs to the question.
	if got := tr.CommitQuestion(); got != 90*time.Second {
		t.Fatalf("committed = %v, want 90s", got)
	}

	// The next question starts inside the pause window and accrues nothing
	// until resume.
	clock.advance(time.Minute)
	tr.Resume()
	clock.advance(15 * time.Second)
	if got := tr.QuestionElapsed(); got != 15*time.Second {
		t.Fatalf("next question elapsed = %v, want 15s", got)
	}
}

func TestTimingConservation(t *testing.T) {
	clock := newFakeClock()
	tr := newTracker(time.Hour, clock.now)

	var committed time.Duration
	steps := []struct {
		active time.Duration
		pause  time.Duration
	}{
		{40 * time.Second, 0},
		{25 * time.Second, 90 * time.Second},
		{70 * time.Second, 10 * time.Second},
		{5 * time.Second, 0},
	}
	for _, step := range steps {
		clock.advance(step.active)
		if step.pause > 0 {
			tr.Pause()
			clock.advance(step.pause)
			tr.Resume()
		}
		committed += tr.CommitQuestion()
	}

	wall := clock.now().Sub(tr.startedAt)
	if committed+tr.PausedTotal() != wall {
		t.Fatalf("conservation violated: committed %v + paused %v != wall %v",
			committed, tr.PausedTotal(), wall)
	}
}
