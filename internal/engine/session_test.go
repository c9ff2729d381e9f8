package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// captureTracker records tracker calls for assertions. The engine reports
// asynchronously, so waiters poll with a deadline.
type captureTracker struct {
	mu       sync.Mutex
	attempts []Attempt
	scores   []ScoreSummary
}

func (c *captureTracker) TrackAttempt(_ context.Context, a Attempt) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = append(c.attempts, a)
	return nil
}

func (c *captureTracker) SubmitScore(_ context.Context, s ScoreSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores = append(c.scores, s)
	return nil
}

func (c *captureTracker) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.attempts), len(c.scores)
}

func (c *captureTracker) waitScores(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, n := c.counts(); n >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	_, n := c.counts()
	t.Fatalf("timed out waiting for %d score submissions, have %d", want, n)
}

func testQuestions(t *testing.T) []Question {
	t.Helper()
	raw := []string{
		`{"id":"q1","questionType":"mcq","correctOptions":[1],"availableOptions":["a","b","c"]}`,
		`{"id":"q2","questionType":"numerical","correctAnswer":"7"}`,
		`{"id":"q3","questionType":"mcloze","blanks":[{"correctAnswer":"go"}]}`,
	}
	qs := make([]Question, len(raw))
	for i, r := range raw {
		qs[i] = *mustQuestion(t, r)
	}
	return qs
}

func newTestSession(clock *fakeClock, tracker *captureTracker) *Session {
	return NewSession(Options{
		Now:      clock.now,
		Attempts: tracker,
		Scores:   tracker,
		Logger:   zerolog.Nop(),
	})
}

func TestNavigationCommitsTime(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock, &captureTracker{})
	s.Start(testQuestions(t), 10, false, nil)

	clock.advance(20 * time.Second)
	s.GoTo(1)
	clock.advance(30 * time.Second)
	s.GoTo(0)
	clock.advance(10 * time.Second)
	s.GoTo(2)

	if got := s.times[0]; got != 30*time.Second {
		t.Errorf("times[0] = %v, want 30s across two visits", got)
	}
	if got := s.times[1]; got != 30*time.Second {
		t.Errorf("times[1] = %v, want 30s", got)
	}
}

func TestGoToIgnoresInvalidTargets(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock, &captureTracker{})
	s.Start(testQuestions(t), 10, false, nil)

	s.GoTo(-1)
	s.GoTo(99)
	if got := s.CurrentIndex(); got != 0 {
		t.Fatalf("current index = %d, want 0 after invalid targets", got)
	}
}

func TestStartWithEmptyQuestionListIgnored(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock, &captureTracker{})

	s.Start(nil, 10, false, nil)
	if got := s.State(); got != StateNotStarted {
		t.Fatalf("state = %v, want not started after empty start", got)
	}
	if !s.Tick() {
		t.Fatal("tick on an idle session should report finished")
	}
	if report := s.Finish(); report != nil {
		t.Fatal("finish on an idle session should return nil")
	}

	// A real attempt must still work after the ignored start.
	s.Start(testQuestions(t), 10, false, nil)
	if got := s.State(); got != StateActive {
		t.Fatalf("state = %v, want active", got)
	}
	// Restarting an active session with an empty list must not wipe it either.
	s.Start([]Question{}, 10, false, nil)
	if got := s.State(); got != StateActive {
		t.Fatalf("state = %v, want active after ignored restart", got)
	}
}

func TestTickAutoFinishesOnce(t *testing.T) {
	clock := newFakeClock()
	tracker := &captureTracker{}
	s := newTestSession(clock, tracker)
	s.Start(testQuestions(t), 1, false, nil)

	s.AnswerMCQ(1)
	clock.advance(61 * time.Second)

	if done := s.Tick(); !done {
		t.Fatal("tick past the budget should force-finish")
	}
	// A second queued tick after finish must be a no-op.
	if done := s.Tick(); !done {
		t.Fatal("tick after finish should report finished")
	}

	tracker.waitScores(t, 1)
	if _, n := tracker.counts(); n != 1 {
		t.Fatalf("expected exactly one score submission, got %d", n)
	}
	if s.State() != StateFinished {
		t.Fatal("session should be finished")
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	tracker := &captureTracker{}
	s := newTestSession(clock, tracker)
	s.Start(testQuestions(t), 10, false, nil)

	s.AnswerMCQ(1)
	clock.advance(40 * time.Second)

	first := s.Finish()
	if first == nil {
		t.Fatal("first finish should produce a report")
	}
	timesSnapshot := append([]time.Duration(nil), s.times...)

	clock.advance(time.Minute)
	if second := s.Finish(); second != nil {
		t.Fatal("second finish must be a no-op")
	}
	for i := range s.times {
		if s.times[i] != timesSnapshot[i] {
			t.Fatalf("times[%d] mutated by second finish", i)
		}
	}

	tracker.waitScores(t, 1)
	time.Sleep(20 * time.Millisecond)
	if _, n := tracker.counts(); n != 1 {
		t.Fatalf("second finish double-reported: %d score submissions", n)
	}
}

func TestInstantCheckLocksQuestion(t *testing.T) {
	clock := newFakeClock()
	tracker := &captureTracker{}
	s := newTestSession(clock, tracker)
	s.Start(testQuestions(t), 10, true, Metadata{"chapter": "waves", "set": "A"})

	s.AnswerMCQ(1)
	s.CheckInstant()

	// Locked: further mutations are no-ops.
	s.AnswerMCQ(0)
	slot := s.store.Slot(0)
	if len(slot.picks) != 1 || slot.picks[0] != 1 {
		t.Fatalf("checked slot mutated: %v", slot.picks)
	}

	// The instant check pauses the global clock for review.
	if !s.timer.Paused() {
		t.Fatal("instant check should pause the global timer")
	}
	clock.advance(5 * time.Minute)
	if got := s.timer.Remaining(); got != 10*time.Minute {
		t.Fatalf("review time charged to the budget: remaining %v", got)
	}

	// Navigating on resumes the clock.
	s.GoTo(1)
	if s.timer.Paused() {
		t.Fatal("navigation should resume the paused timer")
	}

	// Restarting clears the lock.
	s.Start(testQuestions(t), 10, true, nil)
	s.AnswerMCQ(0)
	if got := s.store.Slot(0).picks; len(got) != 1 || got[0] != 0 {
		t.Fatalf("restart should clear instant locks, picks %v", got)
	}
}

func TestInstantModeReportsAtCheckNotFinish(t *testing.T) {
	clock := newFakeClock()
	tracker := &captureTracker{}
	s := newTestSession(clock, tracker)
	s.Start(testQuestions(t), 10, true, Metadata{"chapter": "optics", "set": "B", "platform": "instant"})

	s.AnswerMCQ(1)
	s.CheckInstant()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if a, _ := tracker.counts(); a == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("instant check did not report the attempt")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Finish()
	tracker.waitScores(t, 1)
	time.Sleep(20 * time.Millisecond)
	a, _ := tracker.counts()
	if a != 1 {
		t.Fatalf("finish re-reported instant-checked attempts: %d", a)
	}

	tracker.mu.Lock()
	attempt := tracker.attempts[0]
	tracker.mu.Unlock()
	if attempt.Chapter != "optics" || attempt.Set != "B" || attempt.Mode != "instant" {
		t.Fatalf("attempt metadata not forwarded: %+v", attempt)
	}
}

func TestNormalModeReportsAnsweredOnFinish(t *testing.T) {
	clock := newFakeClock()
	tracker := &captureTracker{}
	s := newTestSession(clock, tracker)
	s.Start(testQuestions(t), 10, false, nil)

	s.AnswerMCQ(1)
	s.GoTo(1)
	s.AnswerInput(0, "7")
	// q3 left unattempted.
	s.Finish()

	tracker.waitScores(t, 1)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if a, _ := tracker.counts(); a == 2 {
			break
		}
		if time.Now().After(deadline) {
			a, _ := tracker.counts()
			t.Fatalf("expected 2 attempt reports, got %d", a)
		}
		time.Sleep(5 * time.Millisecond)
	}

	tracker.mu.Lock()
	score := tracker.scores[0]
	tracker.mu.Unlock()
	if score.Correct != 2 || score.Attempted != 2 {
		t.Fatalf("score summary = %+v, want 2/2", score)
	}
}

func TestNoScoreSubmissionWithoutAttempts(t *testing.T) {
	clock := newFakeClock()
	tracker := &captureTracker{}
	s := newTestSession(clock, tracker)
	s.Start(testQuestions(t), 10, false, nil)

	s.Finish()
	time.Sleep(50 * time.Millisecond)
	if a, n := tracker.counts(); a != 0 || n != 0 {
		t.Fatalf("empty session must not report: %d attempts, %d scores", a, n)
	}
}

func TestAnswerAfterFinishIgnored(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock, &captureTracker{})
	s.Start(testQuestions(t), 10, false, nil)
	s.Finish()

	s.AnswerMCQ(1)
	s.AnswerSub(0, 1)
	s.AnswerInput(0, "7")
	s.GoTo(2)
	if s.store.Slot(0).Answered() {
		t.Fatal("mutations after finish must be no-ops")
	}
	if got := s.CurrentIndex(); got != 0 {
		t.Fatalf("navigation after finish moved the index to %d", got)
	}
}

func TestSessionTimingConservation(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock, &captureTracker{})
	s.Start(testQuestions(t), 60, false, nil)

	clock.advance(45 * time.Second)
	s.GoTo(1)
	clock.advance(20 * time.Second)
	s.Pause()
	clock.advance(3 * time.Minute)
	s.Resume()
	clock.advance(10 * time.Second)
	s.GoTo(2)
	clock.advance(25 * time.Second)
	s.Finish()

	var total time.Duration
	for _, d := range s.times {
		total += d
	}
	wall := 45*time.Second + 20*time.Second + 3*time.Minute + 10*time.Second + 25*time.Second
	if total+s.timer.PausedTotal() != wall {
		t.Fatalf("conservation violated: active %v + paused %v != wall %v",
			total, s.timer.PausedTotal(), wall)
	}
	if total != 100*time.Second {
		t.Fatalf("active time = %v, want 100s", total)
	}
}
