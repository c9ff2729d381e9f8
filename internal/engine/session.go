package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the session lifecycle stage. Finished is terminal.
type State int

const (
	StateNotStarted State = iota
	StateActive
	StateFinished
)

// warningThreshold is the remaining budget below which ticks flag a warning.
const warningThreshold = time.Minute

// Metadata carries opaque context labels (subject/chapter/set). The engine
// only forwards the chapter/set/platform keys to the trackers.
type Metadata map[string]string

func (m Metadata) get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// Options configures a Session. Zero values get safe defaults: wall clock,
// no-op observer, discarded tracking.
type Options struct {
	Now      func() time.Time
	Observer Observer
	Attempts AttemptTracker
	Scores   ScoreTracker
	Logger   zerolog.Logger
}

// Session is the quiz-session state machine. It owns question sequencing,
// answer state, both clocks and finish accounting for one attempt. A Session
// is exclusively owned by one controller; the internal mutex only serializes
// the controller against the periodic tick driver.
type Session struct {
	mu sync.Mutex

	log      zerolog.Logger
	now      func() time.Time
	observer Observer
	attempts AttemptTracker
	scores   ScoreTracker

	state     State
	questions []Question
	store     *Store
	timer     *Tracker
	times     []time.Duration
	current   int
	checked   map[int]bool
	instant   bool
	metadata  Metadata
}

// NewSession creates an idle session. Call Start to begin an attempt.
func NewSession(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Session{
		log:      opts.Logger.With().Str("component", "quiz_session").Logger(),
		now:      opts.Now,
		observer: opts.Observer,
		attempts: opts.Attempts,
		scores:   opts.Scores,
	}
}

// Start resets all state and begins a new attempt over the given questions,
// with the time budget in minutes. Restarting a finished session is allowed;
// it discards the previous attempt entirely. Starting with no questions is
// ignored and leaves the session in its previous state.
func (s *Session) Start(questions []Question, timeLimitMinutes int, instantMode bool, metadata Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An empty list has no question to show and nothing to grade; refuse to
	// activate so navigation and finish never index into it.
	if len(questions) == 0 {
		s.log.Warn().Msg("Session start ignored: empty question list")
		return
	}

	s.questions = questions
	s.store = NewStore(questions)
	s.times = make([]time.Duration, len(questions))
	s.timer = newTracker(time.Duration(timeLimitMinutes)*time.Minute, s.now)
	s.current = 0
	s.checked = make(map[int]bool)
	s.instant = instantMode
	s.metadata = metadata
	s.state = StateActive

	s.log.Info().
		Int("questions", len(questions)).
		Int("time_limit_minutes", timeLimitMinutes).
		Bool("instant", instantMode).
		Msg("Session started")

	s.showCurrentLocked()
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentIndex returns the active question index.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// GoTo navigates to the question at index. Out-of-range targets and calls on
// a non-active session are ignored. Leaving a question always commits its
// elapsed time first, and always resumes a paused timer so review pauses are
// never charged to either question.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || index < 0 || index >= len(s.questions) {
		return
	}
	s.timer.Resume()
	s.times[s.current] += s.timer.CommitQuestion()
	s.current = index
	s.showCurrentLocked()
}

// AnswerMCQ records an option selection on the current mcq question.
func (s *Session) AnswerMCQ(optionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.answerableLocked() {
		return
	}
	s.store.SelectOption(s.current, &s.questions[s.current], optionIndex)
	s.observer.AnswerChanged(s.current, s.store.Slot(s.current))
}

// AnswerSub records an option selection for one msq sub-question.
func (s *Session) AnswerSub(subIndex, optionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.answerableLocked() {
		return
	}
	s.store.SetSubPick(s.current, subIndex, optionIndex)
	s.observer.AnswerChanged(s.current, s.store.Slot(s.current))
}

// AnswerInput records a text or numeric entry (numerical, multi_numerical,
// nested, mcloze). For plain numerical questions subIndex is 0.
func (s *Session) AnswerInput(subIndex int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.answerableLocked() {
		return
	}
	s.store.SetEntry(s.current, subIndex, value)
	s.observer.AnswerChanged(s.current, s.store.Slot(s.current))
}

// answerableLocked gates answer mutations: the session must be active and,
// in instant mode, the current question must not already be checked.
func (s *Session) answerableLocked() bool {
	if s.state != StateActive {
		return false
	}
	if s.instant && s.checked[s.current] {
		return false
	}
	return true
}

// CheckInstant grades and locks the current question (instant-feedback mode).
// The global timer pauses so feedback review time does not count against the
// budget. The attempt is reported fire-and-forget.
func (s *Session) CheckInstant() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || !s.instant || s.checked[s.current] {
		return
	}
	s.checked[s.current] = true
	s.times[s.current] += s.timer.CommitQuestion()
	s.timer.Pause()

	q := &s.questions[s.current]
	correct := gradeSafe(s.log, q, s.store.Slot(s.current))
	s.reportAttemptLocked(q, s.store.Slot(s.current), correct)
	s.observer.InstantChecked(s.current, correct)
}

// Pause freezes both clocks. No-op unless active.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	s.timer.Pause()
}

// Resume unfreezes both clocks. No-op unless active.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	s.timer.Resume()
}

// Tick drives both periodic clocks; call it once per second while the
// session runs. It is an idempotent no-op when paused or finished, and
// force-finishes exactly once when the budget runs out. Returns true once
// the session is finished so drivers can stop their tickers.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return true
	}
	if s.timer.Paused() {
		s.mu.Unlock()
		return false
	}
	remaining := s.timer.Remaining()
	if remaining <= 0 {
		s.finishLocked(true)
		s.mu.Unlock()
		return true
	}
	s.observer.TimerTick(remaining, remaining < warningThreshold)
	s.observer.QuestionTick(s.timer.QuestionElapsed())
	s.mu.Unlock()
	return false
}

// Finish ends the attempt voluntarily. Idempotent: a second call (e.g. a
// queued timer tick racing a manual submit) is a no-op.
func (s *Session) Finish() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishLocked(false)
}

// Report regenerates the report of a finished session from the committed
// state. Returns nil before finish.
func (s *Session) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished {
		return nil
	}
	return buildReport(s.log, s.questions, s.store, s.times)
}

func (s *Session) finishLocked(timeUp bool) *Report {
	if s.state != StateActive {
		return nil
	}
	s.timer.Resume()
	s.times[s.current] += s.timer.CommitQuestion()
	s.state = StateFinished

	report := buildReport(s.log, s.questions, s.store, s.times)
	elapsed := s.timer.SessionElapsed()

	// Normal mode reports attempts only at submission; instant mode already
	// reported each question at check time.
	if !s.instant {
		for i := range report.Details {
			d := &report.Details[i]
			if d.Answered {
				slot := s.store.Slot(i)
				s.reportAttemptLocked(d.Question, slot, d.Correct)
			}
		}
	}

	if attempted := report.AttemptedCount(); attempted > 0 {
		s.reportScoreLocked(report.CorrectCount(), attempted, elapsed)
	}

	s.log.Info().
		Bool("time_up", timeUp).
		Float64("score", report.Score).
		Float64("total", report.Total).
		Dur("elapsed", elapsed).
		Msg("Session finished")

	s.observer.SessionFinished(report, elapsed, timeUp)
	return report
}

// showCurrentLocked emits the navigation callback for the active question.
func (s *Session) showCurrentLocked() {
	checked := s.instant && s.checked[s.current]
	s.observer.QuestionShown(&s.questions[s.current], s.current, len(s.questions), s.store.Slot(s.current), checked)
}

// reportAttemptLocked hands one graded attempt to the tracker without
// blocking the session. Failures are logged, never surfaced.
func (s *Session) reportAttemptLocked(q *Question, slot *Slot, correct bool) {
	if s.attempts == nil {
		return
	}
	attempt := Attempt{
		QuestionID: q.ID,
		Correct:    correct,
		Chapter:    s.metadata.get("chapter"),
		Set:        s.metadata.get("set"),
		Tags:       q.Tags,
		Mode:       s.metadata.get("platform"),
		UserAnswer: slot.Serialized(),
	}
	go func() {
		if err := s.attempts.TrackAttempt(context.Background(), attempt); err != nil {
			s.log.Warn().Err(err).Str("question_id", attempt.QuestionID).Msg("Attempt tracking failed")
		}
	}()
}

func (s *Session) reportScoreLocked(correct, attempted int, elapsed time.Duration) {
	if s.scores == nil {
		return
	}
	summary := ScoreSummary{
		Correct:   correct,
		Attempted: attempted,
		Elapsed:   elapsed,
		ElapsedMs: elapsed.Milliseconds(),
		Mode:      s.metadata.get("platform"),
	}
	go func() {
		if err := s.scores.SubmitScore(context.Background(), summary); err != nil {
			s.log.Warn().Err(err).Msg("Score submission failed")
		}
	}()
}
