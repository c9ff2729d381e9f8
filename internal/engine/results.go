package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Detail is the per-question line of a finished session's report.
type Detail struct {
	Question *Question     `json:"question"`
	Answer   Slot          `json:"userAnswer"`
	Correct  bool          `json:"correct"`
	Time     time.Duration `json:"-"`
	TimeMs   int64         `json:"timeMs"`
	Answered bool          `json:"answered"`
}

// Report aggregates a finished session: raw score, the full mark total, the
// mark total of attempted questions only, and per-question details.
type Report struct {
	Score          float64  `json:"score"`
	Total          float64  `json:"total"`
	AttemptedTotal float64  `json:"attemptedTotal"`
	Details        []Detail `json:"details"`
}

// Percentage returns the display percentage under fair scoring: attempted
// marks are the denominator when any exist, so unattempted questions do not
// drag the percentage down. Guards against an empty session.
func (r *Report) Percentage() float64 {
	denom := r.AttemptedTotal
	if denom <= 0 {
		denom = r.Total
	}
	if denom <= 0 {
		denom = 1
	}
	return r.Score / denom * 100
}

// CorrectCount returns the number of correctly answered questions.
func (r *Report) CorrectCount() int {
	n := 0
	for i := range r.Details {
		if r.Details[i].Correct {
			n++
		}
	}
	return n
}

// AttemptedCount returns the number of attempted questions.
func (r *Report) AttemptedCount() int {
	n := 0
	for i := range r.Details {
		if r.Details[i].Answered {
			n++
		}
	}
	return n
}

// buildReport grades every question and totals the marks. Grading of a single
// malformed question degrades to incorrect without aborting the rest.
func buildReport(log zerolog.Logger, questions []Question, store *Store, times []time.Duration) *Report {
	report := &Report{Details: make([]Detail, len(questions))}
	for i := range questions {
		q := &questions[i]
		slot := store.Slot(i)
		marks := q.Weight()
		answered := slot.Answered()

		correct := false
		if answered {
			correct = gradeSafe(log, q, slot)
			if correct {
				report.Score += marks
			}
			report.AttemptedTotal += marks
		}
		report.Total += marks

		report.Details[i] = Detail{
			Question: q,
			Answer:   *slot,
			Correct:  correct,
			Time:     times[i],
			TimeMs:   times[i].Milliseconds(),
			Answered: answered,
		}
	}
	return report
}

// gradeSafe isolates per-question grading so one bad question cannot take
// down the whole report.
func gradeSafe(log zerolog.Logger, q *Question, slot *Slot) (correct bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("question_id", q.ID).Interface("panic", r).Msg("Grading failed, marking incorrect")
			correct = false
		}
	}()
	return IsCorrect(q, slot)
}
