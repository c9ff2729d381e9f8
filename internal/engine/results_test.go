package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFairScoringPercentage(t *testing.T) {
	raw := make([]Question, 0, 10)
	for i := 0; i < 10; i++ {
		raw = append(raw, Question{
			ID:             string(rune('a' + i)),
			QuestionType:   TypeMCQ,
			CorrectOptions: []OptionKey{{raw: "0"}},
		})
	}
	store := NewStore(raw)
	// Four attempted: three correct, one wrong.
	store.SelectOption(0, &raw[0], 0)
	store.SelectOption(1, &raw[1], 0)
	store.SelectOption(2, &raw[2], 0)
	store.SelectOption(3, &raw[3], 1)

	report := buildReport(zerolog.Nop(), raw, store, make([]time.Duration, 10))
	if report.Score != 3 || report.Total != 10 || report.AttemptedTotal != 4 {
		t.Fatalf("score=%v total=%v attempted=%v, want 3/10/4",
			report.Score, report.Total, report.AttemptedTotal)
	}
	if got := report.Percentage(); got != 75 {
		t.Fatalf("percentage = %v, want 75 (attempted marks as denominator)", got)
	}
}

func TestPercentageFallbacks(t *testing.T) {
	empty := &Report{}
	if got := empty.Percentage(); got != 0 {
		t.Fatalf("empty report percentage = %v, want 0", got)
	}

	unattempted := &Report{Total: 5}
	if got := unattempted.Percentage(); got != 0 {
		t.Fatalf("unattempted report percentage = %v, want 0", got)
	}
}

func TestMarksWeighting(t *testing.T) {
	questions := []Question{
		{ID: "q1", QuestionType: TypeMCQ, Marks: 4, CorrectOptions: []OptionKey{{raw: "1"}}},
		{ID: "q2", QuestionType: TypeNumerical, Marks: 2, CorrectAnswer: "5"},
	}
	store := NewStore(questions)
	store.SelectOption(0, &questions[0], 1)
	store.SetEntry(1, 0, "4.9")

	report := buildReport(zerolog.Nop(), questions, store, make([]time.Duration, 2))
	if report.Score != 4 {
		t.Errorf("score = %v, want 4 (only the mcq's marks)", report.Score)
	}
	if report.Total != 6 || report.AttemptedTotal != 6 {
		t.Errorf("total=%v attempted=%v, want 6/6", report.Total, report.AttemptedTotal)
	}
}

func TestReportDetailsCarryTimes(t *testing.T) {
	questions := []Question{
		{ID: "q1", QuestionType: TypeNumerical, CorrectAnswer: "1"},
		{ID: "q2", QuestionType: TypeNumerical, CorrectAnswer: "2"},
	}
	store := NewStore(questions)
	store.SetEntry(0, 0, "1")
	times := []time.Duration{42 * time.Second, 11 * time.Second}

	report := buildReport(zerolog.Nop(), questions, store, times)
	if report.Details[0].TimeMs != 42000 || report.Details[1].TimeMs != 11000 {
		t.Fatalf("details times = %d, %d", report.Details[0].TimeMs, report.Details[1].TimeMs)
	}
	if !report.Details[0].Answered || report.Details[1].Answered {
		t.Fatal("answered flags wrong")
	}
	if report.CorrectCount() != 1 || report.AttemptedCount() != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", report.CorrectCount(), report.AttemptedCount())
	}
}
