package engine

import (
	"encoding/json"
	"testing"
)

func mustQuestion(t *testing.T, raw string) *Question {
	t.Helper()
	var q Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal question: %v", err)
	}
	return &q
}

func slotFor(q *Question) *Slot {
	s := newSlot(q)
	return &s
}

func TestMCQSetEquality(t *testing.T) {
	q := mustQuestion(t, `{"id":"q1","questionType":"mcq","correctOptions":[1,2],"availableOptions":["a","b","c","d"]}`)

	for _, picks := range [][]int{{1, 2}, {2, 1}} {
		slot := slotFor(q)
		for _, p := range picks {
			slot.selectOption(p, q.ExpectedSelections())
		}
		if !IsCorrect(q, slot) {
			t.Errorf("picks %v should grade correct regardless of order", picks)
		}
	}

	slot := slotFor(q)
	slot.selectOption(1, q.ExpectedSelections())
	if IsCorrect(q, slot) {
		t.Error("subset of the correct set must not grade correct")
	}
}

func TestMCQLetterCodes(t *testing.T) {
	q := mustQuestion(t, `{"id":"q1","questionType":"mcq","correctOptions":["B","C"]}`)
	slot := slotFor(q)
	slot.selectOption(2, 2)
	slot.selectOption(1, 2)
	if !IsCorrect(q, slot) {
		t.Error("letter codes should normalize to zero-based indices")
	}
}

func TestMCQSelectionCap(t *testing.T) {
	q := mustQuestion(t, `{"id":"q1","questionType":"mcq","correctOptions":[0,1]}`)
	slot := slotFor(q)
	slot.selectOption(0, 2)
	slot.selectOption(1, 2)
	slot.selectOption(3, 2) // beyond the expected count, refused
	if got := len(slot.picks); got != 2 {
		t.Fatalf("expected third selection to be refused, got %d picks", got)
	}

	// Toggling an existing selection removes it.
	slot.selectOption(1, 2)
	if got := len(slot.picks); got != 1 {
		t.Fatalf("expected toggle to deselect, got %d picks", got)
	}
}

func TestMCQSingleAnswerReplaces(t *testing.T) {
	q := mustQuestion(t, `{"id":"q1","questionType":"mcq","correctOptions":[3]}`)
	slot := slotFor(q)
	slot.selectOption(0, 1)
	slot.selectOption(3, 1)
	if !IsCorrect(q, slot) {
		t.Error("single-answer mcq should replace, not accumulate")
	}
}

func TestMSQGrading(t *testing.T) {
	q := mustQuestion(t, `{
		"id":"q2","questionType":"msq",
		"availableOptions":["True","False"],
		"subQuestions":[{"correctOption":"True"},{"correctOption":"False"}]
	}`)

	slot := slotFor(q)
	slot.setSubPick(0, 0)
	slot.setSubPick(1, 1)
	if !IsCorrect(q, slot) {
		t.Error("matching every sub-question should grade correct")
	}

	slot.setSubPick(1, 0)
	if IsCorrect(q, slot) {
		t.Error("one wrong sub-question fails the whole question")
	}

	partial := slotFor(q)
	partial.setSubPick(0, 0)
	if IsCorrect(q, partial) {
		t.Error("an unanswered sub-question fails the whole question")
	}
}

func TestMSQSubOptionListOverridesParent(t *testing.T) {
	q := mustQuestion(t, `{
		"id":"q2","questionType":"msq",
		"availableOptions":["x","y"],
		"subQuestions":[{"availableOptions":["p","q"],"correctOption":"q"}]
	}`)
	slot := slotFor(q)
	slot.setSubPick(0, 1)
	if !IsCorrect(q, slot) {
		t.Error("sub-question option list should take precedence")
	}
}

func TestNumericalExactness(t *testing.T) {
	q := mustQuestion(t, `{"id":"q3","questionType":"numerical","correctAnswer":42}`)

	cases := []struct {
		entry string
		want  bool
	}{
		{"42", true},
		{"42.0", true},
		{"42.001", false},
		{"", false},
		{"fortytwo", false},
	}
	for _, tc := range cases {
		slot := slotFor(q)
		slot.setEntry(0, tc.entry)
		if got := IsCorrect(q, slot); got != tc.want {
			t.Errorf("entry %q: got %v, want %v", tc.entry, got, tc.want)
		}
	}
}

func TestMultiNumericalPartialFailsWhole(t *testing.T) {
	q := mustQuestion(t, `{
		"id":"q4","questionType":"multi_numerical",
		"subQuestions":[{"answer":1},{"answer":2},{"answer":3}]
	}`)

	slot := slotFor(q)
	slot.setEntry(0, "1")
	slot.setEntry(1, "2")
	if IsCorrect(q, slot) {
		t.Error("two correct answers out of three must not grade correct")
	}

	slot.setEntry(2, "3")
	if !IsCorrect(q, slot) {
		t.Error("all sub-answers correct should grade correct")
	}
}

func TestNestedDispatch(t *testing.T) {
	q := mustQuestion(t, `{
		"id":"q5","questionType":"nested",
		"subQuestions":[
			{"type":"numerical","correctAnswer":"3.5"},
			{"type":"mcq","options":["red","green","blue"],"correctOption":1},
			{"type":"text","correctAnswer":"Photosynthesis"}
		]
	}`)

	slot := slotFor(q)
	slot.setEntry(0, "3.50")
	slot.setEntry(1, " green ")
	slot.setEntry(2, "photosynthesis")
	if !IsCorrect(q, slot) {
		t.Error("nested sub-types should each grade by their own rule")
	}

	slot.setEntry(1, "1") // index, not the option text
	if IsCorrect(q, slot) {
		t.Error("nested mcq compares against the option text, not its index")
	}
}

func TestMClozeCasePolicy(t *testing.T) {
	insensitive := Blank{CorrectAnswer: "Paris"}
	if !CheckBlank("paris", insensitive) {
		t.Error("case-insensitive blank should accept lowered input")
	}

	sensitive := Blank{CorrectAnswer: "Paris", IsCaseSensitive: true}
	if CheckBlank("paris", sensitive) {
		t.Error("case-sensitive blank should reject lowered input")
	}

	withAlts := Blank{CorrectAnswer: "Paris", AcceptedAlternatives: []string{"City of Light"}}
	if !CheckBlank("city of light", withAlts) {
		t.Error("accepted alternative should match under the blank's case policy")
	}
	if CheckBlank("", withAlts) {
		t.Error("absent value must grade false")
	}
}

func TestMClozeAllBlanksRequired(t *testing.T) {
	q := mustQuestion(t, `{
		"id":"q6","questionType":"mcloze",
		"blanks":[{"correctAnswer":"alpha"},{"correctAnswer":"beta"}]
	}`)
	slot := slotFor(q)
	slot.setEntry(0, "alpha")
	if IsCorrect(q, slot) {
		t.Error("an empty blank fails the whole question")
	}
	slot.setEntry(1, "BETA")
	if !IsCorrect(q, slot) {
		t.Error("all blanks satisfied should grade correct")
	}
}

func TestMalformedQuestionsGradeFalse(t *testing.T) {
	cases := []string{
		`{"id":"m1","questionType":"mcq"}`,
		`{"id":"m2","questionType":"msq","subQuestions":[{"correctOption":"missing"}]}`,
		`{"id":"m3","questionType":"numerical"}`,
		`{"id":"m4","questionType":"unknown_type"}`,
	}
	for _, raw := range cases {
		q := mustQuestion(t, raw)
		slot := slotFor(q)
		slot.picks = []int{0}
		slot.entries = []string{"1"}
		if IsCorrect(q, slot) {
			t.Errorf("question %s with missing grading data must grade false", q.ID)
		}
	}
	if IsCorrect(nil, nil) {
		t.Error("nil inputs must grade false")
	}
}
