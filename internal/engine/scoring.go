package engine

import (
	"sort"
	"strconv"
	"strings"
)

// IsCorrect grades a candidate answer slot against its question. It is a
// total function: absent answers, unknown types and malformed grading data
// all grade as incorrect, never as an error.
func IsCorrect(q *Question, slot *Slot) bool {
	if q == nil || slot == nil {
		return false
	}
	switch q.QuestionType {
	case TypeMCQ:
		return gradeMCQ(q, slot)
	case TypeMSQ:
		return gradeMSQ(q, slot)
	case TypeNumerical:
		return gradeNumerical(q, slot)
	case TypeMultiNumerical:
		return gradeMultiNumerical(q, slot)
	case TypeNested:
		return gradeNested(q, slot)
	case TypeMCloze:
		return gradeMCloze(q, slot)
	}
	return false
}

// gradeMCQ checks set equality between the selected indices and the correct
// option set. Order of selection is irrelevant; subsets and supersets fail.
func gradeMCQ(q *Question, slot *Slot) bool {
	if len(q.CorrectOptions) == 0 || len(slot.picks) == 0 {
		return false
	}
	correct := make([]int, 0, len(q.CorrectOptions))
	for _, k := range q.CorrectOptions {
		idx, ok := k.Index()
		if !ok {
			return false
		}
		correct = append(correct, idx)
	}
	if len(slot.picks) != len(correct) {
		return false
	}
	picked := append([]int(nil), slot.picks...)
	sort.Ints(picked)
	sort.Ints(correct)
	for i := range picked {
		if picked[i] != correct[i] {
			return false
		}
	}
	return true
}

// gradeMSQ requires every sub-question's selected option index to match the
// index of its designated correct option text, looked up in the
// sub-question's own option list or, failing that, the parent's.
func gradeMSQ(q *Question, slot *Slot) bool {
	if len(q.SubQuestions) == 0 || len(slot.subPicks) < len(q.SubQuestions) {
		return false
	}
	for i := range q.SubQuestions {
		sq := &q.SubQuestions[i]
		opts := sq.AvailableOptions
		if len(opts) == 0 {
			opts = q.AvailableOptions
		}
		if len(opts) == 0 {
			return false
		}
		correctIdx := -1
		for j, opt := range opts {
			if opt == sq.CorrectOption.String() {
				correctIdx = j
				break
			}
		}
		if slot.subPicks[i] != correctIdx || correctIdx < 0 {
			return false
		}
	}
	return true
}

func gradeNumerical(q *Question, slot *Slot) bool {
	if len(slot.entries) == 0 || slot.entries[0] == "" {
		return false
	}
	got, ok1 := parseFloat(slot.entries[0])
	want, ok2 := parseFloat(q.CorrectAnswer.String())
	return ok1 && ok2 && got == want
}

func gradeMultiNumerical(q *Question, slot *Slot) bool {
	if len(q.SubQuestions) == 0 || len(slot.entries) < len(q.SubQuestions) {
		return false
	}
	for i := range q.SubQuestions {
		if slot.entries[i] == "" {
			return false
		}
		got, ok1 := parseFloat(slot.entries[i])
		want, ok2 := parseFloat(q.SubQuestions[i].Answer.String())
		if !ok1 || !ok2 || got != want {
			return false
		}
	}
	return true
}

// gradeNested dispatches each sub-question on its own sub-type: exact float
// equality for numerical, correct-option text comparison for mcq, and
// case-insensitive trimmed equality for text.
func gradeNested(q *Question, slot *Slot) bool {
	if len(q.SubQuestions) == 0 || len(slot.entries) < len(q.SubQuestions) {
		return false
	}
	for i := range q.SubQuestions {
		sq := &q.SubQuestions[i]
		entry := slot.entries[i]
		if entry == "" {
			return false
		}
		switch sq.Type {
		case "numerical":
			got, ok1 := parseFloat(entry)
			want, ok2 := parseFloat(sq.CorrectAnswer.String())
			if !ok1 || !ok2 || got != want {
				return false
			}
		case "mcq":
			idx, ok := sq.CorrectOption.IndexValue()
			if !ok || idx < 0 || idx >= len(sq.Options) {
				return false
			}
			if strings.TrimSpace(entry) != sq.Options[idx] {
				return false
			}
		case "text":
			got := strings.ToLower(strings.TrimSpace(entry))
			want := strings.ToLower(strings.TrimSpace(sq.CorrectAnswer.String()))
			if got != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func gradeMCloze(q *Question, slot *Slot) bool {
	if len(q.Blanks) == 0 || len(slot.entries) < len(q.Blanks) {
		return false
	}
	for i := range q.Blanks {
		if !CheckBlank(slot.entries[i], q.Blanks[i]) {
			return false
		}
	}
	return true
}

// CheckBlank grades one mcloze blank. The submitted value is trimmed and
// compared to the expected answer under the blank's case policy, then to each
// accepted alternative. Total: absent values return false. Reused standalone
// by renderers for live feedback.
func CheckBlank(value string, blank Blank) bool {
	if value == "" {
		return false
	}
	got := strings.TrimSpace(value)
	want := strings.TrimSpace(blank.CorrectAnswer.String())
	if !blank.IsCaseSensitive {
		got = strings.ToLower(got)
		want = strings.ToLower(want)
	}
	if got == want {
		return true
	}
	for _, alt := range blank.AcceptedAlternatives {
		a := strings.TrimSpace(alt)
		if !blank.IsCaseSensitive {
			a = strings.ToLower(a)
		}
		if got == a {
			return true
		}
	}
	return false
}

// parseFloat parses loosely-formatted numeric text. Falls back to the first
// whitespace-separated field so inputs like "42 m/s" still parse.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
