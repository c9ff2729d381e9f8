package engine

import "encoding/json"

// Slot holds the answer state for a single question. Its layout follows the
// question type:
//
//	mcq             picks: selected option indices (capped at the expected count)
//	msq             subPicks: selected option index per sub-question, -1 = none
//	numerical       entries: empty until answered, then one element of numeric text
//	multi_numerical entries: one element per sub-question
//	nested          entries: one element per sub-question
//	mcloze          entries: one element per blank
//
// An empty string entry means "not answered"; msq uses -1 for the same.
type Slot struct {
	kind     QuestionType
	picks    []int
	subPicks []int
	entries  []string
}

func newSlot(q *Question) Slot {
	s := Slot{kind: q.QuestionType}
	switch q.QuestionType {
	case TypeMCQ:
		s.picks = []int{}
	case TypeMSQ:
		s.subPicks = make([]int, len(q.SubQuestions))
		for i := range s.subPicks {
			s.subPicks[i] = -1
		}
	case TypeNumerical:
		s.entries = []string{}
	case TypeMultiNumerical, TypeNested:
		s.entries = make([]string, len(q.SubQuestions))
	case TypeMCloze:
		s.entries = make([]string, len(q.Blanks))
	}
	return s
}

// Answered reports whether the slot counts as attempted: any selection for
// the membership-based types, any non-empty entry for the text-entry types.
func (s *Slot) Answered() bool {
	if len(s.picks) > 0 {
		return true
	}
	for _, p := range s.subPicks {
		if p >= 0 {
			return true
		}
	}
	for _, e := range s.entries {
		if e != "" {
			return true
		}
	}
	return false
}

func (s *Slot) selectOption(optionIndex, expected int) {
	if expected <= 1 {
		s.picks = []int{optionIndex}
		return
	}
	for i, p := range s.picks {
		if p == optionIndex {
			s.picks = append(s.picks[:i], s.picks[i+1:]...)
			return
		}
	}
	if len(s.picks) < expected {
		s.picks = append(s.picks, optionIndex)
	}
}

func (s *Slot) setSubPick(subIndex, optionIndex int) {
	if subIndex < 0 || subIndex >= len(s.subPicks) {
		return
	}
	s.subPicks[subIndex] = optionIndex
}

func (s *Slot) setEntry(subIndex int, value string) {
	// Numerical slots stay empty until the first entry arrives.
	if s.kind == TypeNumerical && subIndex == 0 && len(s.entries) == 0 {
		s.entries = make([]string, 1)
	}
	if subIndex < 0 || subIndex >= len(s.entries) {
		return
	}
	s.entries[subIndex] = value
}

// MarshalJSON serializes the slot in the wire form trackers and clients see:
// a plain array shaped like the question type (indices for mcq, nullable
// indices for msq, nullable strings otherwise).
func (s Slot) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case TypeMCQ:
		return json.Marshal(s.picks)
	case TypeMSQ:
		vals := make([]any, len(s.subPicks))
		for i, p := range s.subPicks {
			if p >= 0 {
				vals[i] = p
			}
		}
		return json.Marshal(vals)
	default:
		vals := make([]any, len(s.entries))
		for i, e := range s.entries {
			if e != "" {
				vals[i] = e
			}
		}
		return json.Marshal(vals)
	}
}

// Serialized returns the JSON wire form as a string, for attempt reporting.
func (s *Slot) Serialized() string {
	raw, err := json.Marshal(s)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// Store owns one Slot per question, index-aligned with the question list.
// Only the session state machine mutates it.
type Store struct {
	slots []Slot
}

// NewStore allocates the per-question answer slots for a question list.
func NewStore(questions []Question) *Store {
	slots := make([]Slot, len(questions))
	for i := range questions {
		slots[i] = newSlot(&questions[i])
	}
	return &Store{slots: slots}
}

// Len returns the number of slots.
func (st *Store) Len() int { return len(st.slots) }

// Slot returns the slot at index i.
func (st *Store) Slot(i int) *Slot { return &st.slots[i] }

// SelectOption records an mcq selection. Single-answer questions replace the
// selection; multi-answer questions toggle membership and refuse additions
// beyond the expected correct-option count.
func (st *Store) SelectOption(i int, q *Question, optionIndex int) {
	st.slots[i].selectOption(optionIndex, q.ExpectedSelections())
}

// SetSubPick records an msq sub-question selection.
func (st *Store) SetSubPick(i, subIndex, optionIndex int) {
	st.slots[i].setSubPick(subIndex, optionIndex)
}

// SetEntry records a text/numeric entry for the entry-based types.
func (st *Store) SetEntry(i, subIndex int, value string) {
	st.slots[i].setEntry(subIndex, value)
}
