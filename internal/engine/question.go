package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// QuestionType tags the six supported question shapes. Each tag implies a
// distinct answer-slot layout and grading rule.
type QuestionType string

const (
	TypeMCQ            QuestionType = "mcq"
	TypeMSQ            QuestionType = "msq"
	TypeNumerical      QuestionType = "numerical"
	TypeMultiNumerical QuestionType = "multi_numerical"
	TypeNested         QuestionType = "nested"
	TypeMCloze         QuestionType = "mcloze"
)

// Question is one immutable question from a question set. The bank format is
// loosely typed (answers may arrive as numbers or strings, correct options as
// indices or letter codes), so the flexible fields decode through OptionKey
// and LooseString.
type Question struct {
	ID               string        `json:"id"`
	QuestionText     string        `json:"question"`
	QuestionType     QuestionType  `json:"questionType"`
	Marks            float64       `json:"marks"`
	AvailableOptions []string      `json:"availableOptions,omitempty"`
	Options          []string      `json:"options,omitempty"`
	CorrectOptions   []OptionKey   `json:"correctOptions,omitempty"`
	CorrectAnswer    LooseString   `json:"correctAnswer,omitempty"`
	SubQuestions     []SubQuestion `json:"subQuestions,omitempty"`
	Blanks           []Blank       `json:"blanks,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
}

// Weight returns the question's mark weight, defaulting to 1.
func (q *Question) Weight() float64 {
	if q.Marks > 0 {
		return q.Marks
	}
	return 1
}

// ExpectedSelections reports how many option selections an mcq question
// accepts (the size of its correct-option set).
func (q *Question) ExpectedSelections() int {
	return len(q.CorrectOptions)
}

// SubQuestion is one part of an msq, multi_numerical or nested question.
type SubQuestion struct {
	Type             string      `json:"type,omitempty"` // nested: numerical | mcq | text
	QuestionText     string      `json:"question,omitempty"`
	AvailableOptions []string    `json:"availableOptions,omitempty"` // msq per-part option list
	Options          []string    `json:"options,omitempty"`          // nested mcq option list
	CorrectOption    LooseString `json:"correctOption,omitempty"`    // msq: option text; nested mcq: option index
	Answer           LooseString `json:"answer,omitempty"`           // multi_numerical expected value
	CorrectAnswer    LooseString `json:"correctAnswer,omitempty"`    // nested numerical/text expected value
}

// Blank is one fill-in gap of an mcloze question.
type Blank struct {
	CorrectAnswer        LooseString `json:"correctAnswer"`
	IsCaseSensitive      bool        `json:"isCaseSensitive,omitempty"`
	AcceptedAlternatives []string    `json:"acceptedAlternatives,omitempty"`
}

// OptionKey identifies a correct option either by zero-based index or by a
// letter code ("A" == 0). Banks mix both forms freely.
type OptionKey struct {
	raw string
}

// Index resolves the key to a zero-based option index. Letter codes convert
// as letter - 'A'. Returns false for an empty or unusable key.
func (k OptionKey) Index() (int, bool) {
	s := strings.TrimSpace(k.raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	return int(s[0]) - 'A', true
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (k *OptionKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		k.raw = s
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	k.raw = strconv.FormatFloat(n, 'f', -1, 64)
	return nil
}

// MarshalJSON re-emits the key the way it arrived.
func (k OptionKey) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(k.raw); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(k.raw)
}

// LooseString is a string that also decodes from JSON numbers and booleans,
// matching the bank's loose typing. The zero value means "absent".
type LooseString string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (l *LooseString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = LooseString(s)
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = ""
		return nil
	}
	*l = LooseString(trimmed)
	return nil
}

// MarshalJSON always emits a string.
func (l LooseString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(l))
}

// String returns the underlying text.
func (l LooseString) String() string { return string(l) }

// IndexValue parses the value as an integer option index.
func (l LooseString) IndexValue() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(l)))
	if err != nil {
		return 0, false
	}
	return n, true
}
