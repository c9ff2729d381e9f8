package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart       Action = "start"
	ActionGoTo        Action = "goto"
	ActionAnswerMCQ   Action = "answer_mcq"
	ActionAnswerSub   Action = "answer_sub"
	ActionAnswerInput Action = "answer_input"
	ActionCheck       Action = "check"
	ActionPause       Action = "pause"
	ActionResume      Action = "resume"
	ActionFinish      Action = "finish"
	ActionPing        Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// StartRequest begins a session on a question set.
type StartRequest struct {
	Action           Action            `json:"action"`
	SetID            string            `json:"set_id"`
	TimeLimitMinutes int               `json:"time_limit_minutes"`
	InstantMode      bool              `json:"instant_mode"`
	Metadata         map[string]string `json:"metadata"`
}

// GoToRequest navigates to a question by index.
type GoToRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// AnswerMCQRequest toggles or replaces an option pick on the current question.
type AnswerMCQRequest struct {
	Action Action `json:"action"`
	Option int    `json:"option"`
}

// AnswerSubRequest picks an option for one sub-question of an MSQ.
type AnswerSubRequest struct {
	Action Action `json:"action"`
	Sub    int    `json:"sub"`
	Option int    `json:"option"`
}

// AnswerInputRequest sets a free-entry value (numerical, nested, cloze).
type AnswerInputRequest struct {
	Action Action `json:"action"`
	Entry  int    `json:"entry"`
	Value  string `json:"value"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventQuestion     Event = "question"
	EventAnswer       Event = "answer"
	EventTick         Event = "tick"
	EventQuestionTick Event = "question_tick"
	EventChecked      Event = "checked"
	EventFinished     Event = "finished"
	EventError        Event = "error"
	EventPong         Event = "pong"
)

// QuestionResponse carries the visible question and its current answer state.
type QuestionResponse struct {
	Event    Event           `json:"event"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Question json.RawMessage `json:"question"`
	Answer   json.RawMessage `json:"answer"`
	Checked  bool            `json:"checked"`
}

// AnswerResponse carries the new answer state after a change.
type AnswerResponse struct {
	Event  Event           `json:"event"`
	Index  int             `json:"index"`
	Answer json.RawMessage `json:"answer"`
}

// TickResponse carries the remaining session time.
type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int64 `json:"remaining_ms"`
	Warning   bool  `json:"warning"`
}

// QuestionTickResponse carries the active-time clock of the current question.
type QuestionTickResponse struct {
	Event   Event `json:"event"`
	Elapsed int64 `json:"elapsed_ms"`
}

// CheckedResponse carries the instant-check verdict for one question.
type CheckedResponse struct {
	Event   Event `json:"event"`
	Index   int   `json:"index"`
	Correct bool  `json:"correct"`
}

// FinishedResponse carries the end-of-session report.
type FinishedResponse struct {
	Event   Event           `json:"event"`
	TimeUp  bool            `json:"time_up"`
	Elapsed int64           `json:"elapsed_ms"`
	Report  json.RawMessage `json:"report"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
