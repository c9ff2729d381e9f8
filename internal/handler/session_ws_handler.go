package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/engine"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
	"github.com/prepdeck/prepdeck-backend/internal/service"
	ws "github.com/prepdeck/prepdeck-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// SessionWSHandler hosts live quiz sessions over WebSocket. Each connection
// owns exactly one engine.Session; all session events stream back as typed
// messages and a server-side ticker drives the clocks.
type SessionWSHandler struct {
	questionSetService *service.QuestionSetService
	trackerService     *service.TrackerService
	tickInterval       time.Duration
	log                zerolog.Logger
	upgrader           websocket.Upgrader
}

// NewSessionWSHandler creates a new SessionWSHandler.
func NewSessionWSHandler(
	questionSetService *service.QuestionSetService,
	trackerService *service.TrackerService,
	cfg *config.Config,
	log zerolog.Logger,
) *SessionWSHandler {
	return &SessionWSHandler{
		questionSetService: questionSetService,
		trackerService:     trackerService,
		tickInterval:       cfg.SessionTickInterval,
		log:                log.With().Str("component", "session_ws").Logger(),
		upgrader:           buildUpgrader(cfg.AllowedOrigins),
	}
}

// connObserver relays engine events to the client. Writes are serialized
// behind a mutex because the ticker goroutine and the read loop both
// trigger observer callbacks.
type connObserver struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  zerolog.Logger
}

func (o *connObserver) write(v interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := ws.WriteTyped(o.conn, v); err != nil {
		o.log.Debug().Err(err).Msg("event write failed")
	}
}

func (o *connObserver) QuestionShown(q *engine.Question, index, total int, slot *engine.Slot, checked bool) {
	question, _ := json.Marshal(q)
	answer, _ := json.Marshal(slot)
	o.write(ws.QuestionResponse{
		Event:    ws.EventQuestion,
		Index:    index,
		Total:    total,
		Question: question,
		Answer:   answer,
		Checked:  checked,
	})
}

func (o *connObserver) AnswerChanged(index int, slot *engine.Slot) {
	answer, _ := json.Marshal(slot)
	o.write(ws.AnswerResponse{
		Event:  ws.EventAnswer,
		Index:  index,
		Answer: answer,
	})
}

func (o *connObserver) TimerTick(remaining time.Duration, warning bool) {
	o.write(ws.TickResponse{
		Event:     ws.EventTick,
		Remaining: remaining.Milliseconds(),
		Warning:   warning,
	})
}

func (o *connObserver) QuestionTick(elapsed time.Duration) {
	o.write(ws.QuestionTickResponse{
		Event:   ws.EventQuestionTick,
		Elapsed: elapsed.Milliseconds(),
	})
}

func (o *connObserver) InstantChecked(index int, correct bool) {
	o.write(ws.CheckedResponse{
		Event:   ws.EventChecked,
		Index:   index,
		Correct: correct,
	})
}

func (o *connObserver) SessionFinished(report *engine.Report, elapsed time.Duration, timeUp bool) {
	raw, _ := json.Marshal(report)
	o.write(ws.FinishedResponse{
		Event:   ws.EventFinished,
		TimeUp:  timeUp,
		Elapsed: elapsed.Milliseconds(),
		Report:  raw,
	})
}

// SessionStream godoc
// WS /ws/v1/session
// Upgrades to WebSocket and runs one quiz session for the connection.
func (h *SessionWSHandler) SessionStream(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("user_id", userID).Logger()
	wsLog.Info().Msg("Session client connected")

	obs := &connObserver{conn: conn, log: wsLog}

	opts := engine.Options{
		Observer: obs,
		Logger:   wsLog,
	}
	// Anonymous sessions still play; they just leave no history behind.
	if userID != "" {
		tracker := h.trackerService.ForUser(userID)
		opts.Attempts = tracker
		opts.Scores = tracker
	}
	session := engine.NewSession(opts)

	// Ticker goroutine drives both session clocks until the connection or
	// the session ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(h.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				session.Tick()
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			obs.write(ws.ErrorResponse{Event: ws.EventError, Error: "malformed message"})
			continue
		}

		switch envelope.Action {
		case ws.ActionStart:
			h.handleStart(c, session, obs, raw)
		case ws.ActionGoTo:
			var msg ws.GoToRequest
			if json.Unmarshal(raw, &msg) == nil {
				session.GoTo(msg.Index)
			}
		case ws.ActionAnswerMCQ:
			var msg ws.AnswerMCQRequest
			if json.Unmarshal(raw, &msg) == nil {
				session.AnswerMCQ(msg.Option)
			}
		case ws.ActionAnswerSub:
			var msg ws.AnswerSubRequest
			if json.Unmarshal(raw, &msg) == nil {
				session.AnswerSub(msg.Sub, msg.Option)
			}
		case ws.ActionAnswerInput:
			var msg ws.AnswerInputRequest
			if json.Unmarshal(raw, &msg) == nil {
				session.AnswerInput(msg.Entry, msg.Value)
			}
		case ws.ActionCheck:
			session.CheckInstant()
		case ws.ActionPause:
			session.Pause()
		case ws.ActionResume:
			session.Resume()
		case ws.ActionFinish:
			session.Finish()
		case ws.ActionPing:
			obs.write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			obs.write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(envelope.Action)})
		}
	}

	// A tab close mid-quiz still produces a report and, through the
	// trackers, a queued score for any answered questions.
	if session.State() == engine.StateActive {
		session.Finish()
	}
}

func (h *SessionWSHandler) handleStart(c *gin.Context, session *engine.Session, obs *connObserver, raw []byte) {
	var msg ws.StartRequest
	if err := json.Unmarshal(raw, &msg); err != nil || msg.SetID == "" {
		obs.write(ws.ErrorResponse{Event: ws.EventError, Error: "set_id is required"})
		return
	}

	payload, questions, err := h.questionSetService.LoadQuestions(c.Request.Context(), msg.SetID)
	if err != nil {
		obs.write(ws.ErrorResponse{Event: ws.EventError, Error: "question set unavailable"})
		return
	}

	timeLimit := msg.TimeLimitMinutes
	if timeLimit <= 0 {
		timeLimit = payload.TimeLimitMinutes
	}

	metadata := engine.Metadata{}
	for k, v := range msg.Metadata {
		metadata[k] = v
	}
	metadata["set"] = payload.SetID
	if payload.Chapter != "" {
		metadata["chapter"] = payload.Chapter
	}
	if _, ok := metadata["platform"]; !ok {
		if msg.InstantMode {
			metadata["platform"] = "instant"
		} else {
			metadata["platform"] = "normal"
		}
	}

	session.Start(questions, timeLimit, msg.InstantMode, metadata)
}
