package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
	"github.com/prepdeck/prepdeck-backend/internal/response"
	"github.com/prepdeck/prepdeck-backend/internal/service"
	"github.com/prepdeck/prepdeck-backend/internal/validator"
	"github.com/redis/go-redis/v9"
)

func newTrackingRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := NewTrackingHandler(service.NewTrackerService(client))

	r := gin.New()
	// Stand-in for the identity middleware: a fixed authenticated user.
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, "29f7d9b2-0000-4000-8000-000000000001")
		c.Next()
	})
	r.POST("/api/v1/attempt", h.RecordAttempt)
	r.POST("/api/v1/submit-score", h.SubmitScore)
	return r, mr
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitScoreRejectsInconsistent(t *testing.T) {
	r, mr := newTrackingRouter(t)

	w := postJSON(t, r, "/api/v1/submit-score", `{"correct":7,"total":5}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if body.Error == nil || body.Error.Code != response.ErrScoreRejected {
		t.Errorf("error = %+v, want SCORE_REJECTED", body.Error)
	}
	if mr.Exists(config.WorkerKey.PersistScoresQueue) {
		t.Error("rejected score must not be queued")
	}
}

func TestSubmitScoreIgnoresEmptySession(t *testing.T) {
	r, mr := newTrackingRouter(t)

	w := postJSON(t, r, "/api/v1/submit-score", `{"correct":0,"total":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if mr.Exists(config.WorkerKey.PersistScoresQueue) {
		t.Error("empty score must not be queued")
	}
}

func TestSubmitScoreQueuesValid(t *testing.T) {
	r, mr := newTrackingRouter(t)

	w := postJSON(t, r, "/api/v1/submit-score", `{"correct":4,"total":5,"time_ms":120000,"mode":"normal"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if n, _ := mr.List(config.WorkerKey.PersistScoresQueue); len(n) != 1 {
		t.Errorf("queue length = %d, want 1", len(n))
	}
}

func TestRecordAttemptValidatesPayload(t *testing.T) {
	r, mr := newTrackingRouter(t)

	w := postJSON(t, r, "/api/v1/attempt", `{"is_correct":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing question_id: status = %d, want 400", w.Code)
	}

	w = postJSON(t, r, "/api/v1/attempt", `{"question_id":"q-3","is_correct":true,"set":"algebra-1","mode":"instant"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if n, _ := mr.List(config.WorkerKey.PersistAttemptsQueue); len(n) != 1 {
		t.Errorf("queue length = %d, want 1", len(n))
	}
}
