package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/response"
	"github.com/prepdeck/prepdeck-backend/internal/service"
	"github.com/prepdeck/prepdeck-backend/internal/validator"
)

// TrackingHandler handles attempt and score ingestion.
type TrackingHandler struct {
	trackerService *service.TrackerService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackerService *service.TrackerService) *TrackingHandler {
	return &TrackingHandler{trackerService: trackerService}
}

// RecordAttempt godoc
// POST /api/v1/attempt
// Queues a single graded attempt for persistence.
func (h *TrackingHandler) RecordAttempt(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrIdentityRequired)
		return
	}

	var req model.AttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.trackerService.RecordAttempt(c.Request.Context(), userID, &req); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
}

// SubmitScore godoc
// POST /api/v1/submit-score
// Validates and queues a finished session's score.
func (h *TrackingHandler) SubmitScore(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrIdentityRequired)
		return
	}

	var req model.ScoreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.trackerService.RecordScore(c.Request.Context(), userID, &req)
	switch {
	case errors.Is(err, service.ErrScoreInconsistent):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrScoreRejected)
	case errors.Is(err, service.ErrScoreEmpty):
		// Nothing to record, but the client did nothing wrong.
		response.Success(c, http.StatusOK, gin.H{"status": "ignored"})
	case err != nil:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	default:
		response.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
	}
}
