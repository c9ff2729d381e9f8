package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/response"
	"github.com/prepdeck/prepdeck-backend/internal/service"
	"github.com/prepdeck/prepdeck-backend/internal/validator"
)

// TrackHandler handles the anonymous identity handshake.
type TrackHandler struct {
	identityService *service.IdentityService
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(identityService *service.IdentityService) *TrackHandler {
	return &TrackHandler{identityService: identityService}
}

// Track godoc
// POST /api/v1/track
// Mints or refreshes the anonymous identity and sets the signed cookie.
func (h *TrackHandler) Track(c *gin.Context) {
	var req model.TrackRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// A valid existing cookie wins over whatever ID the body carries, so a
	// stale client cannot adopt another user's UUID.
	if token, err := c.Cookie(service.IdentityCookieName); err == nil && token != "" {
		if claims, err := h.identityService.ValidateToken(token); err == nil {
			req.UserID = claims.UserID
		}
	}

	user, token, err := h.identityService.Track(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.identityService.SetCookie(c, token)
	response.Success(c, http.StatusOK, model.TrackResponse{UserID: user.ID})
}

// Whoami godoc
// GET /api/v1/track
// Returns the identity behind the current cookie without side effects.
func (h *TrackHandler) Whoami(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrIdentityRequired)
		return
	}
	response.Success(c, http.StatusOK, model.TrackResponse{UserID: userID})
}
