package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepdeck/prepdeck-backend/internal/response"
	"github.com/prepdeck/prepdeck-backend/internal/service"
)

// QuizHandler serves the question set catalog and payloads.
type QuizHandler struct {
	questionSetService *service.QuestionSetService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(questionSetService *service.QuestionSetService) *QuizHandler {
	return &QuizHandler{questionSetService: questionSetService}
}

// ListQuestionSets godoc
// GET /api/v1/quizzes
// Returns the question set catalog without payloads.
func (h *QuizHandler) ListQuestionSets(c *gin.Context) {
	sets, err := h.questionSetService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": sets})
}

// GetPaper godoc
// GET /api/v1/quizzes/:set_id/paper
// Returns a question set with its full question data.
func (h *QuizHandler) GetPaper(c *gin.Context) {
	setID := c.Param("set_id")
	if setID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.questionSetService.GetPayload(c.Request.Context(), setID)
	if err != nil {
		if errors.Is(err, service.ErrQuestionSetNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuestionSetNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, payload)
}
