package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Identity ──────────────────────────────────────────────────────
	ErrIdentityRequired ErrCode = "IDENTITY_REQUIRED"
	ErrIdentityInvalid  ErrCode = "IDENTITY_INVALID"
	ErrIdentityExpired  ErrCode = "IDENTITY_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuestionSetNotFound ErrCode = "QUESTION_SET_NOT_FOUND"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrScoreRejected       ErrCode = "SCORE_REJECTED"
	ErrSessionNotActive    ErrCode = "SESSION_NOT_ACTIVE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Identity ──────────────────────────────────────────────────────
	case ErrIdentityRequired:
		return "An identity cookie is required for this request."
	case ErrIdentityInvalid:
		return "The identity cookie is not valid."
	case ErrIdentityExpired:
		return "The identity cookie has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuestionSetNotFound:
		return "The requested question set does not exist."
	case ErrNoQuestions:
		return "This question set has no questions."
	case ErrScoreRejected:
		return "The submitted score is not consistent."
	case ErrSessionNotActive:
		return "No active quiz session."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
