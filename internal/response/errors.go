package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation    ErrCode = "VALIDATION_ERROR"
	ErrInvalidID     ErrCode = "INVALID_ID"
	ErrInvalidAnswer ErrCode = "INVALID_ANSWER"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrUnknownQuestion ErrCode = "UNKNOWN_QUESTION"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrDuplicateRegistration ErrCode = "DUPLICATE_REGISTRATION"
	ErrNotRegistered         ErrCode = "NOT_REGISTERED"
	ErrExamNotActive         ErrCode = "EXAM_NOT_ACTIVE"
	ErrSessionClosed         ErrCode = "SESSION_CLOSED"
	ErrSessionNotStarted     ErrCode = "SESSION_NOT_STARTED"
	ErrSessionNotCompleted   ErrCode = "SESSION_NOT_COMPLETED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid NISN or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidAnswer:
		return "An answer must carry either a non-empty option selection or non-empty text, not both."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrUnknownQuestion:
		return "The question does not belong to this exam."

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	case ErrDuplicateRegistration:
		return "You are already registered for this exam."
	case ErrNotRegistered:
		return "You are not registered for this exam."
	case ErrExamNotActive:
		return "This exam is not currently open."
	case ErrSessionClosed:
		return "This exam session no longer accepts answers."
	case ErrSessionNotStarted:
		return "This exam session has not been started."
	case ErrSessionNotCompleted:
		return "This exam session has not been completed yet."

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
