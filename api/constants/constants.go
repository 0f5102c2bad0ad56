package constants

// Common error messages
const (
	ErrInvalidSession     = "invalid user_id or session"
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrInvalidJSONShort   = "Invalid JSON"
	ErrMissingUserID      = "Missing or invalid user_id in body"
	ErrUserIDRequired     = "user_id required"
	ErrDB                 = "DB error"
	ErrInvalidRequestBody = "Invalid request body"
	ErrPleaseLogin        = "Please login to continue."
	ErrMethodNotAllowed   = "Method Not Allowed"
)

// Content types and headers
const (
	ContentTypeJSON   = "application/json"
	ContentTypeText   = "Content-Type"
	HeaderWebhookAuth = "x-webhook-secret"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
)

// Machine-readable reason codes returned alongside 4xx validation failures.
// The review UI and the upstream automation branch on these, never on the
// human-readable message.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeInvalidState       = "INVALID_STATE"
	CodeCountMismatch      = "COUNT_MISMATCH"
	CodeExceedsFailedCount = "EXCEEDS_FAILED_COUNT"
	CodeDataIntegrity      = "DATA_INTEGRITY"
	CodeInternal           = "INTERNAL"
)
