package statement

import (
	"errors"
	"net/http"

	"CommissionFlow/api/constants"
)

// Validation failure sentinels. Handlers wrap these with detail via
// fmt.Errorf("%w: ..."), the HTTP layer maps them to a status and a
// machine-readable reason code. None of them may ever be coerced into a
// success response or allowed to partially persist.
var (
	ErrNotFound           = errors.New("document not found")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidState       = errors.New("invalid state")
	ErrCountMismatch      = errors.New("count mismatch")
	ErrExceedsFailedCount = errors.New("correction batch exceeds outstanding failures")
	ErrDataIntegrity      = errors.New("data integrity violation")
)

// ReasonCode returns the wire-level code for a validation failure, or
// CodeInternal for anything unexpected (storage down, network), which the
// caller may safely retry.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return constants.CodeNotFound
	case errors.Is(err, ErrInvalidPayload):
		return constants.CodeInvalidPayload
	case errors.Is(err, ErrInvalidState):
		return constants.CodeInvalidState
	case errors.Is(err, ErrCountMismatch):
		return constants.CodeCountMismatch
	case errors.Is(err, ErrExceedsFailedCount):
		return constants.CodeExceedsFailedCount
	case errors.Is(err, ErrDataIntegrity):
		return constants.CodeDataIntegrity
	}
	return constants.CodeInternal
}

// HTTPStatus maps a handler error to the response status. Validation
// failures are 4xx so the upstream automation does not retry them blindly;
// everything else is a 500 and retryable.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrCountMismatch),
		errors.Is(err, ErrExceedsFailedCount):
		return http.StatusBadRequest
	case errors.Is(err, ErrDataIntegrity):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
