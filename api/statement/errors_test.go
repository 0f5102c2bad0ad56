package statement

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"CommissionFlow/api/constants"
)

func TestReasonCodeAndHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{ErrNotFound, constants.CodeNotFound, http.StatusNotFound},
		{ErrInvalidPayload, constants.CodeInvalidPayload, http.StatusBadRequest},
		{ErrInvalidState, constants.CodeInvalidState, http.StatusConflict},
		{ErrCountMismatch, constants.CodeCountMismatch, http.StatusBadRequest},
		{ErrExceedsFailedCount, constants.CodeExceedsFailedCount, http.StatusBadRequest},
		{ErrDataIntegrity, constants.CodeDataIntegrity, http.StatusUnprocessableEntity},
		{errors.New("connection refused"), constants.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, ReasonCode(tt.err), "%v", tt.err)
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestWrappedSentinelsKeepTheirMapping(t *testing.T) {
	err := fmt.Errorf("%w: totalProcessed=3 outstanding=1", ErrExceedsFailedCount)
	assert.Equal(t, constants.CodeExceedsFailedCount, ReasonCode(err))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	err = fmt.Errorf("%w: reconciled state invalid: %v", ErrDataIntegrity, ErrCountMismatch)
	assert.Equal(t, constants.CodeDataIntegrity, ReasonCode(err))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
}
