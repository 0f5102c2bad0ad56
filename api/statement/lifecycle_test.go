package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanApplyExtraction(t *testing.T) {
	allowed := map[Status]bool{
		StatusUploaded:      true,
		StatusProcessing:    true,
		StatusReviewPending: true,
		StatusFailed:        true,
	}
	for _, s := range allStatuses() {
		assert.Equal(t, allowed[s], CanApplyExtraction(s), "status %s", s)
	}
}

func TestCanSubmit(t *testing.T) {
	allowed := map[Status]bool{
		StatusReviewPending:          true,
		StatusSalesforceUploadFailed: true,
	}
	for _, s := range allStatuses() {
		assert.Equal(t, allowed[s], CanSubmit(s), "status %s", s)
	}
}

func TestCanApplyBulkCompletion(t *testing.T) {
	allowed := map[Status]bool{
		StatusSalesforcePending:      true,
		StatusCompleted:              true,
		StatusCompletedWithErrors:    true,
		StatusSalesforceUploadFailed: true,
	}
	for _, s := range allStatuses() {
		assert.Equal(t, allowed[s], CanApplyBulkCompletion(s), "status %s", s)
	}
}

func TestIsCorrectable(t *testing.T) {
	allowed := map[Status]bool{
		StatusCompletedWithErrors:    true,
		StatusCorrectionPending:      true,
		StatusSalesforceUploadFailed: true,
	}
	for _, s := range allStatuses() {
		assert.Equal(t, allowed[s], IsCorrectable(s), "status %s", s)
	}
}

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, outcomeStatus(0))
	assert.Equal(t, StatusCompletedWithErrors, outcomeStatus(1))
	assert.Equal(t, StatusCompletedWithErrors, outcomeStatus(7))
}

func allStatuses() []Status {
	return []Status{
		StatusUploaded, StatusProcessing, StatusReviewPending, StatusFailed,
		StatusSalesforcePending, StatusCompleted, StatusCompletedWithErrors,
		StatusSalesforceUploadFailed, StatusCorrectionPending,
	}
}
