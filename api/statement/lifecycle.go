package statement

// Status is the lifecycle position of a statement document.
type Status string

const (
	StatusUploaded               Status = "uploaded"
	StatusProcessing             Status = "processing"
	StatusReviewPending          Status = "review_pending"
	StatusFailed                 Status = "failed"
	StatusSalesforcePending      Status = "salesforce_upload_pending"
	StatusCompleted              Status = "completed"
	StatusCompletedWithErrors    Status = "completed_with_errors"
	StatusSalesforceUploadFailed Status = "salesforce_upload_failed"
	StatusCorrectionPending      Status = "correction_pending"
)

// CanApplyExtraction reports whether an extraction completion notification
// may be applied. Re-delivery of the same notification is permitted
// (idempotent overwrite), so the post-extraction states are included; once a
// document has entered the submission phase an extraction result is stale.
func CanApplyExtraction(s Status) bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusReviewPending, StatusFailed:
		return true
	}
	return false
}

// CanSubmit reports whether the document can be dispatched for bulk
// submission to the CRM automation.
func CanSubmit(s Status) bool {
	return s == StatusReviewPending || s == StatusSalesforceUploadFailed
}

// CanApplyBulkCompletion reports whether a bulk submission completion may be
// applied. The three outcome states are included so a retried delivery of
// the same callback overwrites rather than errors.
func CanApplyBulkCompletion(s Status) bool {
	switch s {
	case StatusSalesforcePending, StatusCompleted, StatusCompletedWithErrors, StatusSalesforceUploadFailed:
		return true
	}
	return false
}

// IsCorrectable reports whether a correction round may be dispatched or a
// correction result applied. salesforce_upload_failed is included so a
// document can recover from a failed bulk run.
func IsCorrectable(s Status) bool {
	switch s {
	case StatusCompletedWithErrors, StatusCorrectionPending, StatusSalesforceUploadFailed:
		return true
	}
	return false
}

// outcomeStatus derives the post-completion status from the outstanding
// failure count.
func outcomeStatus(failedCount int) Status {
	if failedCount == 0 {
		return StatusCompleted
	}
	return StatusCompletedWithErrors
}
