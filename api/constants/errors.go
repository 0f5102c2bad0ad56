package constants

// ============================================================================
// STATEMENT DOCUMENT ERRORS
// ============================================================================

const (
	ErrDocumentNotFound       = "Statement document not found"
	ErrStorageRefNotFound     = "No statement document matches the given storage reference"
	ErrDocumentCreateFailed   = "Failed to create statement document"
	ErrNoFailedTransactions   = "No failed transactions are outstanding for this document"
	ErrNotCorrectable         = "Document is not in a correctable state"
	ErrExtractionNotPermitted = "Extraction result not permitted for current document status"
	ErrCompletionNotPermitted = "Submission result not permitted for current document status"
	ErrStorageRefMismatch     = "Storage reference does not match the document"
	ErrTotalsAlreadyFixed     = "Reported total does not match the document's fixed transaction total"
)

// ============================================================================
// WEBHOOK / PAYLOAD ERRORS
// ============================================================================

const (
	ErrWebhookSecret        = "Missing or invalid webhook secret"
	ErrUnrecognizedPayload  = "Payload matches none of the tolerated shapes"
	ErrMissingOutputRefs    = "Processed notification is missing extraction output references"
	ErrMissingErrorMessage  = "Failed notification is missing an error message"
	ErrMissingDocumentID    = "documentId is required in the request body"
	ErrMissingCompletion    = "completionData is required for a submission result"
	ErrNegativeCounts       = "Transaction counts must be non-negative"
	ErrCorrectionNoResults  = "Correction result carries no transaction outcomes"
	ErrCorrectedTxsRequired = "correctedTransactions must contain at least one entry"
)

// ============================================================================
// UPLOAD ERRORS
// ============================================================================

const (
	ErrNoFileUploaded    = "No file uploaded"
	ErrUnsupportedUpload = "Only PDF statements are accepted"
	ErrCarrierRequired   = "carrier_id is required"
	ErrS3Upload          = "Failed to store the uploaded statement"
)
