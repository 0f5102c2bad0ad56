package statement

import (
	"fmt"
	"net/http"

	"CommissionFlow/api"
)

// ExtractionWebhook consumes the OCR lambda's completion callback. The
// document is looked up by the storage reference this system issued at
// upload time; a caller-supplied document id is never trusted here.
func ExtractionWebhook(store DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n ExtractionNotification
		if err := decodeTolerant(r.Body, &n); err != nil {
			respondError(w, err)
			return
		}
		if n.S3Key == "" {
			respondError(w, fmt.Errorf("%w: s3Key is required", ErrInvalidPayload))
			return
		}

		doc, err := store.MutateByStorageRef(r.Context(), n.S3Key, func(doc *Document) error {
			return ApplyExtraction(doc, &n)
		})
		if err != nil {
			respondError(w, err)
			return
		}

		api.LogInfo("extraction %s for document %d (job %s)", n.Status, doc.ID, n.TextractJobID)
		api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
			"document_id": doc.ID,
			"status":      doc.Status,
		})
	}
}

// respondError maps a handler error onto the JSON envelope. Validation
// failures carry their reason code; anything unexpected is reported as a
// retryable 500 without leaking internals beyond the message.
func respondError(w http.ResponseWriter, err error) {
	api.RespondWithCode(w, HTTPStatus(err), ReasonCode(err), err.Error())
}
