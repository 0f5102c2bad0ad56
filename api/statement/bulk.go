package statement

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"CommissionFlow/api"
	"CommissionFlow/api/constants"
)

// SubmitStatement dispatches the reviewer's mapped transaction batch to the
// CRM automation. The status moves to salesforce_upload_pending before the
// outbound call: if the forward times out, the stored state still matches
// what the automation may have received.
func SubmitStatement(store DocumentStore, automation *AutomationClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		var req struct {
			UserID       string                   `json:"user_id"`
			Transactions []map[string]interface{} `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithCode(w, http.StatusBadRequest, constants.CodeInvalidPayload, constants.ErrInvalidJSONShort)
			return
		}
		if len(req.Transactions) == 0 {
			respondError(w, fmt.Errorf("%w: transactions must contain at least one entry", ErrInvalidPayload))
			return
		}

		doc, err := store.Mutate(r.Context(), id, func(doc *Document) error {
			if !CanSubmit(doc.Status) {
				return fmt.Errorf("%w: cannot submit in status %s", ErrInvalidState, doc.Status)
			}
			doc.Status = StatusSalesforcePending
			return nil
		})
		if err != nil {
			respondError(w, err)
			return
		}

		batch := SubmissionBatch{
			DocumentID:   doc.ID,
			StorageRef:   doc.StorageRef,
			Transactions: req.Transactions,
		}
		if err := automation.SendSubmission(r.Context(), batch); err != nil {
			api.LogError("submission forward for document %d: %v", doc.ID, err)
			if _, mErr := store.Mutate(r.Context(), doc.ID, func(d *Document) error {
				d.Status = StatusSalesforceUploadFailed
				d.ErrorMessage = "Failed to forward submission batch to automation"
				return nil
			}); mErr != nil {
				api.LogError("mark submission failure for document %d: %v", doc.ID, mErr)
			}
			api.RespondWithCode(w, http.StatusBadGateway, constants.CodeInternal, "Failed to forward submission batch")
			return
		}

		api.LogInfo("submitted %d transactions for document %d", len(req.Transactions), doc.ID)
		api.RespondWithPayload(w, http.StatusAccepted, map[string]interface{}{
			"document_id": doc.ID,
			"status":      doc.Status,
			"submitted":   len(req.Transactions),
		})
	}
}

// BulkCompletionWebhook consumes the automation's callback describing the
// outcome of a bulk submission run. The count invariant is checked before
// anything is written; a violation rejects the whole notification.
func BulkCompletionWebhook(store DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n BulkCompletionNotification
		if err := decodeTolerant(r.Body, &n); err != nil {
			respondError(w, err)
			return
		}
		if n.DocumentID <= 0 {
			respondError(w, fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrMissingDocumentID))
			return
		}

		doc, err := store.Mutate(r.Context(), n.DocumentID, func(doc *Document) error {
			if err := checkStorageRef(doc, n.StorageRef); err != nil {
				return err
			}
			return ApplyBulkCompletion(doc, &n)
		})
		if err != nil {
			respondError(w, err)
			return
		}

		api.LogInfo("bulk completion for document %d: %d/%d successful, status %s",
			doc.ID, doc.SuccessfulCount, doc.TotalTransactions, doc.Status)
		api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
			"document_id":  doc.ID,
			"status":       doc.Status,
			"successful":   doc.SuccessfulCount,
			"failed":       len(doc.FailedTransactions),
			"transactions": doc.TotalTransactions,
		})
	}
}

// checkStorageRef cross-checks the caller-supplied document id against the
// storage reference this system issued at upload. A notification that knows
// the id but not the ref is treated as spoofed.
func checkStorageRef(doc *Document, ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: s3Key is required", ErrInvalidPayload)
	}
	if ref != doc.StorageRef {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrStorageRefMismatch)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid document id %q", ErrInvalidPayload, raw)
	}
	return id, nil
}
