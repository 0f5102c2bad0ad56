package statement

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CommissionFlow/api"
	"CommissionFlow/api/constants"
)

// ResubmitCorrections accepts the user-edited versions of failed
// transactions and forwards them to the automation as a correction batch.
// The correction_pending transition is committed before the outbound call so
// a forward timeout never leaves the stored state behind what the automation
// was told.
func ResubmitCorrections(store DocumentStore, automation *AutomationClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		var req ResubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithCode(w, http.StatusBadRequest, constants.CodeInvalidPayload, constants.ErrInvalidJSONShort)
			return
		}
		if len(req.CorrectedTransactions) == 0 {
			respondError(w, fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrCorrectedTxsRequired))
			return
		}

		doc, err := store.Mutate(r.Context(), id, func(doc *Document) error {
			if !IsCorrectable(doc.Status) {
				return fmt.Errorf("%w: %s (status=%s)", ErrInvalidState, constants.ErrNotCorrectable, doc.Status)
			}
			if len(doc.FailedTransactions) == 0 {
				return fmt.Errorf("%w: %s", ErrInvalidState, constants.ErrNoFailedTransactions)
			}
			if len(req.CorrectedTransactions) > len(doc.FailedTransactions) {
				return fmt.Errorf("%w: submitted=%d outstanding=%d",
					ErrExceedsFailedCount, len(req.CorrectedTransactions), len(doc.FailedTransactions))
			}
			doc.Status = StatusCorrectionPending
			return nil
		})
		if err != nil {
			respondError(w, err)
			return
		}

		batch := CorrectionBatch{
			DocumentID:   doc.ID,
			StorageRef:   doc.StorageRef,
			Transactions: req.CorrectedTransactions,
		}
		if err := automation.SendCorrections(r.Context(), batch); err != nil {
			api.LogError("correction forward for document %d: %v", doc.ID, err)
			// Roll the optimistic transition back so the user can retry.
			if _, mErr := store.Mutate(r.Context(), doc.ID, func(d *Document) error {
				if d.Status == StatusCorrectionPending {
					d.Status = outcomeStatus(len(d.FailedTransactions))
				}
				return nil
			}); mErr != nil {
				api.LogError("revert correction_pending for document %d: %v", doc.ID, mErr)
			}
			api.RespondWithCode(w, http.StatusBadGateway, constants.CodeInternal, "Failed to forward correction batch")
			return
		}

		api.LogInfo("resubmitted %d corrections for document %d", len(req.CorrectedTransactions), doc.ID)
		api.RespondWithPayload(w, http.StatusAccepted, map[string]interface{}{
			"document_id": doc.ID,
			"status":      doc.Status,
			"resubmitted": len(req.CorrectedTransactions),
		})
	}
}

// CorrectionWebhook consumes the automation's callback for one correction
// round and reconciles it against the outstanding failures. The document id
// comes from the request body and is cross-checked against the storage ref;
// nothing is trusted from the URL.
func CorrectionWebhook(store DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n CorrectionNotification
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
			return ApplyCorrection(doc, &n, time.Now().UTC())
		})
		if err != nil {
			respondError(w, err)
			return
		}

		api.LogInfo("correction round for document %d: %d attempted, %d still failing, status %s",
			doc.ID, n.TotalProcessed, len(doc.FailedTransactions), doc.Status)
		api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
			"document_id": doc.ID,
			"status":      doc.Status,
			"successful":  doc.SuccessfulCount,
			"failed":      len(doc.FailedTransactions),
			"rounds":      len(doc.CorrectionHistory),
		})
	}
}
