package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"CommissionFlow/api/constants"
)

// ValidateCounts is the invariant validator: all three counts must be
// non-negative and successful + failed must equal total. Both completion
// paths run it before any persistence.
func ValidateCounts(successful, failed, total int) error {
	if successful < 0 || failed < 0 || total < 0 {
		return fmt.Errorf("%w: %s (successful=%d failed=%d total=%d)",
			ErrCountMismatch, constants.ErrNegativeCounts, successful, failed, total)
	}
	if successful+failed != total {
		return fmt.Errorf("%w: successful=%d + failed=%d != total=%d",
			ErrCountMismatch, successful, failed, total)
	}
	return nil
}

// ApplyExtraction applies an OCR completion notification to the document.
// Safe to apply twice for the same notification: the write is a plain
// overwrite, not additive.
func ApplyExtraction(doc *Document, n *ExtractionNotification) error {
	if !CanApplyExtraction(doc.Status) {
		return fmt.Errorf("%w: %s (status=%s)", ErrInvalidState, constants.ErrExtractionNotPermitted, doc.Status)
	}
	switch n.Status {
	case "processed":
		// The lambda always writes the structured JSON on success; the CSV
		// is absent when the document had no detectable tables.
		if strings.TrimSpace(n.JSONS3Key) == "" {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrMissingOutputRefs)
		}
		doc.Status = StatusReviewPending
		doc.TextractJobID = n.TextractJobID
		doc.JSONOutputKey = n.JSONS3Key
		doc.CSVOutputKey = n.CSVS3Key
		doc.ErrorMessage = ""
	case "failed":
		if strings.TrimSpace(n.ErrorMessage) == "" {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrMissingErrorMessage)
		}
		doc.Status = StatusFailed
		doc.TextractJobID = n.TextractJobID
		doc.ErrorMessage = n.ErrorMessage
	default:
		return fmt.Errorf("%w: unknown extraction status %q", ErrInvalidPayload, n.Status)
	}
	return nil
}

// ApplyBulkCompletion applies the outcome of submitting all mapped
// transactions. totalTransactions is fixed by the first completion; a
// redelivery must agree with it. The failed list is replaced wholesale,
// atomically with the status write.
func ApplyBulkCompletion(doc *Document, n *BulkCompletionNotification) error {
	if !CanApplyBulkCompletion(doc.Status) {
		return fmt.Errorf("%w: %s (status=%s)", ErrInvalidState, constants.ErrCompletionNotPermitted, doc.Status)
	}
	cd := n.CompletionData
	if cd == nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrMissingCompletion)
	}
	if err := ValidateCounts(cd.NumberOfSuccessful, len(cd.FailedTransactions), cd.TotalTransactions); err != nil {
		return err
	}
	if doc.TotalTransactions > 0 && doc.TotalTransactions != cd.TotalTransactions {
		return fmt.Errorf("%w: %s (fixed=%d reported=%d)",
			ErrCountMismatch, constants.ErrTotalsAlreadyFixed, doc.TotalTransactions, cd.TotalTransactions)
	}

	// Reuse ids for entries already on record so replaying the same
	// callback converges on the same state.
	prior := make(map[string]string, len(doc.FailedTransactions))
	for _, ft := range doc.FailedTransactions {
		prior[ft.PolicyNumber] = ft.ID
	}
	failed := make([]FailedTransaction, 0, len(cd.FailedTransactions))
	for _, res := range cd.FailedTransactions {
		failed = append(failed, newFailedTransaction(res, prior[res.PolicyNumber]))
	}

	doc.TotalTransactions = cd.TotalTransactions
	doc.SuccessfulCount = cd.NumberOfSuccessful
	doc.FailedTransactions = failed
	doc.CompletionMessage = cd.Message
	doc.Status = outcomeStatus(len(failed))
	return nil
}

// ApplyCorrection reconciles one correction round against the document.
//
// The submitted batch "touches" every transaction it reports, successful or
// still failing. The new failed list is the prior list minus everything
// touched, plus one fresh entry per reported failure; the successful count
// is then re-derived from the fixed total rather than summed incrementally.
// Incremental counting double-counts (or loses) entries when the same
// business key reappears across rounds with a changed value, e.g. when the
// user corrects the very policy number used for matching.
func ApplyCorrection(doc *Document, n *CorrectionNotification, now time.Time) error {
	if !IsCorrectable(doc.Status) {
		return fmt.Errorf("%w: %s (status=%s)", ErrInvalidState, constants.ErrNotCorrectable, doc.Status)
	}
	if n.SuccessCount < 0 || n.FailureCount < 0 {
		return fmt.Errorf("%w: %s (success=%d failure=%d)",
			ErrCountMismatch, constants.ErrNegativeCounts, n.SuccessCount, n.FailureCount)
	}
	if n.SuccessCount+n.FailureCount != n.TotalProcessed {
		return fmt.Errorf("%w: successCount=%d + failureCount=%d != totalProcessed=%d",
			ErrCountMismatch, n.SuccessCount, n.FailureCount, n.TotalProcessed)
	}
	if n.TotalProcessed > len(doc.FailedTransactions) {
		return fmt.Errorf("%w: totalProcessed=%d outstanding=%d",
			ErrExceedsFailedCount, n.TotalProcessed, len(doc.FailedTransactions))
	}
	if len(n.Results.Successful)+len(n.Results.Failed) == 0 && n.TotalProcessed > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrCorrectionNoResults)
	}

	touched := make(map[string]struct{}, n.TotalProcessed)
	for _, res := range n.Results.Successful {
		markTouched(touched, res)
	}
	for _, res := range n.Results.Failed {
		markTouched(touched, res)
	}

	// Map prior entries both ways so a still-failing transaction keeps the
	// id it was created with even if its policy number changed in between.
	priorByID := make(map[string]struct{}, len(doc.FailedTransactions))
	priorByPN := make(map[string]string, len(doc.FailedTransactions))
	for _, ft := range doc.FailedTransactions {
		priorByID[ft.ID] = struct{}{}
		priorByPN[strings.TrimSpace(ft.PolicyNumber)] = ft.ID
	}

	newFailed := make([]FailedTransaction, 0, len(doc.FailedTransactions))
	for _, ft := range doc.FailedTransactions {
		if wasTouched(touched, ft) {
			continue
		}
		newFailed = append(newFailed, ft)
	}
	for _, res := range n.Results.Failed {
		id := strings.TrimSpace(res.TransactionID)
		if _, known := priorByID[id]; !known {
			id = priorByPN[strings.TrimSpace(res.PolicyNumber)]
		}
		newFailed = append(newFailed, newFailedTransaction(res, id))
	}

	newSuccessful := doc.TotalTransactions - len(newFailed)
	if err := ValidateCounts(newSuccessful, len(newFailed), doc.TotalTransactions); err != nil {
		return fmt.Errorf("%w: reconciled state invalid: %v", ErrDataIntegrity, err)
	}

	doc.FailedTransactions = newFailed
	doc.SuccessfulCount = newSuccessful
	doc.CorrectionHistory = append(doc.CorrectionHistory, CorrectionAttempt{
		Timestamp:  now,
		Attempted:  n.TotalProcessed,
		Successful: n.SuccessCount,
		Failed:     n.FailureCount,
		Summary: fmt.Sprintf("%d corrections attempted: %d successful, %d failed",
			n.TotalProcessed, n.SuccessCount, n.FailureCount),
	})
	doc.Status = outcomeStatus(len(newFailed))
	return nil
}

// markTouched records both identities a result may be matched under: the
// echoed internal id and the policy number as submitted.
func markTouched(touched map[string]struct{}, res TransactionResult) {
	if id := strings.TrimSpace(res.TransactionID); id != "" {
		touched["id:"+id] = struct{}{}
	}
	if pn := strings.TrimSpace(res.PolicyNumber); pn != "" {
		touched["pn:"+pn] = struct{}{}
	}
}

func wasTouched(touched map[string]struct{}, ft FailedTransaction) bool {
	if _, ok := touched["id:"+ft.ID]; ok {
		return true
	}
	_, ok := touched["pn:"+strings.TrimSpace(ft.PolicyNumber)]
	return ok
}

func newFailedTransaction(res TransactionResult, id string) FailedTransaction {
	if id == "" {
		id = uuid.New().String()
	}
	return FailedTransaction{
		ID:                id,
		PolicyNumber:      res.PolicyNumber,
		InsuredName:       res.InsuredName,
		StatementID:       res.StatementID,
		TransactionAmount: res.TransactionAmount,
		Error:             res.Error,
		OriginalData:      res.OriginalData,
	}
}
