package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the single source of truth for one uploaded commission
// statement. It is mutated exclusively by the lifecycle handlers in this
// package; after every write successfulCount + len(failedTransactions)
// must equal totalTransactions.
type Document struct {
	ID                 int64               `json:"id"`
	CarrierID          string              `json:"carrier_id"`
	FileName           string              `json:"file_name"`
	StorageRef         string              `json:"storage_ref"`
	Status             Status              `json:"status"`
	ErrorMessage       string              `json:"error_message,omitempty"`
	TextractJobID      string              `json:"textract_job_id,omitempty"`
	JSONOutputKey      string              `json:"json_output_key,omitempty"`
	CSVOutputKey       string              `json:"csv_output_key,omitempty"`
	CompletionMessage  string              `json:"completion_message,omitempty"`
	TotalTransactions  int                 `json:"total_transactions"`
	SuccessfulCount    int                 `json:"successful_count"`
	FailedTransactions []FailedTransaction `json:"failed_transactions"`
	CorrectionHistory  []CorrectionAttempt `json:"correction_history"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// FailedTransaction is one line-item the external automation could not
// apply. ID is assigned here at creation and carried through correction
// rounds; the policy number is display/data only and may be edited by the
// user between rounds.
type FailedTransaction struct {
	ID                string                 `json:"id"`
	PolicyNumber      string                 `json:"policy_number"`
	InsuredName       string                 `json:"insured_name"`
	StatementID       string                 `json:"statement_id"`
	TransactionAmount decimal.Decimal        `json:"transaction_amount"`
	Error             string                 `json:"error"`
	OriginalData      map[string]interface{} `json:"original_data,omitempty"`
}

// CorrectionAttempt is an append-only record of one correction round.
type CorrectionAttempt struct {
	Timestamp  time.Time `json:"timestamp"`
	Attempted  int       `json:"attempted"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Summary    string    `json:"summary"`
}

// ExtractionNotification is the webhook body the OCR lambda posts when a
// Textract job finishes. The document is resolved by S3Key, never by a
// caller-supplied document id.
type ExtractionNotification struct {
	S3Key         string `json:"s3Key"`
	TextractJobID string `json:"textractJobId"`
	Status        string `json:"status"`
	JSONS3Key     string `json:"jsonS3Key"`
	JSONURL       string `json:"jsonUrl"`
	CSVS3Key      string `json:"csvS3Key"`
	CSVURL        string `json:"csvUrl"`
	ErrorMessage  string `json:"errorMessage"`
}

// TransactionResult is one transaction outcome reported by the automation.
// TransactionID echoes the internal id we sent out with the batch; older
// automation flows only return the policy number.
type TransactionResult struct {
	TransactionID     string                 `json:"transactionId"`
	PolicyNumber      string                 `json:"policyNumber"`
	InsuredName       string                 `json:"insuredName"`
	StatementID       string                 `json:"statementId"`
	TransactionAmount decimal.Decimal        `json:"transactionAmount"`
	Error             string                 `json:"error"`
	OriginalData      map[string]interface{} `json:"originalData"`
}

// CompletionData is the payload of a bulk submission completion callback.
type CompletionData struct {
	NumberOfSuccessful int                 `json:"numberOfSuccessful"`
	TotalTransactions  int                 `json:"totalTransactions"`
	FailedTransactions []TransactionResult `json:"failedTransactions"`
	Message            string              `json:"message"`
}

// BulkCompletionNotification describes the outcome of submitting all mapped
// transactions for one document to the CRM automation.
type BulkCompletionNotification struct {
	DocumentID     int64           `json:"documentId"`
	StorageRef     string          `json:"s3Key"`
	Status         string          `json:"status"`
	CompletionData *CompletionData `json:"completionData"`
}

// CorrectionResults partitions one correction round's outcomes.
type CorrectionResults struct {
	Successful []TransactionResult `json:"successful"`
	Failed     []TransactionResult `json:"failed"`
}

// CorrectionNotification describes the outcome of resubmitting a batch of
// previously failed transactions.
type CorrectionNotification struct {
	DocumentID     int64             `json:"documentId"`
	StorageRef     string            `json:"s3Key"`
	TotalProcessed int               `json:"totalProcessed"`
	SuccessCount   int               `json:"successCount"`
	FailureCount   int               `json:"failureCount"`
	Results        CorrectionResults `json:"results"`
}

// ResubmitRequest is the user-facing entry point for a correction round.
type ResubmitRequest struct {
	UserID                string              `json:"user_id"`
	CorrectedTransactions []TransactionResult `json:"correctedTransactions"`
}
