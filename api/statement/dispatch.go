package statement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultAutomationTimeout = 10 * time.Second

// AutomationClient forwards transaction batches to the external CRM
// automation. Calls carry the shared webhook secret and a callback address;
// the document id travels in the request body, never in the callback URL, so
// the callback route itself carries nothing an external party could swap.
type AutomationClient struct {
	SubmissionURL string
	CorrectionURL string
	CallbackBase  string
	Secret        string
	HTTPClient    *http.Client
}

func NewAutomationClientFromEnv() *AutomationClient {
	timeout := defaultAutomationTimeout
	if v := os.Getenv("AUTOMATION_TIMEOUT_SECONDS"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return &AutomationClient{
		SubmissionURL: os.Getenv("AUTOMATION_SUBMISSION_URL"),
		CorrectionURL: os.Getenv("AUTOMATION_CORRECTION_URL"),
		CallbackBase:  os.Getenv("APP_CALLBACK_BASE_URL"),
		Secret:        os.Getenv("WEBHOOK_SECRET"),
		HTTPClient:    &http.Client{Timeout: timeout},
	}
}

// SubmissionBatch is the outbound payload for a full bulk submission run.
type SubmissionBatch struct {
	DocumentID   int64                    `json:"documentId"`
	StorageRef   string                   `json:"s3Key"`
	CallbackURL  string                   `json:"callbackUrl"`
	Transactions []map[string]interface{} `json:"transactions"`
}

// CorrectionBatch is the outbound payload for one correction round. Each
// transaction keeps its internal id so the automation can echo it back.
type CorrectionBatch struct {
	DocumentID   int64               `json:"documentId"`
	StorageRef   string              `json:"s3Key"`
	CallbackURL  string              `json:"callbackUrl"`
	Transactions []TransactionResult `json:"transactions"`
}

func (c *AutomationClient) SendSubmission(ctx context.Context, batch SubmissionBatch) error {
	batch.CallbackURL = c.CallbackBase + "/statement/webhook/submission"
	return c.post(ctx, c.SubmissionURL, batch)
}

func (c *AutomationClient) SendCorrections(ctx context.Context, batch CorrectionBatch) error {
	batch.CallbackURL = c.CallbackBase + "/statement/webhook/correction"
	return c.post(ctx, c.CorrectionURL, batch)
}

func (c *AutomationClient) post(ctx context.Context, url string, payload interface{}) error {
	if url == "" {
		return fmt.Errorf("automation URL not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode automation payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Secret != "" {
		req.Header.Set("x-webhook-secret", c.Secret)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward to automation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("automation returned status %d", resp.StatusCode)
	}
	return nil
}
