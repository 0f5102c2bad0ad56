package statement

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSubmissionCarriesSecretAndCallback(t *testing.T) {
	var gotSecret string
	var gotBody SubmissionBatch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-webhook-secret")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := &AutomationClient{
		SubmissionURL: srv.URL,
		CallbackBase:  "https://app.example.com",
		Secret:        "s3cret",
		HTTPClient:    srv.Client(),
	}
	err := c.SendSubmission(context.Background(), SubmissionBatch{
		DocumentID: 12,
		StorageRef: "uploads/carrier-1/x/file.pdf",
		Transactions: []map[string]interface{}{
			{"policyNumber": "P-1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", gotSecret)
	assert.Equal(t, int64(12), gotBody.DocumentID)
	assert.Equal(t, "https://app.example.com/statement/webhook/submission", gotBody.CallbackURL)
}

func TestSendCorrectionsCallbackRoute(t *testing.T) {
	var gotBody CorrectionBatch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
	}))
	defer srv.Close()

	c := &AutomationClient{CorrectionURL: srv.URL, CallbackBase: "http://localhost:7143", HTTPClient: srv.Client()}
	err := c.SendCorrections(context.Background(), CorrectionBatch{
		DocumentID:   3,
		Transactions: []TransactionResult{{TransactionID: "id-1", PolicyNumber: "P-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7143/statement/webhook/correction", gotBody.CallbackURL)
	require.Len(t, gotBody.Transactions, 1)
	assert.Equal(t, "id-1", gotBody.Transactions[0].TransactionID, "internal ids travel with the batch")
}

func TestAutomationPostFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &AutomationClient{SubmissionURL: srv.URL, HTTPClient: srv.Client()}
	err := c.SendSubmission(context.Background(), SubmissionBatch{DocumentID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	c = &AutomationClient{HTTPClient: srv.Client()}
	err = c.SendSubmission(context.Background(), SubmissionBatch{DocumentID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
