package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTolerantObject(t *testing.T) {
	var n ExtractionNotification
	err := decodeTolerant(strings.NewReader(`{"s3Key":"uploads/a.pdf","status":"processed"}`), &n)
	require.NoError(t, err)
	assert.Equal(t, "uploads/a.pdf", n.S3Key)
	assert.Equal(t, "processed", n.Status)
}

func TestDecodeTolerantSingleElementArray(t *testing.T) {
	var n ExtractionNotification
	err := decodeTolerant(strings.NewReader(`[{"s3Key":"uploads/a.pdf","status":"failed","errorMessage":"boom"}]`), &n)
	require.NoError(t, err)
	assert.Equal(t, "failed", n.Status)
	assert.Equal(t, "boom", n.ErrorMessage)
}

func TestDecodeTolerantTakesFirstArrayElement(t *testing.T) {
	var n ExtractionNotification
	err := decodeTolerant(strings.NewReader(`[{"s3Key":"first.pdf"},{"s3Key":"second.pdf"}]`), &n)
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", n.S3Key)
}

func TestDecodeTolerantLeadingWhitespace(t *testing.T) {
	var n ExtractionNotification
	err := decodeTolerant(strings.NewReader("\n\t  {\"s3Key\":\"uploads/a.pdf\"}"), &n)
	require.NoError(t, err)
	assert.Equal(t, "uploads/a.pdf", n.S3Key)
}

func TestDecodeTolerantRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace only", "   \n"},
		{"empty array", "[]"},
		{"bare string", `"hello"`},
		{"bare number", "42"},
		{"truncated object", `{"s3Key":`},
		{"truncated array", `[{"s3Key":"a"}`},
		{"not json at all", "<xml/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n ExtractionNotification
			err := decodeTolerant(strings.NewReader(tt.body), &n)
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}
