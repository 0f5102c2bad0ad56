package statement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"CommissionFlow/api/constants"
)

// The upstream automation batches callbacks inconsistently: the same
// notification can arrive as a bare object or as an array holding one
// object. decodeTolerant normalizes both shapes to the single canonical
// struct before any business logic runs and rejects everything else.
func decodeTolerant(r io.Reader, dst interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrUnrecognizedPayload)
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: empty array payload", ErrInvalidPayload)
		}
		if err := json.Unmarshal(items[0], dst); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrUnrecognizedPayload)
		}
		return nil
	case '{':
		if err := json.Unmarshal(trimmed, dst); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrUnrecognizedPayload)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidPayload, constants.ErrUnrecognizedPayload)
}
