package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rackfish/rackfish/payload"
)

func decodeJSONResponse(path string, body []byte) (payload.Value, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, transportError(fmt.Sprintf("response from %s is not valid JSON", path), err)
	}

	return payload.Normalize(value)
}

func classifyStatusError(statusCode int, message string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	case http.StatusPreconditionFailed:
		return staleStateError(message, nil)
	}
	if statusCode >= 400 && statusCode < 500 {
		return validationError(message, nil)
	}
	return transportError(message, nil)
}

func statusMessage(method, path string, statusCode int, body []byte) string {
	return fmt.Sprintf("%s %s -> %d: %s", method, path, statusCode, summarizeBody(body))
}

func summarizeBody(body []byte) string {
	trimmed := string(bytes.TrimSpace(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
