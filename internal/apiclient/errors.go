package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RequestError is returned for every failed call to the scheduling
// service: a non-2xx response, or a transport failure (Status 0).
// Message is safe to show to the user.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// Detail includes the status code for logs.
func (e *RequestError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// StatusOf returns the HTTP status of a RequestError, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// messageFrom extracts the server-provided message from an error payload.
// The service answers with {"error": "..."}; "message", "title" and a
// plain-text body are accepted as well.
func messageFrom(body []byte, fallback string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "message", "title"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return fallback
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.ContainsAny(text, "<{") {
		return text
	}
	return fallback
}
