package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// parseJSON decodes a request body into the given DTO type, rejecting
// unknown fields so typos fail loudly instead of silently zeroing a field.
func parseJSON[T any](r *http.Request) (T, error) {
	var out T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("invalid JSON body: %w", err)
	}
	return out, nil
}
