package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/fretlog/internal/errors"
	"github.com/vytor/fretlog/internal/logger"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields so
// client typos surface as errors instead of silently dropped data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid request body: " + err.Error())
	}
	return nil
}
