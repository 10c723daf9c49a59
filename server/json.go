package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	apierrors "github.com/jrsteele09/auth-service/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("encode response")
	}
}

// writeAPIError answers with the status and stable message for err.
// Unrecognised errors are logged with their full chain and reported as 500.
func writeAPIError(w http.ResponseWriter, err error) int {
	apiErr, known := apierrors.FromError(err)
	if !known {
		log.Err(err).Msg("unexpected error")
	}
	writeJSON(w, apiErr.Status, errorResponse{Error: apiErr.Message})
	return apiErr.Status
}

// decodeJSON reads a single JSON object into dst. Syntax errors and type
// mismatches are reported as ErrMalformedRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrMalformedRequest, err)
	}
	return nil
}

// missingField reports a required field that was absent from the body.
func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", apierrors.ErrMalformedRequest, name)
}
