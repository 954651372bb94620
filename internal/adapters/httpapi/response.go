package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"qrentry/internal/domain"
)

const (
	msgInvalidPayload  = "Invalid payload"
	msgPayloadTooLarge = "Payload too large"
	msgServerError     = "Server error"
	msgGenerateError   = "Server error generating PDF"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError answers 400 for request validation errors and 500 for
// anything else, logging the latter. fallback is the 500 message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if domain.IsValidation(err) {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, fallback)
}

// decodeJSON reads a JSON body into dst and answers the request itself when
// that fails: 413 past the body limit, 400 for malformed or mistyped JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, msgPayloadTooLarge)
		return false
	}
	writeError(w, http.StatusBadRequest, msgInvalidPayload)
	return false
}
