package httpapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
)

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.issuance.Generate(r.Context())
	if errors.Is(err, domain.ErrNothingToIssue) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeDomainError(w, r, err, msgGenerateError)
		return
	}
	h.metrics.issued.Add(float64(sheet.Count))
	log.Printf("✅ %d credential(s) issued", sheet.Count)

	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(sheet.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(sheet.Data); err != nil {
		log.Printf("❌ write credential sheet: %v", err)
	}
}

type scanRequest struct {
	UID   string `json:"uid"`
	Venue string `json:"venue"`
}

type scanResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AttendeeName string `json:"attendeeName,omitempty"`
	Status       string `json:"status,omitempty"`
	// Set only on the admitting scan.
	Venue     string     `json:"venue,omitempty"`
	EnteredAt *time.Time `json:"enteredAt,omitempty"`
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.entry.Validate(r.Context(), req.UID, req.Venue)
	if err != nil {
		writeDomainError(w, r, err, msgServerError)
		return
	}
	h.metrics.scansTotal.WithLabelValues(outcome.Kind.String()).Inc()

	locale := h.i18n.Match(r.Header.Get("Accept-Language"))
	switch outcome.Kind {
	case entities.EntryAdmitted:
		at := outcome.EnteredAt
		writeJSON(w, http.StatusOK, scanResponse{
			Success:      true,
			Message:      h.i18n.T(locale, "scan.admitted", nil),
			AttendeeName: outcome.AttendeeName,
			Status:       string(outcome.Status),
			Venue:        outcome.Venue,
			EnteredAt:    &at,
		})
	case entities.EntryAlreadyUsed:
		writeJSON(w, http.StatusConflict, scanResponse{
			Message:      h.i18n.T(locale, "scan.already_used", nil),
			AttendeeName: outcome.AttendeeName,
			Status:       string(outcome.Status),
		})
	default:
		writeJSON(w, http.StatusNotFound, scanResponse{
			Message: h.i18n.T(locale, "scan.unknown", nil),
		})
	}
}
