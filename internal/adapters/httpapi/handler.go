// Package httpapi exposes the check-in services over HTTP/JSON.
package httpapi

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrentry/internal/ports/input"
	"qrentry/internal/ports/output"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes = 10 << 20

// Defaults are the event and venue the browser and gate clients start with.
type Defaults struct {
	Event string
	Venue string
}

// Localizer renders scan messages in the caller's language.
type Localizer interface {
	output.T
	output.LocaleMatcher
}

// HealthChecker reports whether the attendee store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler wires HTTP routes to the use cases.
type Handler struct {
	registration input.RegistrationUseCase
	query        input.AttendeeQueryUseCase
	issuance     input.IssuanceUseCase
	entry        input.EntryUseCase
	i18n         Localizer
	health       HealthChecker
	defaults     Defaults
	metrics      *Metrics
	gatherer     prometheus.Gatherer
}

// Deps groups the collaborators of a Handler.
type Deps struct {
	Registration input.RegistrationUseCase
	Query        input.AttendeeQueryUseCase
	Issuance     input.IssuanceUseCase
	Entry        input.EntryUseCase
	I18n         Localizer
	Health       HealthChecker
	Defaults     Defaults
	// Registry receives the HTTP and domain collectors and backs /metrics.
	Registry *prometheus.Registry
}

func NewHandler(d Deps) *Handler {
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Handler{
		registration: d.Registration,
		query:        d.Query,
		issuance:     d.Issuance,
		entry:        d.Entry,
		i18n:         d.I18n,
		health:       d.Health,
		defaults:     d.Defaults,
		metrics:      NewMetrics(reg),
		gatherer:     reg,
	}
}

// Routes builds the chi router serving the API, health and metrics endpoints.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(h.metrics.instrument)
	r.Use(limitBody(MaxBodyBytes))

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.getConfig)
		r.Get("/attendees", h.listAttendees)
		r.Post("/attendees/add", h.addAttendees)
		r.Get("/qr/generate", h.generate)
		r.Post("/qr/scan", h.scan)
	})
	return r
}

type configResponse struct {
	DefaultEvent string `json:"defaultEvent"`
	DefaultVenue string `json:"defaultVenue"`
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		DefaultEvent: h.defaults.Event,
		DefaultVenue: h.defaults.Venue,
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		log.Printf("⚠️ healthz: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
