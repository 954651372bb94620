package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
)

type addAttendeesRequest struct {
	Names []string `json:"names"`
	Event string   `json:"event"`
}

type insertedAttendee struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

type addAttendeesResponse struct {
	InsertedCount int                `json:"insertedCount"`
	SkippedCount  int                `json:"skippedCount"`
	Inserted      []insertedAttendee `json:"inserted"`
}

func (h *Handler) addAttendees(w http.ResponseWriter, r *http.Request) {
	var req addAttendeesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Names == nil {
		writeDomainError(w, r, domain.ErrNamesRequired, msgServerError)
		return
	}

	res, err := h.registration.Register(r.Context(), req.Names, req.Event)
	if err != nil {
		writeDomainError(w, r, err, msgServerError)
		return
	}
	h.metrics.registered.Add(float64(res.InsertedCount))

	inserted := make([]insertedAttendee, len(res.Inserted))
	for i, na := range res.Inserted {
		inserted[i] = insertedAttendee{UID: na.UID, Name: na.Name}
	}
	writeJSON(w, http.StatusOK, addAttendeesResponse{
		InsertedCount: res.InsertedCount,
		SkippedCount:  res.SkippedCount,
		Inserted:      inserted,
	})
}

type attendeeView struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Event     string     `json:"event"`
	Issued    bool       `json:"issued"`
	Status    string     `json:"status"`
	Venue     *string    `json:"venue"`
	EnteredAt *time.Time `json:"enteredAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

type listAttendeesResponse struct {
	Count     int            `json:"count"`
	Attendees []attendeeView `json:"attendees"`
}

func toAttendeeView(a entities.Attendee) attendeeView {
	v := attendeeView{
		UID:       a.UID,
		Name:      a.Name,
		Event:     a.Event,
		Issued:    a.Issued,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
	if a.HasEntered() {
		venue, at := a.Venue, a.EnteredAt
		v.Venue = &venue
		v.EnteredAt = &at
	}
	return v
}

func (h *Handler) listAttendees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entities.AttendeeFilter{
		Status: entities.Status(q.Get("status")),
		Event:  q.Get("event"),
	}
	if raw := q.Get("limit"); raw != "" {
		// Unparsable limits fall back to the default.
		filter.Limit, _ = strconv.Atoi(raw)
	}

	attendees, err := h.query.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err, msgServerError)
		return
	}

	views := make([]attendeeView, len(attendees))
	for i := range attendees {
		views[i] = toAttendeeView(attendees[i])
	}
	writeJSON(w, http.StatusOK, listAttendeesResponse{Count: len(views), Attendees: views})
}
