// Package memory provides an in-process AttendeeRepository. It enforces the
// same uniqueness and single-use rules as the Postgres schema and is used by
// STORE_DRIVER=memory and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
)

var _ output.AttendeeRepository = (*AttendeeRepository)(nil)

type record struct {
	seq      int64
	attendee entities.Attendee
}

type nameKey struct {
	name  string
	event string
}

// AttendeeRepository keeps attendees in maps guarded by one mutex, so every
// method is atomic with respect to the others.
type AttendeeRepository struct {
	mu      sync.Mutex
	byUID   map[string]*record
	byName  map[nameKey]*record
	nextSeq int64
}

func NewAttendeeRepository() *AttendeeRepository {
	return &AttendeeRepository{
		byUID:  make(map[string]*record),
		byName: make(map[nameKey]*record),
	}
}

func (r *AttendeeRepository) InsertMissing(ctx context.Context, event string, batch []entities.NewAttendee, createdAt time.Time) ([]entities.NewAttendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, na := range batch {
		if _, taken := r.byUID[na.UID]; taken {
			return nil, fmt.Errorf("insert attendee %s: %w", na.UID, domain.ErrDuplicateAttendee)
		}
	}

	inserted := make([]entities.NewAttendee, 0, len(batch))
	for _, na := range batch {
		key := nameKey{name: na.Name, event: event}
		if _, exists := r.byName[key]; exists {
			continue
		}
		r.nextSeq++
		rec := &record{
			seq: r.nextSeq,
			attendee: entities.Attendee{
				UID:       na.UID,
				Name:      na.Name,
				Event:     event,
				Status:    entities.StatusNotEntered,
				CreatedAt: createdAt,
			},
		}
		r.byUID[na.UID] = rec
		r.byName[key] = rec
		inserted = append(inserted, na)
	}
	return inserted, nil
}

func (r *AttendeeRepository) ListUnissued(ctx context.Context) ([]entities.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.collect(func(a *entities.Attendee) bool { return !a.Issued })
	sort.Slice(recs, func(i, j int) bool { return olderFirst(recs[i], recs[j]) })
	return toAttendees(recs), nil
}

func (r *AttendeeRepository) MarkIssued(ctx context.Context, uids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, uid := range uids {
		rec, ok := r.byUID[uid]
		if !ok || rec.attendee.Issued {
			continue
		}
		rec.attendee.Issued = true
		n++
	}
	return n, nil
}

func (r *AttendeeRepository) Admit(ctx context.Context, uid, venue string, at time.Time) (entities.EntryOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byUID[uid]
	if !ok {
		return entities.Unknown(), nil
	}
	if rec.attendee.HasEntered() {
		return entities.AlreadyUsed(rec.attendee.Name), nil
	}
	rec.attendee.Status = entities.StatusEntered
	rec.attendee.Venue = venue
	rec.attendee.EnteredAt = at
	return entities.Admitted(rec.attendee.Name, venue, at), nil
}

func (r *AttendeeRepository) List(ctx context.Context, filter entities.AttendeeFilter) ([]entities.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.collect(func(a *entities.Attendee) bool {
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		return filter.Event == "" || a.Event == filter.Event
	})
	sort.Slice(recs, func(i, j int) bool { return olderFirst(recs[j], recs[i]) })
	if filter.Limit > 0 && len(recs) > filter.Limit {
		recs = recs[:filter.Limit]
	}
	return toAttendees(recs), nil
}

func (r *AttendeeRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// collect must be called with mu held.
func (r *AttendeeRepository) collect(keep func(*entities.Attendee) bool) []*record {
	out := make([]*record, 0, len(r.byUID))
	for _, rec := range r.byUID {
		if keep(&rec.attendee) {
			out = append(out, rec)
		}
	}
	return out
}

func olderFirst(a, b *record) bool {
	if !a.attendee.CreatedAt.Equal(b.attendee.CreatedAt) {
		return a.attendee.CreatedAt.Before(b.attendee.CreatedAt)
	}
	return a.seq < b.seq
}

func toAttendees(recs []*record) []entities.Attendee {
	out := make([]entities.Attendee, len(recs))
	for i, rec := range recs {
		out[i] = rec.attendee
	}
	return out
}
