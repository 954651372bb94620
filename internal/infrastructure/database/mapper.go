package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"qrentry/internal/domain/entities"
)

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// attendeeRow is the column set selected by every attendee listing query.
type attendeeRow struct {
	UID       string
	Name      string
	Event     string
	Issued    bool
	Status    string
	Venue     pgtype.Text
	EnteredAt pgtype.Timestamptz
	CreatedAt pgtype.Timestamptz
}

const attendeeColumns = `uid, name, event, issued, status, venue, entered_at, created_at`

func (r *attendeeRow) scanTargets() []any {
	return []any{&r.UID, &r.Name, &r.Event, &r.Issued, &r.Status, &r.Venue, &r.EnteredAt, &r.CreatedAt}
}

func attendeeToDomain(r attendeeRow) entities.Attendee {
	return entities.Attendee{
		UID:       r.UID,
		Name:      r.Name,
		Event:     r.Event,
		Issued:    r.Issued,
		Status:    entities.Status(r.Status),
		Venue:     r.Venue.String,
		EnteredAt: pgtypeTimestamptzToTime(r.EnteredAt),
		CreatedAt: pgtypeTimestamptzToTime(r.CreatedAt),
	}
}
