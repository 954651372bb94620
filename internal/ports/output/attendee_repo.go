package output

import (
	"context"
	"time"

	"qrentry/internal/domain/entities"
)

type AttendeeRepository interface {
	// InsertMissing creates the attendees of batch that have no (name, event)
	// record yet and returns the ones actually inserted. Existing pairs are
	// left untouched.
	InsertMissing(ctx context.Context, event string, batch []entities.NewAttendee, createdAt time.Time) ([]entities.NewAttendee, error)
	// ListUnissued returns attendees whose credential was never rendered,
	// oldest first.
	ListUnissued(ctx context.Context) ([]entities.Attendee, error)
	MarkIssued(ctx context.Context, uids []string) (int64, error)
	// Admit atomically moves the attendee holding uid from NOT_ENTERED to
	// ENTERED and reports which of the three outcomes happened.
	Admit(ctx context.Context, uid, venue string, at time.Time) (entities.EntryOutcome, error)
	List(ctx context.Context, filter entities.AttendeeFilter) ([]entities.Attendee, error)
	Ping(ctx context.Context) error
}
