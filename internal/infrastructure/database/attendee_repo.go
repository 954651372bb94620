package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
)

var _ output.AttendeeRepository = (*AttendeeRepository)(nil)

const uniqueViolation = "23505"

// AttendeeRepository implements output.AttendeeRepository on PostgreSQL.
type AttendeeRepository struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// NewAttendeeRepository creates an AttendeeRepository.
func NewAttendeeRepository(pool *pgxpool.Pool) *AttendeeRepository {
	return &AttendeeRepository{
		pool:   pool,
		tracer: otel.Tracer("qrentry/database"),
	}
}

const insertMissingSQL = `
INSERT INTO attendees (uid, name, event, created_at)
SELECT b.uid, b.name, $3, $4
FROM unnest($1::text[], $2::text[]) WITH ORDINALITY AS b(uid, name, ord)
ORDER BY b.ord
ON CONFLICT (name, event) DO NOTHING
RETURNING uid, name`

func (r *AttendeeRepository) InsertMissing(ctx context.Context, event string, batch []entities.NewAttendee, createdAt time.Time) ([]entities.NewAttendee, error) {
	ctx, span := r.tracer.Start(ctx, "attendees.insert_missing",
		trace.WithAttributes(
			attribute.String("attendee.event", event),
			attribute.Int("batch.size", len(batch)),
		),
	)
	defer span.End()

	uids := make([]string, len(batch))
	names := make([]string, len(batch))
	for i, na := range batch {
		uids[i] = na.UID
		names[i] = na.Name
	}

	rows, err := r.pool.Query(ctx, insertMissingSQL, uids, names, event,
		pgtype.Timestamptz{Time: createdAt, Valid: true})
	if err != nil {
		return nil, r.fail(span, "insert attendees", err)
	}
	inserted, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.NewAttendee, error) {
		var na entities.NewAttendee
		err := row.Scan(&na.UID, &na.Name)
		return na, err
	})
	if err != nil {
		return nil, r.fail(span, "insert attendees", err)
	}

	span.SetAttributes(attribute.Int("rows.inserted", len(inserted)))
	return inserted, nil
}

const listUnissuedSQL = `
SELECT ` + attendeeColumns + `
FROM attendees
WHERE issued = FALSE
ORDER BY created_at ASC, id ASC`

func (r *AttendeeRepository) ListUnissued(ctx context.Context) ([]entities.Attendee, error) {
	ctx, span := r.tracer.Start(ctx, "attendees.list_unissued")
	defer span.End()

	out, err := r.queryAttendees(ctx, listUnissuedSQL)
	if err != nil {
		return nil, r.fail(span, "list unissued attendees", err)
	}
	span.SetAttributes(attribute.Int("rows.returned", len(out)))
	return out, nil
}

func (r *AttendeeRepository) MarkIssued(ctx context.Context, uids []string) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "attendees.mark_issued",
		trace.WithAttributes(attribute.Int("batch.size", len(uids))),
	)
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE attendees SET issued = TRUE WHERE uid = ANY($1) AND issued = FALSE`, uids)
	if err != nil {
		return 0, r.fail(span, "mark attendees issued", err)
	}
	span.SetAttributes(attribute.Int64("rows.updated", tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

// admitSQL redeems a uid in one statement. The CTE claims the row only while
// it is NOT_ENTERED; the second branch reports an existing row only when the
// claim matched nothing. No row at all means the uid is unknown.
const admitSQL = `
WITH admitted AS (
    UPDATE attendees
    SET status = 'ENTERED', venue = $2, entered_at = $3
    WHERE uid = $1 AND status = 'NOT_ENTERED'
    RETURNING name
)
SELECT 'admitted', name FROM admitted
UNION ALL
SELECT 'already_used', name FROM attendees
WHERE uid = $1 AND NOT EXISTS (SELECT 1 FROM admitted)`

func (r *AttendeeRepository) Admit(ctx context.Context, uid, venue string, at time.Time) (entities.EntryOutcome, error) {
	ctx, span := r.tracer.Start(ctx, "attendees.admit",
		trace.WithAttributes(attribute.String("entry.venue", venue)),
	)
	defer span.End()

	var kind, name string
	err := r.pool.QueryRow(ctx, admitSQL, uid, venue, pgtype.Timestamptz{Time: at, Valid: true}).Scan(&kind, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetAttributes(attribute.String("entry.outcome", entities.EntryUnknown.String()))
		return entities.Unknown(), nil
	}
	if err != nil {
		return entities.EntryOutcome{}, r.fail(span, "admit attendee", err)
	}

	span.SetAttributes(attribute.String("entry.outcome", kind))
	if kind == "admitted" {
		return entities.Admitted(name, venue, at), nil
	}
	return entities.AlreadyUsed(name), nil
}

func (r *AttendeeRepository) List(ctx context.Context, filter entities.AttendeeFilter) ([]entities.Attendee, error) {
	ctx, span := r.tracer.Start(ctx, "attendees.list",
		trace.WithAttributes(
			attribute.String("filter.status", string(filter.Status)),
			attribute.String("filter.event", filter.Event),
			attribute.Int("filter.limit", filter.Limit),
		),
	)
	defer span.End()

	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE TRUE`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Event != "" {
		args = append(args, filter.Event)
		query += fmt.Sprintf(" AND event = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	out, err := r.queryAttendees(ctx, query, args...)
	if err != nil {
		return nil, r.fail(span, "list attendees", err)
	}
	span.SetAttributes(attribute.Int("rows.returned", len(out)))
	return out, nil
}

func (r *AttendeeRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *AttendeeRepository) queryAttendees(ctx context.Context, query string, args ...any) ([]entities.Attendee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.Attendee, error) {
		var ar attendeeRow
		if err := row.Scan(ar.scanTargets()...); err != nil {
			return entities.Attendee{}, err
		}
		return attendeeToDomain(ar), nil
	})
}

// fail records err on span and wraps it. Unique violations surface as
// domain.ErrDuplicateAttendee.
func (r *AttendeeRepository) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s (%s): %w", op, pgErr.ConstraintName, domain.ErrDuplicateAttendee)
	}
	return fmt.Errorf("%s: %w", op, err)
}
